package verdict

import "shieldbackend/internal/models"

// ExtractCauses maps classifier feature flags to severity-tagged danger
// indicators. Causes are only emitted for threat verdicts; a safe verdict
// yields none regardless of the flags.
func ExtractCauses(flags models.FeatureFlags, isThreat bool, kind models.ScanKind) []models.DangerCause {
	if !isThreat {
		return nil
	}

	var causes []models.DangerCause
	if flags.HasURL {
		causes = append(causes, models.DangerCause{
			Type:        "contains_url",
			Title:       "Contains a link",
			Description: "The message contains a URL, a common delivery vector for scams.",
			Severity:    models.SeverityMedium,
		})
	}
	if flags.UrgencyWords {
		causes = append(causes, models.DangerCause{
			Type:        "urgency_language",
			Title:       "Urgency pressure",
			Description: "Urgent wording pressures the recipient into acting without thinking.",
			Severity:    models.SeverityHigh,
		})
	}
	if flags.SpamKeywords {
		causes = append(causes, models.DangerCause{
			Type:        "spam_keywords",
			Title:       "Spam keywords",
			Description: "Typical spam vocabulary such as prizes, winnings or free offers.",
			Severity:    models.SeverityMedium,
		})
	}
	if flags.CurrencySymbols {
		causes = append(causes, models.DangerCause{
			Type:        "money_reference",
			Title:       "Money reference",
			Description: "Mentions of money or currency amounts.",
			Severity:    models.SeverityMedium,
		})
	}
	if flags.HasPhone {
		causes = append(causes, models.DangerCause{
			Type:        "phone_number",
			Title:       "Phone number",
			Description: "Contains a phone number the sender wants you to call.",
			Severity:    models.SeverityMedium,
		})
	}

	if kind == models.ScanKindURL || kind == models.ScanKindPhishing {
		if flags.IPLiteralHost {
			causes = append(causes, models.DangerCause{
				Type:        "ip_address_url",
				Title:       "IP address instead of domain",
				Description: "The link points at a bare IP address, which legitimate sites rarely use.",
				Severity:    models.SeverityHigh,
			})
		}
		if flags.SuspiciousDomain {
			causes = append(causes, models.DangerCause{
				Type:        "suspicious_domain",
				Title:       "Suspicious domain",
				Description: "The domain resembles known abuse patterns or abuse-prone TLDs.",
				Severity:    models.SeverityHigh,
			})
		}
		if flags.BrandImpersonation {
			causes = append(causes, models.DangerCause{
				Type:        "phishing_detected",
				Title:       "Brand impersonation",
				Description: "The content imitates a well-known brand to steal credentials.",
				Severity:    models.SeverityCritical,
			})
		}
	}

	return causes
}
