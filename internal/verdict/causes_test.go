package verdict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shieldbackend/internal/models"
)

func causeTypes(causes []models.DangerCause) []string {
	types := make([]string, 0, len(causes))
	for _, c := range causes {
		types = append(types, c.Type)
	}
	return types
}

func TestExtractCausesSafeVerdictYieldsNone(t *testing.T) {
	flags := models.FeatureFlags{HasURL: true, UrgencyWords: true, SpamKeywords: true}
	assert.Nil(t, ExtractCauses(flags, false, models.ScanKindText))
}

func TestExtractCausesTextFlags(t *testing.T) {
	flags := models.FeatureFlags{
		HasURL:          true,
		UrgencyWords:    true,
		SpamKeywords:    true,
		CurrencySymbols: true,
		HasPhone:        true,
	}
	causes := ExtractCauses(flags, true, models.ScanKindText)
	assert.ElementsMatch(t,
		[]string{"contains_url", "urgency_language", "spam_keywords", "money_reference", "phone_number"},
		causeTypes(causes))

	for _, c := range causes {
		if c.Type == "urgency_language" {
			assert.Equal(t, models.SeverityHigh, c.Severity)
		}
	}
}

func TestExtractCausesURLOnlyFlagsIgnoredForText(t *testing.T) {
	flags := models.FeatureFlags{IPLiteralHost: true, SuspiciousDomain: true, BrandImpersonation: true}
	assert.Empty(t, ExtractCauses(flags, true, models.ScanKindText))
}

func TestExtractCausesURLKind(t *testing.T) {
	flags := models.FeatureFlags{
		HasURL:             true,
		IPLiteralHost:      true,
		SuspiciousDomain:   true,
		BrandImpersonation: true,
	}
	causes := ExtractCauses(flags, true, models.ScanKindURL)
	assert.ElementsMatch(t,
		[]string{"contains_url", "ip_address_url", "suspicious_domain", "phishing_detected"},
		causeTypes(causes))

	var impersonation *models.DangerCause
	for i := range causes {
		if causes[i].Type == "phishing_detected" {
			impersonation = &causes[i]
		}
	}
	require.NotNil(t, impersonation)
	assert.Equal(t, models.SeverityCritical, impersonation.Severity)
}

func TestExtractCausesNoFlags(t *testing.T) {
	assert.Empty(t, ExtractCauses(models.FeatureFlags{}, true, models.ScanKindText))
}
