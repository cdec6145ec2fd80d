// Package safefilter short-circuits classification for trivially safe
// conversational openers so they never reach the ML service.
package safefilter

import (
	"regexp"
	"strings"
)

// BypassReason is recorded on verdicts produced by the filter.
const BypassReason = "safe_greeting_pattern"

// Common greeting phrases that must never be flagged. Matched
// case-insensitively against the trimmed message.
var greetingPatterns = []string{
	`^hi+\s*$`,
	`^hello+\s*$`,
	`^hey+\s*$`,
	`^hi+\s+(there|friend|friends|everyone|all|guys?|buddy|mate)?\s*[!?.]*$`,
	`^hello+\s+(there|friend|friends|everyone|all|guys?|buddy|mate)?\s*[!?.]*$`,
	`^hey+\s+(there|friend|friends|everyone|all|guys?|buddy|mate)?\s*[!?.]*$`,
	`^how\s+are\s+you(\s+today)?(\s+my\s+friend)?\s*[?!.]*$`,
	`^how('s|\s+is)\s+(it\s+going|everything|life|your\s+day)\s*[?!.]*$`,
	`^what('s|\s+is)\s+up\s*[?!.]*$`,
	`^good\s+(morning|afternoon|evening|night)\s*[!.]*$`,
	`^greetings?\s*[!.]*$`,
	`^yo+\s*[!.]*$`,
	`^sup\s*[?!.]*$`,
	`^howdy\s*[!.]*$`,
	`^nice\s+to\s+(meet|see)\s+you\s*[!.]*$`,
	`^how\s+have\s+you\s+been\s*[?!.]*$`,
	`^long\s+time\s+no\s+see\s*[!.]*$`,
	`^(how\s+are\s+you\s+)?(doing|going)\s*(today|my\s+friend)?\s*[?!.]*$`,
}

// Filter matches known-benign greeting phrases.
type Filter struct {
	patterns []*regexp.Regexp
}

// New compiles the greeting allow-list.
func New() *Filter {
	patterns := make([]*regexp.Regexp, 0, len(greetingPatterns))
	for _, p := range greetingPatterns {
		patterns = append(patterns, regexp.MustCompile(`(?i)`+p))
	}
	return &Filter{patterns: patterns}
}

// Match reports whether text is a known safe greeting.
func (f *Filter) Match(text string) bool {
	trimmed := strings.TrimSpace(text)
	for _, p := range f.patterns {
		if p.MatchString(trimmed) {
			return true
		}
	}
	return false
}
