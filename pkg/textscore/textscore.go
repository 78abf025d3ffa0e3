// Package textscore normalizes chat messages and scores how "loud" they are.
// The score is the share of ASCII letters written in upper case.
package textscore

import (
	"regexp"
)

// ComplianceThreshold is the minimum score a message needs to be considered compliant
const ComplianceThreshold = 80.0

// A URL ends at any Unicode space separator, \v or a BOM, not only at ASCII whitespace
var urlPattern = regexp.MustCompile(`(?i)https?://[^\s\v\p{Z}\x{FEFF}]+`)

// RemoveURLs deletes every http:// or https:// token from the text
func RemoveURLs(text string) string {
	return urlPattern.ReplaceAllString(text, "")
}

// CapitalRatio returns the percentage (0-100) of ASCII letters that are upper case.
// Text without any ASCII letter scores 100.
func CapitalRatio(text string) float64 {
	var letters, upper int
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'A' && c <= 'Z':
			letters++
			upper++
		case c >= 'a' && c <= 'z':
			letters++
		}
	}

	if letters == 0 {
		return 100
	}
	return float64(upper) / float64(letters) * 100
}

// Score strips URLs and returns the capital ratio of what is left
func Score(text string) float64 {
	return CapitalRatio(RemoveURLs(text))
}

// IsCompliant reports whether a score reaches the compliance threshold
func IsCompliant(score float64) bool {
	return score >= ComplianceThreshold
}
