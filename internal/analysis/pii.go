package analysis

import (
	"fmt"
	"regexp"
)

// piiPattern pairs a user-facing category label with its matcher. Go regexps
// keep no scan position, so a shared pattern is safe across requests.
type piiPattern struct {
	label string
	re    *regexp.Regexp
}

// Checked in order; the first category to match is reported.
var piiPatterns = []piiPattern{
	{"email address", regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)},
	{"phone number", regexp.MustCompile(`\b(?:\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)},
	{"credit card number", regexp.MustCompile(`\b(?:4[0-9]{12}(?:[0-9]{3})?|5[1-5][0-9]{14}|6(?:011|5[0-9]{2})[0-9]{12}|3[47][0-9]{13})\b`)},
	{"Social Security Number", regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{"IP address", regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`)},
}

// DetectPII returns the label of the first sensitive-data category found.
func DetectPII(text string) (string, bool) {
	for _, p := range piiPatterns {
		if p.re.MatchString(text) {
			return p.label, true
		}
	}
	return "", false
}

// ScreenPII passes text through unchanged or rejects it with a potential-PII
// error naming the category. It is a conservative heuristic: misses are expected.
func ScreenPII(text string) (string, error) {
	if label, found := DetectPII(text); found {
		return "", &Error{
			Kind:    KindPotentialPII,
			Label:   label,
			Message: fmt.Sprintf("Potential %s detected. Please remove all personal information.", label),
		}
	}
	return text, nil
}

// PIICategories lists the screened categories in check order.
func PIICategories() []string {
	out := make([]string, len(piiPatterns))
	for i, p := range piiPatterns {
		out[i] = p.label
	}
	return out
}
