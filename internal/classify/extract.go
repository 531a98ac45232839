package classify

import "regexp"

// extractRule pairs a matcher with its capture. Rules run in order and
// the first match wins; adding an explorer means appending a rule, not
// touching the existing ones.
type extractRule struct {
	name string
	re   *regexp.Regexp
}

var extractRules = []extractRule{
	{"evm-explorer-tx", regexp.MustCompile(`/tx/(0[xX][0-9a-fA-F]{64})(?:[/?#]|$)`)},
	{"solana-explorer-tx", regexp.MustCompile(`/tx/([1-9A-HJ-NP-Za-km-z]{80,90})(?:[/?#]|$)`)},
	{"bitcoin-explorer-tx", regexp.MustCompile(`/tx/([0-9a-fA-F]{64})(?:[/?#]|$)`)},
	{"hex-hash-anywhere", regexp.MustCompile(`(0[xX][0-9a-fA-F]{64})`)},
	{"path-trailing-hash", regexp.MustCompile(`/([0-9a-fA-F]{64})(?:[?#]|$)`)},
	{"explorer-address", regexp.MustCompile(`/address/([0-9A-Za-z]{20,90})(?:[/?#]|$)`)},
	{"solana-explorer-account", regexp.MustCompile(`/account/([1-9A-HJ-NP-Za-km-z]{32,44})(?:[/?#]|$)`)},
}

// extractIdentifier pulls an identifier out of a URL-shaped string.
// The second return is false when no rule matched, in which case the
// caller keeps the cleaned string as-is.
func extractIdentifier(s string) (string, bool) {
	for _, rule := range extractRules {
		if m := rule.re.FindStringSubmatch(s); m != nil {
			return m[1], true
		}
	}
	return "", false
}
