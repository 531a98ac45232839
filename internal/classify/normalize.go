package classify

import (
	"strings"
	"unicode"
)

// Normalize cleans a raw identifier into its canonical comparison form:
// whitespace removed (interior included, so a hash split across lines
// survives), an identifier embedded in a known explorer URL extracted,
// the 0x prefix lowercased, and hex-shaped values lowercased end to
// end. Base58 payloads keep their casing because base58 is
// case-sensitive. Normalize never fails; input it cannot make sense of
// passes through cleaned for the classifiers to reject.
func Normalize(raw string) string {
	s := stripWhitespace(raw)
	if looksLikeURL(s) {
		if id, ok := extractIdentifier(s); ok {
			s = id
		}
	}
	if strings.HasPrefix(s, "0X") {
		s = "0x" + s[2:]
	}
	if strings.HasPrefix(s, "0x") || (len(s) == 64 && IsHex(s)) {
		s = strings.ToLower(s)
	}
	return s
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// explorerDomains marks strings as URL-ish even without a scheme, so a
// pasted "etherscan.io/tx/0x…" still goes through extraction.
var explorerDomains = []string{
	"etherscan.io",
	"polygonscan.com",
	"bscscan.com",
	"basescan.org",
	"arbiscan.io",
	"blockstream.info",
	"mempool.space",
	"blockchain.com",
	"solscan.io",
	"explorer.solana.com",
	"solana.fm",
}

func looksLikeURL(s string) bool {
	if strings.Contains(s, "://") {
		return true
	}
	for _, domain := range explorerDomains {
		if strings.Contains(s, domain) {
			return true
		}
	}
	return false
}
