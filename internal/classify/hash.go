package classify

import "github.com/emmi-lili/tx-whisperer/internal/domain/model"

// Bare-hash rules, tried only when the input has no 0x prefix. The
// strict Solana window runs before the Bitcoin exact-64 rule, with the
// widened Solana window as the final fallback. A 64-character string
// cannot land in either Solana window, so Bitcoin never loses an input
// to them; the order is still fixed so the tie-break stays observable.
var bareHashRules = []formatRule{
	{"solana-signature", model.ChainSolana, isSolanaSignature},
	{"bitcoin-txid", model.ChainBitcoin, isBitcoinTxid},
	{"solana-signature-wide", model.ChainSolana, isSolanaSignatureWide},
}

// ClassifyHash returns the chain whose transaction-hash format s
// satisfies, or Unknown. A 0x prefix commits the input to the EVM rule:
// if the rest is not a valid EVM hash the answer is Unknown, never a
// fall-through to the bare-hash rules.
func ClassifyHash(s string) model.Chain {
	if hasHexPrefix(s) {
		if isEVMHash(s) {
			return model.ChainEVM
		}
		return model.ChainUnknown
	}
	for _, rule := range bareHashRules {
		if rule.match(s) {
			return rule.chain
		}
	}
	return model.ChainUnknown
}

func isEVMHash(s string) bool {
	if !hasHexPrefix(s) || len(s) != 66 {
		return false
	}
	body := s[2:]
	return IsHex(body) && !IsTrivialHex(body)
}

func isBitcoinTxid(s string) bool {
	return len(s) == 64 && IsHex(s) && !IsTrivialHex(s)
}

const (
	solanaSignatureMinLen = 85
	solanaSignatureMaxLen = 90
	// The widened fallback opens the low end to 80, matching the
	// explorer extraction window. Signatures this short are unusual
	// but representable in base58.
	solanaSignatureWideMinLen = 80
)

func isSolanaSignature(s string) bool {
	return len(s) >= solanaSignatureMinLen && len(s) <= solanaSignatureMaxLen &&
		IsBase58(s) && hasNonHexChar(s)
}

func isSolanaSignatureWide(s string) bool {
	return len(s) >= solanaSignatureWideMinLen && len(s) <= solanaSignatureMaxLen &&
		IsBase58(s) && hasNonHexChar(s)
}
