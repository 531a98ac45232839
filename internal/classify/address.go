package classify

import "github.com/emmi-lili/tx-whisperer/internal/domain/model"

// formatRule is one (predicate, label) pair of a classifier. Rules are
// evaluated in slice order; the first match wins.
type formatRule struct {
	name  string
	chain model.Chain
	match func(string) bool
}

// Address rules run in EVM, Bitcoin, Solana order. The Bitcoin shapes
// are disjoint, so their relative order only matters for readability.
var addressRules = []formatRule{
	{"evm-address", model.ChainEVM, isEVMAddress},
	{"bitcoin-legacy-address", model.ChainBitcoin, isBitcoinLegacyAddress},
	{"bitcoin-p2sh-address", model.ChainBitcoin, isBitcoinP2SHAddress},
	{"bitcoin-bech32-address", model.ChainBitcoin, isBitcoinBech32Address},
	{"solana-address", model.ChainSolana, isSolanaAddress},
}

// ClassifyAddress returns the chain whose address format s satisfies,
// or Unknown when no rule claims it.
func ClassifyAddress(s string) model.Chain {
	for _, rule := range addressRules {
		if rule.match(s) {
			return rule.chain
		}
	}
	return model.ChainUnknown
}

func isEVMAddress(s string) bool {
	if !hasHexPrefix(s) || len(s) != 42 {
		return false
	}
	body := s[2:]
	return IsHex(body) && !IsTrivialHex(body)
}

func isBitcoinLegacyAddress(s string) bool {
	return len(s) >= 25 && len(s) <= 34 && s[0] == '1' && IsBase58(s)
}

func isBitcoinP2SHAddress(s string) bool {
	return len(s) >= 25 && len(s) <= 34 && s[0] == '3' && IsBase58(s)
}

func isBitcoinBech32Address(s string) bool {
	if len(s) < 42 || len(s) > 62 {
		return false
	}
	if !hasBech32Prefix(s) {
		return false
	}
	return isBech32Data(s[3:])
}

// hasBech32Prefix matches bc1 case-insensitively. Only the prefix is
// case-tolerant; the data part must already be lowercase.
func hasBech32Prefix(s string) bool {
	return len(s) >= 3 &&
		(s[0] == 'b' || s[0] == 'B') &&
		(s[1] == 'c' || s[1] == 'C') &&
		s[2] == '1'
}

func isSolanaAddress(s string) bool {
	return len(s) >= 32 && len(s) <= 44 && IsBase58(s) && hasNonHexChar(s)
}
