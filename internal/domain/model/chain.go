package model

import "fmt"

// Chain is the network family an identifier belongs to, as judged by
// surface format alone. The set is closed; classification never invents
// new members at runtime.
type Chain string

const (
	ChainEVM     Chain = "evm"
	ChainBitcoin Chain = "bitcoin"
	ChainSolana  Chain = "solana"
	ChainUnknown Chain = "unknown"
)

func (c Chain) String() string {
	return string(c)
}

// Known reports whether c is a concrete network family rather than the
// Unknown placeholder.
func (c Chain) Known() bool {
	switch c {
	case ChainEVM, ChainBitcoin, ChainSolana:
		return true
	default:
		return false
	}
}

// ParseChain maps a wire name onto a Chain. Used for curated inputs
// (dataset files, query params); user-submitted identifiers never pass
// through here.
func ParseChain(s string) (Chain, error) {
	switch Chain(s) {
	case ChainEVM, ChainBitcoin, ChainSolana, ChainUnknown:
		return Chain(s), nil
	default:
		return ChainUnknown, fmt.Errorf("unknown chain %q", s)
	}
}
