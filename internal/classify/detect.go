package classify

import "github.com/emmi-lili/tx-whisperer/internal/domain/model"

// minIdentifierLen rejects inputs too short to be any supported
// identifier before the classifiers run. It is a coarse floor; the
// shortest supported format, a Bitcoin legacy address, is 25 chars.
const minIdentifierLen = 20

// Detect normalizes raw and resolves it to a chain and input kind.
// Addresses are tried before hashes so a short value is never misread
// as a truncated long-format hash. Detect is deterministic and
// idempotent: feeding its own normalized form back in yields the same
// answer.
func Detect(raw string) (model.Chain, model.InputKind) {
	s := Normalize(raw)
	if len(s) < minIdentifierLen {
		return model.ChainUnknown, model.InputKindUnknown
	}
	if chain := ClassifyAddress(s); chain.Known() {
		return chain, model.InputKindAddress
	}
	if chain := ClassifyHash(s); chain.Known() {
		return chain, model.InputKindTransaction
	}
	return model.ChainUnknown, model.InputKindUnknown
}

// DetectChain reports only the chain of raw.
func DetectChain(raw string) model.Chain {
	chain, _ := Detect(raw)
	return chain
}

// DetectInputKind reports only the input kind of raw.
func DetectInputKind(raw string) model.InputKind {
	_, kind := Detect(raw)
	return kind
}

// IsValid reports whether raw classifies as any known chain.
func IsValid(raw string) bool {
	return DetectChain(raw).Known()
}
