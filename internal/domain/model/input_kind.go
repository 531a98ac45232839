package model

import "fmt"

// InputKind says what an identifier is: a wallet address or a
// transaction hash/signature.
type InputKind string

const (
	InputKindAddress     InputKind = "address"
	InputKindTransaction InputKind = "transaction"
	InputKindUnknown     InputKind = "unknown"
)

func (k InputKind) String() string {
	return string(k)
}

// Known reports whether k carries a concrete classification.
func (k InputKind) Known() bool {
	return k == InputKindAddress || k == InputKindTransaction
}

// ParseInputKind maps a wire name onto an InputKind.
func ParseInputKind(s string) (InputKind, error) {
	switch InputKind(s) {
	case InputKindAddress, InputKindTransaction, InputKindUnknown:
		return InputKind(s), nil
	default:
		return InputKindUnknown, fmt.Errorf("unknown input kind %q", s)
	}
}
