package classify

import (
	"strings"

	"golang.org/x/crypto/sha3"
)

// ChecksumAddress renders an EVM address in its EIP-55 mixed-case
// display form. This is a pure string transformation over the hex
// digits; it neither proves the address exists nor is used anywhere in
// classification. Non-EVM-shaped input returns "".
func ChecksumAddress(addr string) string {
	if !hasHexPrefix(addr) || len(addr) != 42 {
		return ""
	}
	body := strings.ToLower(addr[2:])
	if !IsHex(body) {
		return ""
	}

	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(body))
	sum := hasher.Sum(nil)

	out := make([]byte, len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c >= 'a' && c <= 'f' {
			// Nibble i of the digest decides the case of digit i.
			nibble := sum[i/2]
			if i%2 == 0 {
				nibble >>= 4
			} else {
				nibble &= 0x0f
			}
			if nibble >= 8 {
				c = c - 'a' + 'A'
			}
		}
		out[i] = c
	}
	return "0x" + string(out)
}
