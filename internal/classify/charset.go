package classify

// IsHex reports whether s is non-empty and consists solely of
// hexadecimal characters.
func IsHex(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		switch {
		case ch >= '0' && ch <= '9':
		case ch >= 'a' && ch <= 'f':
		case ch >= 'A' && ch <= 'F':
		default:
			return false
		}
	}
	return true
}

// IsBase58 reports whether s is non-empty and consists solely of
// characters from the base58 alphabet, which excludes 0, O, I and l.
func IsBase58(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		switch {
		case ch >= '1' && ch <= '9':
		case ch >= 'A' && ch <= 'H':
		case ch >= 'J' && ch <= 'N':
		case ch >= 'P' && ch <= 'Z':
		case ch >= 'a' && ch <= 'k':
		case ch >= 'm' && ch <= 'z':
		default:
			return false
		}
	}
	return true
}

// IsTrivialHex reports whether s is, case-insensitively, an unbroken
// run of 0 or an unbroken run of f. Such values are syntactically valid
// hex but are placeholders, not identifiers.
func IsTrivialHex(s string) bool {
	if s == "" {
		return false
	}
	allZero, allF := true, true
	for _, ch := range s {
		if ch != '0' {
			allZero = false
		}
		if ch != 'f' && ch != 'F' {
			allF = false
		}
		if !allZero && !allF {
			return false
		}
	}
	return allZero || allF
}

// IsHexShaped reports whether a normalized value carries hex semantics:
// either 0x-prefixed or exactly 64 hex characters. Hex-shaped values
// compare case-insensitively; everything else is case-sensitive.
func IsHexShaped(s string) bool {
	return hasHexPrefix(s) || (len(s) == 64 && IsHex(s))
}

func hasHexPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// isBech32Data checks the Bech32 data charset: lowercase letters and
// digits excluding 1, b, i and o.
func isBech32Data(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		switch {
		case ch >= '0' && ch <= '9' && ch != '1':
		case ch >= 'a' && ch <= 'z' && ch != 'b' && ch != 'i' && ch != 'o':
		default:
			return false
		}
	}
	return true
}

// hasNonHexChar reports whether at least one character of s falls
// outside the hex alphabet. Base58 candidates must pass this to be
// claimed; a base58-length string built only of hex characters is
// ambiguous and stays unclaimed.
func hasNonHexChar(s string) bool {
	for _, ch := range s {
		switch {
		case ch >= '0' && ch <= '9':
		case ch >= 'a' && ch <= 'f':
		case ch >= 'A' && ch <= 'F':
		default:
			return true
		}
	}
	return false
}
