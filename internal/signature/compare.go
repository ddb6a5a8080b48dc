package signature

import "crypto/subtle"

// constantTimeEqual compares a locally computed digest against a candidate
// taken from the request. The loop always walks the full expected digest and
// the length check is folded into the result, so timing depends only on
// len(expected).
func constantTimeEqual(expected, candidate []byte) bool {
	var diff byte
	for i := range expected {
		var c byte
		if i < len(candidate) {
			c = candidate[i]
		}
		diff |= expected[i] ^ c
	}

	sameLength := subtle.ConstantTimeEq(int32(len(expected)), int32(len(candidate)))
	return subtle.ConstantTimeByteEq(diff, 0)&sameLength == 1
}
