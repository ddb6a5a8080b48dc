package signature

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"sort"
	"strings"

	"golang.org/x/crypto/sha3"

	"xhub/internal/common/errors"
)

// Algorithm identifiers understood by the verifier. Lookup is
// case-insensitive and the lower-case hmac-* spellings are accepted as aliases.
const (
	HmacMD5        = "HmacMD5"
	HmacSHA1       = "HmacSHA1"
	HmacSHA224     = "HmacSHA224"
	HmacSHA256     = "HmacSHA256"
	HmacSHA384     = "HmacSHA384"
	HmacSHA512     = "HmacSHA512"
	HmacSHA512_224 = "HmacSHA512/224"
	HmacSHA512_256 = "HmacSHA512/256"
	HmacSHA3_224   = "HmacSHA3-224"
	HmacSHA3_256   = "HmacSHA3-256"
	HmacSHA3_384   = "HmacSHA3-384"
	HmacSHA3_512   = "HmacSHA3-512"
)

var algorithms = map[string]func() hash.Hash{
	strings.ToLower(HmacMD5):        md5.New,
	strings.ToLower(HmacSHA1):       sha1.New,
	strings.ToLower(HmacSHA224):     sha256.New224,
	strings.ToLower(HmacSHA256):     sha256.New,
	strings.ToLower(HmacSHA384):     sha512.New384,
	strings.ToLower(HmacSHA512):     sha512.New,
	strings.ToLower(HmacSHA512_224): sha512.New512_224,
	strings.ToLower(HmacSHA512_256): sha512.New512_256,
	strings.ToLower(HmacSHA3_224):   sha3.New224,
	strings.ToLower(HmacSHA3_256):   sha3.New256,
	strings.ToLower(HmacSHA3_384):   sha3.New384,
	strings.ToLower(HmacSHA3_512):   sha3.New512,

	"hmac-md5":        md5.New,
	"hmac-sha1":       sha1.New,
	"hmac-sha224":     sha256.New224,
	"hmac-sha256":     sha256.New,
	"hmac-sha384":     sha512.New384,
	"hmac-sha512":     sha512.New,
	"hmac-sha3-224":   sha3.New224,
	"hmac-sha3-256":   sha3.New256,
	"hmac-sha3-384":   sha3.New384,
	"hmac-sha3-512":   sha3.New512,
}

func lookupAlgorithm(name string) (func() hash.Hash, bool) {
	h, ok := algorithms[strings.ToLower(strings.TrimSpace(name))]
	return h, ok
}

// SupportedAlgorithm reports whether name selects a keyed-hash function.
func SupportedAlgorithm(name string) bool {
	_, ok := lookupAlgorithm(name)
	return ok
}

// Algorithms returns the canonical identifiers in sorted order.
func Algorithms() []string {
	names := []string{
		HmacMD5, HmacSHA1, HmacSHA224, HmacSHA256, HmacSHA384, HmacSHA512,
		HmacSHA512_224, HmacSHA512_256,
		HmacSHA3_224, HmacSHA3_256, HmacSHA3_384, HmacSHA3_512,
	}
	sort.Strings(names)
	return names
}

// Digest computes the keyed MAC of body using algorithm, with the UTF-8
// bytes of secret as key.
func Digest(body []byte, secret, algorithm string) ([]byte, error) {
	newHash, ok := lookupAlgorithm(algorithm)
	if !ok {
		return nil, errors.ValidationError("unsupported algorithm").WithContext("algorithm", algorithm)
	}
	if secret == "" {
		return nil, errors.ConfigError("secret is required")
	}

	mac := hmac.New(newHash, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil), nil
}
