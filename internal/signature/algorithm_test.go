package signature

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"math/rand"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"

	apperrors "xhub/internal/common/errors"
)

func reference(newHash func() hash.Hash, key string, body []byte) []byte {
	mac := hmac.New(newHash, []byte(key))
	mac.Write(body)
	return mac.Sum(nil)
}

func TestDigest_MatchesReference(t *testing.T) {
	references := map[string]func() hash.Hash{
		HmacMD5:        md5.New,
		HmacSHA1:       sha1.New,
		HmacSHA224:     sha256.New224,
		HmacSHA256:     sha256.New,
		HmacSHA384:     sha512.New384,
		HmacSHA512:     sha512.New,
		HmacSHA512_224: sha512.New512_224,
		HmacSHA512_256: sha512.New512_256,
		HmacSHA3_224:   sha3.New224,
		HmacSHA3_256:   sha3.New256,
		HmacSHA3_384:   sha3.New384,
		HmacSHA3_512:   sha3.New512,
	}
	require.Len(t, references, len(Algorithms()))

	rng := rand.New(rand.NewSource(42))
	for _, name := range Algorithms() {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 20; i++ {
				body := make([]byte, rng.Intn(4096))
				rng.Read(body)
				key := "k" + hex.EncodeToString(body[:min(len(body), 8)])

				got, err := Digest(body, key, name)
				require.NoError(t, err)
				assert.Equal(t, reference(references[name], key, body), got)
			}
		})
	}
}

func TestDigest_KnownVectors(t *testing.T) {
	tests := map[string]string{
		HmacSHA1:   "03376ee7ad7bbfceee98660439a4d8b125122a5a",
		HmacMD5:    "78d6997b1230f38e59b6d1642dfaa3a4",
		HmacSHA256: "734cc62f32841568f45715aeb9f4d7891324e6d948e4c6c60c0621cdac48623a",
		HmacSHA224: "ddd326e77df7f2645cd4c89786477752fd7c7dacb5fa0200bdf6910f",
		HmacSHA384: "2da3bb177b92aae98c3ab22727d7f60c905be1baff71fb4b00a6e410923e6558376590c1faf922ff51ec49be77409ac6",
	}

	for algorithm, want := range tests {
		t.Run(algorithm, func(t *testing.T) {
			got, err := Digest([]byte("hello world"), "secret", algorithm)
			require.NoError(t, err)
			assert.Equal(t, want, hex.EncodeToString(got))
		})
	}
}

func TestDigest_Errors(t *testing.T) {
	_, err := Digest([]byte("x"), "secret", "HmacNope")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	_, err = Digest([]byte("x"), "", HmacSHA1)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestSupportedAlgorithm(t *testing.T) {
	for _, name := range []string{"HmacSHA1", "hmacsha1", "HMACSHA256", "hmac-sha512", " HmacMD5 ", "HmacSHA3-256", "hmac-sha3-512"} {
		assert.True(t, SupportedAlgorithm(name), name)
	}
	for _, name := range []string{"", "SHA1", "HmacSHA999", "hmac-whirlpool"} {
		assert.False(t, SupportedAlgorithm(name), name)
	}
}

func TestSign(t *testing.T) {
	value, err := Sign([]byte("hello world"), "secret", HmacSHA1, "sha1=")
	require.NoError(t, err)
	assert.Equal(t, "sha1=03376ee7ad7bbfceee98660439a4d8b125122a5a", value)

	_, err = Sign([]byte("hello world"), "secret", "HmacNope", "x=")
	assert.Error(t, err)
}

func TestSignRequest_RoundTrip(t *testing.T) {
	config, err := NewConfig("secret", &Options{
		Algorithm:       HmacSHA512,
		SignaturePrefix: "sha512=",
		Header:          "X-Hub-Signature-512",
	})
	require.NoError(t, err)

	header := http.Header{}
	require.NoError(t, SignRequest(header, []byte("payload"), config))

	value := header.Get("X-Hub-Signature-512")
	require.NotEmpty(t, value)
	assert.Equal(t, "sha512=", value[:7])
	assert.Len(t, value, 7+sha512.Size*2)
}
