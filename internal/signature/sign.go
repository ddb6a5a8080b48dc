package signature

import (
	"encoding/hex"
	"net/http"
)

// Sign returns the header value a producer sends for body: prefix followed by
// the lower-case hex MAC.
func Sign(body []byte, secret, algorithm, prefix string) (string, error) {
	digest, err := Digest(body, secret, algorithm)
	if err != nil {
		return "", err
	}
	return prefix + hex.EncodeToString(digest), nil
}

// SignRequest computes the header value for body using config and sets it on
// header.
func SignRequest(header http.Header, body []byte, config *Config) error {
	value, err := Sign(body, config.Secret, config.Algorithm, config.SignaturePrefix)
	if err != nil {
		return err
	}
	header.Set(config.Header, value)
	return nil
}
