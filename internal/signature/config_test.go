package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "xhub/internal/common/errors"
)

func TestNewConfig_Defaults(t *testing.T) {
	config, err := NewConfig("secret", nil)
	require.NoError(t, err)

	assert.Equal(t, "secret", config.Secret)
	assert.Equal(t, HmacSHA1, config.Algorithm)
	assert.Equal(t, "sha1=", config.SignaturePrefix)
	assert.Equal(t, "X-Hub-Signature", config.Header)
	assert.False(t, config.RejectInvalid)
	assert.Zero(t, config.MaxBodyBytes)
	assert.IsType(t, NopRecorder{}, config.Recorder)
}

func TestNewConfig_Options(t *testing.T) {
	rec := &fakeRecorder{}
	config, err := NewConfig("secret", &Options{
		RejectInvalid:   true,
		Algorithm:       HmacMD5,
		SignaturePrefix: "md5=",
		Header:          "X-Signature",
		MaxBodyBytes:    1 << 20,
		Recorder:        rec,
	})
	require.NoError(t, err)

	assert.True(t, config.RejectInvalid)
	assert.Equal(t, HmacMD5, config.Algorithm)
	assert.Equal(t, "md5=", config.SignaturePrefix)
	assert.Equal(t, "X-Signature", config.Header)
	assert.Equal(t, int64(1<<20), config.MaxBodyBytes)
	assert.Same(t, rec, config.Recorder)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid", Config{Secret: "s"}, false},
		{"missing secret", Config{}, true},
		{"negative body limit", Config{Secret: "s", MaxBodyBytes: -1}, true},
		{"unknown algorithm is allowed", Config{Secret: "s", Algorithm: "HmacFoo"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPresets(t *testing.T) {
	presets := Presets()

	for name, opts := range presets {
		t.Run(name, func(t *testing.T) {
			assert.True(t, SupportedAlgorithm(opts.Algorithm))
			assert.NotEmpty(t, opts.Header)
			assert.NotEmpty(t, opts.SignaturePrefix)
		})
	}

	github := presets["github-sha256"]
	v := newVerifier(t, &github)
	r := signedRequest(helloWorld, "")
	r.Header.Set("X-Hub-Signature-256", "sha256=734cc62f32841568f45715aeb9f4d7891324e6d948e4c6c60c0621cdac48623a")
	assert.True(t, v.Check(r))
}
