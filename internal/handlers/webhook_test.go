package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xhub/internal/common/logging"
	"xhub/internal/handlers"
	"xhub/internal/signature"
)

const helloWorldSHA256 = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

func decodeReceipt(t *testing.T, rec *httptest.ResponseRecorder) handlers.Receipt {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var receipt handlers.Receipt
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&receipt))
	return receipt
}

func TestHandleWebhook_BehindVerifier(t *testing.T) {
	v, err := signature.New("secret", nil, logging.NewNopLogger())
	require.NoError(t, err)

	h := handlers.New(logging.NewNopLogger(), "test")
	handler := v.Middleware(http.HandlerFunc(h.HandleWebhook))

	tests := []struct {
		name      string
		signature string
		valid     bool
	}{
		{"valid signature", "sha1=03376ee7ad7bbfceee98660439a4d8b125122a5a", true},
		{"wrong digest", "sha1=0000000000000000000000000000000000000000", false},
		{"no signature", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("hello world"))
			if tt.signature != "" {
				req.Header.Set("X-Hub-Signature", tt.signature)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			receipt := decodeReceipt(t, rec)
			assert.Equal(t, tt.valid, receipt.Valid)
			assert.Equal(t, 11, receipt.Size)
			assert.Equal(t, helloWorldSHA256, receipt.SHA256, "body must reach the handler unchanged")
		})
	}
}

func TestHandleWebhook_WithoutVerifier(t *testing.T) {
	h := handlers.New(nil, "test")

	rec := httptest.NewRecorder()
	h.HandleWebhook(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("")))

	receipt := decodeReceipt(t, rec)
	assert.False(t, receipt.Valid)
	assert.Zero(t, receipt.Size)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", receipt.SHA256)
}

func TestHealthCheck(t *testing.T) {
	h := handlers.New(logging.NewNopLogger(), "1.2.3")

	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "1.2.3", body["version"])
	assert.Contains(t, body, "uptime")
	assert.Contains(t, body, "timestamp")
}
