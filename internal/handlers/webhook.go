package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"xhub/internal/common/logging"
	"xhub/internal/signature"
)

// Receipt acknowledges a delivered webhook. SHA256 is computed over the body
// as the handler read it, which lets a sender confirm that verification left
// the payload intact.
type Receipt struct {
	Valid  bool   `json:"valid"`
	Size   int    `json:"size"`
	SHA256 string `json:"sha256"`
}

// HandleWebhook answers with a Receipt for the request body. It runs behind
// the signature middleware and reports that middleware's verdict.
func (h *Handlers) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.WithContext(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Warn("Failed to read request body", logging.Err(err))
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	sum := sha256.Sum256(body)
	receipt := Receipt{
		Valid:  signature.IsValid(r),
		Size:   len(body),
		SHA256: hex.EncodeToString(sum[:]),
	}

	logger.Info("Webhook received",
		logging.Bool("valid", receipt.Valid),
		logging.Int("size", receipt.Size),
		logging.String("event", r.Header.Get("X-GitHub-Event")),
	)

	h.sendJSON(w, r, http.StatusOK, receipt)
}
