package feed

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"
)

// Signer handles feed API authentication signatures
type Signer struct {
	accessKey string
	secretKey string
}

// NewSigner creates a new Signer instance
func NewSigner(accessKey, secretKey string) *Signer {
	return &Signer{
		accessKey: accessKey,
		secretKey: secretKey,
	}
}

// GenerateHeaders creates the handshake authentication headers.
// method: GET, POST, etc.
// path: /v1/quotes (no host)
func (s *Signer) GenerateHeaders(method, path string) map[string]string {
	// Unix timestamp in milliseconds
	timestamp := fmt.Sprintf("%d", time.Now().UnixMilli())

	// String to sign: timestamp + method + path
	payload := timestamp + method + path

	sign := computeHmacSha256(payload, s.secretKey)

	headers := map[string]string{
		"ACCESS-KEY":       s.accessKey,
		"ACCESS-SIGN":      sign,
		"ACCESS-TIMESTAMP": timestamp,
		"Content-Type":     "application/json",
	}

	return headers
}

func computeHmacSha256(message string, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
