package feed

import (
	"testing"
)

func TestSigner_GenerateHeaders(t *testing.T) {
	signer := NewSigner("key", "secret")

	headers := signer.GenerateHeaders("GET", "/v1/quotes")

	if headers["ACCESS-KEY"] != "key" {
		t.Errorf("Expected ACCESS-KEY to be 'key', got %s", headers["ACCESS-KEY"])
	}
	if headers["ACCESS-SIGN"] == "" {
		t.Error("ACCESS-SIGN should not be empty")
	}
	if len(headers["ACCESS-TIMESTAMP"]) != 13 { // Milliseconds
		t.Errorf("Expected timestamp len 13, got %s", headers["ACCESS-TIMESTAMP"])
	}
}

func TestComputeHmacSha256(t *testing.T) {
	// Standard HMAC-SHA256 Test Vector
	key := "key"
	data := "The quick brown fox jumps over the lazy dog"
	// Base64: 97yD9DBThCSxMpjmqm+xQ+9NWaFJRhdZl0edvC0aPNg=

	expected := "97yD9DBThCSxMpjmqm+xQ+9NWaFJRhdZl0edvC0aPNg="
	result := computeHmacSha256(data, key)

	if result != expected {
		t.Errorf("HMAC Mismatch. Expected %s, got %s", expected, result)
	}
}
