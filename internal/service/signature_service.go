package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACSignatureVerifier implements ports.SignatureVerifier using HMAC-SHA256.
// It is the trust boundary for payment confirmations: a forged or tampered
// signature is rejected here, before any ledger mutation.
type HMACSignatureVerifier struct{}

// NewHMACSignatureVerifier creates a new HMAC-SHA256 verifier.
func NewHMACSignatureVerifier() *HMACSignatureVerifier {
	return &HMACSignatureVerifier{}
}

// Sign computes HMAC-SHA256 of payload using secret.
// Returns lowercase hex-encoded signature.
func (s *HMACSignatureVerifier) Sign(secret string, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks if signature matches HMAC-SHA256(secret, payload).
// Uses constant-time comparison to prevent timing attacks.
func (s *HMACSignatureVerifier) Verify(secret string, payload string, signature string) bool {
	expected := s.Sign(secret, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}
