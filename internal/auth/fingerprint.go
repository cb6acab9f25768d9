package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// Fingerprint returns the SHA-256 of a refresh token, base64url encoded. Only
// the fingerprint is persisted, never the token itself.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// MatchesFingerprint compares token against a stored fingerprint in constant time.
func MatchesFingerprint(token string, stored *string) bool {
	if stored == nil || *stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(Fingerprint(token)), []byte(*stored)) == 1
}
