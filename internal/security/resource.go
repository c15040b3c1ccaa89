package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// SignResource binds an uploaded object to its owner so a stored key cannot be
// swapped under another media id.
func SignResource(secret string, parts ...string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(parts, ":")))
	return []byte(base64.RawURLEncoding.EncodeToString(mac.Sum(nil)))
}

func VerifyResource(secret string, signature []byte, parts ...string) bool {
	return hmac.Equal(signature, SignResource(secret, parts...))
}
