// Package signature implements HMAC-SHA256 webhook signature verification.
// The upstream signer sends either a bare hex signature or a structured
// header of the form "t={timestamp},v1={signature}".
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify reports whether header carries a valid signature over rawPayload.
// rawPayload must be the exact bytes received on the wire; re-serialized JSON
// is not guaranteed byte-identical. A verifier with no secret rejects
// everything.
func (v *Verifier) Verify(rawPayload []byte, header string) bool {
	if len(v.secret) == 0 {
		return false
	}
	expected := Compute(rawPayload, v.secret)
	got := extractSignature(header)
	// hmac.Equal is constant-time; a short-circuiting comparison would leak
	// how many leading bytes matched.
	return hmac.Equal([]byte(expected), []byte(got))
}

// Compute returns the hex HMAC-SHA256 of payload under secret.
func Compute(payload, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// extractSignature handles both header grammars. A structured header is a
// comma-separated list of key=value pairs; the signature compared is the v1
// value, empty if absent so that comparison fails.
func extractSignature(header string) string {
	if !strings.Contains(header, "=") {
		return header
	}
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.TrimSpace(kv[0]) == "v1" {
			return strings.TrimSpace(kv[1])
		}
	}
	return ""
}
