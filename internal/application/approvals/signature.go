package approvals

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

const isoMillis = "2006-01-02T15:04:05.000Z"

// TimestampISO formats t in UTC with millisecond precision, e.g. 2024-05-01T09:30:00.123Z.
func TimestampISO(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

// Sign returns hex(HMAC-SHA256(key, "{approvalId}:{status}:{timestamp}:{userId}")).
func Sign(key []byte, approvalID uuid.UUID, status string, signedOn time.Time, userID uuid.UUID) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(approvalID.String() + ":" + status + ":" + TimestampISO(signedOn) + ":" + userID.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

// ValidSignature recomputes the signature and compares in constant time.
func ValidSignature(key []byte, approvalID uuid.UUID, status string, signedOn time.Time, userID uuid.UUID, signature string) bool {
	want := Sign(key, approvalID, status, signedOn, userID)
	return hmac.Equal([]byte(want), []byte(signature))
}
