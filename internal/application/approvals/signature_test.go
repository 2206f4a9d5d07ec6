package approvals

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var hex64 = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestTimestampISO(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 30, 0, 123456789, time.FixedZone("AST", 3*3600))
	assert.Equal(t, "2024-05-01T09:30:00.123Z", TimestampISO(ts))
}

func TestSign_DeterministicAndSensitive(t *testing.T) {
	key := []byte("signing-key")
	id, user := uuid.New(), uuid.New()
	ts := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	sig := Sign(key, id, "APPROVED", ts, user)
	assert.Regexp(t, hex64, sig)
	assert.Equal(t, sig, Sign(key, id, "APPROVED", ts, user))

	assert.NotEqual(t, sig, Sign(key, uuid.New(), "APPROVED", ts, user))
	assert.NotEqual(t, sig, Sign(key, id, "REJECTED", ts, user))
	assert.NotEqual(t, sig, Sign(key, id, "APPROVED", ts.Add(time.Millisecond), user))
	assert.NotEqual(t, sig, Sign(key, id, "APPROVED", ts, uuid.New()))
	assert.NotEqual(t, sig, Sign([]byte("other-key"), id, "APPROVED", ts, user))

	assert.True(t, ValidSignature(key, id, "APPROVED", ts, user, sig))
	assert.False(t, ValidSignature(key, id, "REJECTED", ts, user, sig))
}
