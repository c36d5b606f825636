package webhook

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSign(t *testing.T) {
	payload := []byte(`{"type":"alert.created","data":"hello"}`)

	signature := Sign("my-secret-key", 1700000000, payload)
	assert.True(t, strings.HasPrefix(signature, "sha256="))
	assert.Len(t, signature, len("sha256=")+64)

	assert.Equal(t, signature, Sign("my-secret-key", 1700000000, payload))
	assert.NotEqual(t, signature, Sign("my-secret-key", 1700000001, payload))
}

func TestVerify(t *testing.T) {
	secret := "test-secret"
	payload := []byte(`{"test":"data"}`)
	ts := int64(1700000000)
	validSignature := Sign(secret, ts, payload)

	tests := []struct {
		name      string
		secret    string
		timestamp int64
		payload   []byte
		signature string
		expected  bool
	}{
		{
			name:      "valid signature",
			secret:    secret,
			timestamp: ts,
			payload:   payload,
			signature: validSignature,
			expected:  true,
		},
		{
			name:      "invalid signature",
			secret:    secret,
			timestamp: ts,
			payload:   payload,
			signature: "sha256=invalid",
			expected:  false,
		},
		{
			name:      "wrong secret",
			secret:    "wrong-secret",
			timestamp: ts,
			payload:   payload,
			signature: validSignature,
			expected:  false,
		},
		{
			name:      "modified payload",
			secret:    secret,
			timestamp: ts,
			payload:   []byte(`{"test":"modified"}`),
			signature: validSignature,
			expected:  false,
		},
		{
			name:      "replayed with other timestamp",
			secret:    secret,
			timestamp: ts + 60,
			payload:   payload,
			signature: validSignature,
			expected:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Verify(tt.secret, tt.timestamp, tt.payload, tt.signature)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestVerifyWithTolerance(t *testing.T) {
	secret := "test-secret"
	payload := []byte(`{}`)
	now := time.Unix(1700000000, 0)

	fresh := now.Add(-2 * time.Minute).Unix()
	stale := now.Add(-10 * time.Minute).Unix()

	assert.True(t, VerifyWithTolerance(secret, fresh, payload, Sign(secret, fresh, payload), 5*time.Minute, now))
	assert.False(t, VerifyWithTolerance(secret, stale, payload, Sign(secret, stale, payload), 5*time.Minute, now))
}
