package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(cfg Config, now *time.Time) *Limiter {
	l := NewLimiter(cfg)
	l.now = func() time.Time { return *now }
	return l
}

func TestAllowWithinBudget(t *testing.T) {
	now := time.Now()
	l := newTestLimiter(Write, &now)

	for i := 1; i <= Write.MaxRequests; i++ {
		result := l.Allow("ip:10.0.0.1")
		assert.False(t, result.Limited, "request %d should pass", i)
		assert.Equal(t, Write.MaxRequests-i, result.Remaining)
	}

	result := l.Allow("ip:10.0.0.1")
	assert.True(t, result.Limited)
	assert.Equal(t, 0, result.Remaining)
	assert.Equal(t, now.Add(Write.Interval), result.ResetTime)
}

func TestAllowIsolatesIdentifiers(t *testing.T) {
	now := time.Now()
	l := newTestLimiter(Write, &now)

	for i := 0; i <= Write.MaxRequests; i++ {
		l.Allow("ip:10.0.0.1")
	}
	assert.True(t, l.Allow("ip:10.0.0.1").Limited)

	result := l.Allow("key:other-client")
	assert.False(t, result.Limited)
	assert.Equal(t, Write.MaxRequests-1, result.Remaining)
}

func TestAllowResetsAfterWindow(t *testing.T) {
	now := time.Now()
	l := newTestLimiter(Write, &now)

	for i := 0; i <= Write.MaxRequests; i++ {
		l.Allow("ip:10.0.0.1")
	}
	assert.True(t, l.Allow("ip:10.0.0.1").Limited)

	now = now.Add(Write.Interval + time.Second)

	result := l.Allow("ip:10.0.0.1")
	assert.False(t, result.Limited)
	assert.Equal(t, Write.MaxRequests-1, result.Remaining)
	assert.Equal(t, now.Add(Write.Interval), result.ResetTime)
}

func TestCleanup(t *testing.T) {
	now := time.Now()
	l := newTestLimiter(Read, &now)

	l.Allow("ip:10.0.0.1")
	l.Allow("ip:10.0.0.2")
	now = now.Add(Read.Interval + time.Second)
	l.Allow("ip:10.0.0.3")

	removed := l.Cleanup()

	assert.Equal(t, 2, removed)
	assert.Len(t, l.entries, 1)
	assert.Contains(t, l.entries, "ip:10.0.0.3")
}

func TestIdentifier(t *testing.T) {
	tests := []struct {
		name       string
		apiKey     string
		forwarded  string
		remoteAddr string
		expected   string
	}{
		{
			name:       "api key wins over everything",
			apiKey:     "secret",
			forwarded:  "203.0.113.7",
			remoteAddr: "10.0.0.1:1234",
			expected:   "key:secret",
		},
		{
			name:       "first hop of forwarded chain",
			forwarded:  "203.0.113.7, 198.51.100.2",
			remoteAddr: "10.0.0.1:1234",
			expected:   "ip:203.0.113.7",
		},
		{
			name:       "peer address without forwarding",
			remoteAddr: "10.0.0.1:1234",
			expected:   "ip:10.0.0.1",
		},
		{
			name:     "nothing known",
			expected: "ip:unknown",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/products", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.apiKey != "" {
				r.Header.Set("x-api-key", tt.apiKey)
			}
			if tt.forwarded != "" {
				r.Header.Set("x-forwarded-for", tt.forwarded)
			}

			assert.Equal(t, tt.expected, Identifier(r))
		})
	}
}
