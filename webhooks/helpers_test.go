package webhooks

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func mintToken(t *testing.T, key string, claims jwt.MapClaims) string {
	t.Helper()
	if claims == nil {
		claims = jwt.MapClaims{}
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func expiredClaims() jwt.MapClaims {
	return jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()}
}

type recordingListener struct {
	mu       sync.Mutex
	name     string
	calls    []Payload
	err      error
	sequence *[]string
}

func (l *recordingListener) Fire(_ context.Context, payload Payload) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, payload)
	if l.sequence != nil {
		*l.sequence = append(*l.sequence, l.name)
	}
	return l.err
}

func (l *recordingListener) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

type staticVerifier struct {
	err error
}

func (v staticVerifier) Verify(context.Context, string) error {
	return v.err
}
