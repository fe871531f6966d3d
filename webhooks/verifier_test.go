package webhooks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTVerifier_AcceptsSignatureForConfiguredKey(t *testing.T) {
	verifier := NewJWTVerifier([]string{"abc"})
	if err := verifier.Verify(context.Background(), mintToken(t, "abc", nil)); err != nil {
		t.Fatalf("expected signature accepted: %v", err)
	}
}

func TestJWTVerifier_RejectsWrongKey(t *testing.T) {
	verifier := NewJWTVerifier([]string{"abc"})
	err := verifier.Verify(context.Background(), mintToken(t, "other", nil))
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
	var sigErr *SignatureInvalidError
	if !errors.As(err, &sigErr) {
		t.Fatalf("expected *SignatureInvalidError, got %T", err)
	}
	if sigErr.KeysTried != 1 {
		t.Fatalf("expected one key tried, got %d", sigErr.KeysTried)
	}
}

func TestJWTVerifier_ORSemanticsAcrossKeys(t *testing.T) {
	verifier := NewJWTVerifier([]string{"k1", "k2"})
	index, err := verifier.VerifyWithKey(context.Background(), mintToken(t, "k2", nil))
	if err != nil {
		t.Fatalf("expected k2 to verify: %v", err)
	}
	if index != 1 {
		t.Fatalf("expected key index 1, got %d", index)
	}

	index, err = verifier.VerifyWithKey(context.Background(), mintToken(t, "k1", nil))
	if err != nil || index != 0 {
		t.Fatalf("expected k1 to short-circuit at index 0, got %d (%v)", index, err)
	}
}

func TestJWTVerifier_NoKeysRejectsEverything(t *testing.T) {
	verifier := NewJWTVerifier(nil)
	err := verifier.Verify(context.Background(), mintToken(t, "abc", nil))
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected rejection with no keys, got %v", err)
	}
}

func TestJWTVerifier_MalformedTokenFailsEachKey(t *testing.T) {
	verifier := NewJWTVerifier([]string{"k1", "k2"})
	for _, signature := range []string{"", "not-a-jwt", "a.b.c"} {
		err := verifier.Verify(context.Background(), signature)
		if !errors.Is(err, ErrSignatureInvalid) {
			t.Fatalf("expected rejection for %q, got %v", signature, err)
		}
		var sigErr *SignatureInvalidError
		if !errors.As(err, &sigErr) || sigErr.KeysTried != 2 {
			t.Fatalf("expected both keys tried for %q", signature)
		}
	}
}

func TestJWTVerifier_ExpiredTokenRejected(t *testing.T) {
	verifier := NewJWTVerifier([]string{"abc"})
	err := verifier.Verify(context.Background(), mintToken(t, "abc", expiredClaims()))
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected cause to carry jwt.ErrTokenExpired, got %v", err)
	}
}

func TestJWTVerifier_LeewayAndClock(t *testing.T) {
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	signature := mintToken(t, "abc", jwt.MapClaims{"exp": issued.Add(time.Minute).Unix()})

	late := func() time.Time { return issued.Add(90 * time.Second) }
	if err := NewJWTVerifier([]string{"abc"}, WithClock(late)).Verify(context.Background(), signature); err == nil {
		t.Fatalf("expected token expired without leeway")
	}
	verifier := NewJWTVerifier([]string{"abc"}, WithClock(late), WithLeeway(time.Minute))
	if err := verifier.Verify(context.Background(), signature); err != nil {
		t.Fatalf("expected leeway to accept token: %v", err)
	}
}

func TestJWTVerifier_KeysCopiedAtConstruction(t *testing.T) {
	keys := []string{"abc"}
	verifier := NewJWTVerifier(keys)
	keys[0] = "changed"
	if err := verifier.Verify(context.Background(), mintToken(t, "abc", nil)); err != nil {
		t.Fatalf("expected original key retained: %v", err)
	}
}

func TestJWTVerifier_RejectsUnexpectedAlgorithm(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}
	if err := NewJWTVerifier([]string{"abc"}).Verify(context.Background(), signed); err == nil {
		t.Fatalf("expected alg=none token rejected")
	}
}
