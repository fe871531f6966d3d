package webhooks

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type SignatureVerifier interface {
	Verify(ctx context.Context, signature string) error
}

// KeyedVerifier also reports which configured key accepted the signature.
type KeyedVerifier interface {
	SignatureVerifier
	VerifyWithKey(ctx context.Context, signature string) (int, error)
}

var defaultSigningMethods = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodHS384.Alg(),
	jwt.SigningMethodHS512.Alg(),
}

// JWTVerifier checks a delivery signature as an HMAC-signed JWT against an
// ordered list of secret keys. The first key that accepts the token wins.
type JWTVerifier struct {
	keys    [][]byte
	methods []string
	leeway  time.Duration
	now     func() time.Time
}

type VerifierOption func(*JWTVerifier)

// WithLeeway tolerates clock skew when checking exp, nbf and iat claims.
func WithLeeway(leeway time.Duration) VerifierOption {
	return func(v *JWTVerifier) {
		if leeway > 0 {
			v.leeway = leeway
		}
	}
}

func WithClock(now func() time.Time) VerifierOption {
	return func(v *JWTVerifier) {
		if now != nil {
			v.now = now
		}
	}
}

func WithSigningMethods(methods ...string) VerifierOption {
	return func(v *JWTVerifier) {
		filtered := make([]string, 0, len(methods))
		for _, method := range methods {
			if method = strings.TrimSpace(method); method != "" {
				filtered = append(filtered, method)
			}
		}
		if len(filtered) > 0 {
			v.methods = filtered
		}
	}
}

// NewJWTVerifier copies keys so later changes to the slice have no effect.
// With no keys every signature is rejected.
func NewJWTVerifier(keys []string, opts ...VerifierOption) *JWTVerifier {
	verifier := &JWTVerifier{
		keys:    make([][]byte, 0, len(keys)),
		methods: append([]string(nil), defaultSigningMethods...),
		now:     time.Now,
	}
	for _, key := range keys {
		verifier.keys = append(verifier.keys, []byte(key))
	}
	for _, opt := range opts {
		if opt != nil {
			opt(verifier)
		}
	}
	return verifier
}

func (v *JWTVerifier) KeyCount() int {
	if v == nil {
		return 0
	}
	return len(v.keys)
}

func (v *JWTVerifier) Verify(ctx context.Context, signature string) error {
	_, err := v.VerifyWithKey(ctx, signature)
	return err
}

// VerifyWithKey returns the index of the accepting key, or -1 with a
// *SignatureInvalidError. A malformed or expired token only fails the key
// being tried.
func (v *JWTVerifier) VerifyWithKey(_ context.Context, signature string) (int, error) {
	if v == nil || len(v.keys) == 0 {
		return -1, &SignatureInvalidError{}
	}

	var lastErr error
	for index, key := range v.keys {
		if err := v.verifyKey(signature, key); err != nil {
			lastErr = err
			continue
		}
		return index, nil
	}
	return -1, &SignatureInvalidError{KeysTried: len(v.keys), Cause: lastErr}
}

func (v *JWTVerifier) verifyKey(signature string, key []byte) error {
	token, err := jwt.Parse(signature,
		func(*jwt.Token) (any, error) {
			return key, nil
		},
		jwt.WithValidMethods(v.methods),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return err
	}
	if !token.Valid {
		return jwt.ErrTokenSignatureInvalid
	}
	return nil
}

var _ KeyedVerifier = (*JWTVerifier)(nil)
