package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/behnamfe76/user-auth-service/internal/domain"
)

// TokenTTL is the fixed validity window of an issued token.
const TokenTTL = 2 * time.Hour

// MinSecretLength is the minimum HS512 key size in bytes.
const MinSecretLength = 64

// Verification outcomes. Verify returns exactly one of these on failure.
var (
	ErrMalformed        = errors.New("token malformed")
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrExpired          = errors.New("token expired")
)

var signingMethod = jwt.SigningMethodHS512

// Claims describes the token payload.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// IssuedAtTime returns the iat claim or the zero time.
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// ExpiresAtTime returns the exp claim or the zero time.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// TokenCodec issues and verifies HS512 tokens with a single process secret.
// It holds no mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

// CodecOption customizes a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock overrides the time source used for issuance and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(tc *TokenCodec) {
		if now != nil {
			tc.now = now
		}
	}
}

// NewTokenCodec builds a codec around secret. The slice is copied.
func NewTokenCodec(secret []byte, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("token secret must be at least %d bytes, got %d", MinSecretLength, len(secret))
	}
	tc := &TokenCodec{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(tc)
	}
	tc.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(tc.now),
	)
	return tc, nil
}

// Issue signs a token for username with role. The returned claims are exactly
// what Verify will later yield for the token.
func (tc *TokenCodec) Issue(username string, role domain.Role) (string, Claims, error) {
	if !role.Valid() {
		return "", Claims{}, fmt.Errorf("issue token: unknown role %q", role)
	}

	issuedAt := tc.now().Truncate(time.Second)
	claims := Claims{
		Username: username,
		Role:     role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(TokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(signingMethod, claims).SignedString(tc.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("sign token: %w", err)
	}
	return token, claims, nil
}

// Verify checks structure, signature and expiry, in that order. The MAC
// comparison is constant time.
func (tc *TokenCodec) Verify(token string) (*Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return nil, ErrMalformed
	}
	for _, segment := range parts[:2] {
		if _, err := base64.RawURLEncoding.Strict().DecodeString(segment); err != nil {
			return nil, ErrMalformed
		}
	}
	// A signature segment that is not canonical base64url can never match.
	if _, err := base64.RawURLEncoding.Strict().DecodeString(parts[2]); err != nil {
		return nil, ErrInvalidSignature
	}

	claims := &Claims{}
	parsed, err := tc.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return tc.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if !parsed.Valid {
		return nil, ErrMalformed
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return ErrMalformed
	}
}
