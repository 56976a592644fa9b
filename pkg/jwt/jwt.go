package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// SigningAlgorithm is the only algorithm accepted when parsing tokens.
const SigningAlgorithm = "HS256"

// Claims is the set of claims a token payload must satisfy.
// Custom claim types embed RegisteredClaims to pick up exp/iat/jti handling.
type Claims = gojwt.Claims

// RegisteredClaims mirrors the RFC 7519 registered fields.
type RegisteredClaims = gojwt.RegisteredClaims

// NewNumericDate converts a time to the claim representation, truncated to seconds.
func NewNumericDate(t time.Time) *gojwt.NumericDate {
	return gojwt.NewNumericDate(t)
}

// Service signs and verifies HMAC-SHA256 tokens.
type Service struct {
	signingKey []byte
	now        func() time.Time
	leeway     time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used to validate exp/nbf/iat.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLeeway allows a small clock skew when validating temporal claims.
func WithLeeway(d time.Duration) Option {
	return func(s *Service) {
		s.leeway = d
	}
}

// New creates a new JWT service with the provided signing key.
// The key should be at least 32 bytes for adequate security with HMAC-SHA256.
func New(signingKey []byte, opts ...Option) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}

	s := &Service{
		signingKey: signingKey,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// NewFromString creates a new JWT service from a string signing key.
func NewFromString(signingKey string, opts ...Option) (*Service, error) {
	return New([]byte(signingKey), opts...)
}

// Generate signs the given claims and returns the compact token string.
func (s *Service) Generate(claims Claims) (string, error) {
	if claims == nil {
		return "", ErrMissingClaims
	}

	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return token, nil
}

// Parse verifies the token signature and decodes its payload into claims.
//
// The signature is checked before temporal claims, so when ErrExpiredToken is
// returned the claims are fully decoded and come from an authentic token.
func (s *Service) Parse(tokenString string, claims Claims) error {
	if tokenString == "" {
		return ErrMissingToken
	}
	if claims == nil {
		return ErrMissingClaims
	}

	_, err := gojwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		gojwt.WithValidMethods([]string{SigningAlgorithm}),
		gojwt.WithTimeFunc(s.now),
		gojwt.WithLeeway(s.leeway),
		gojwt.WithExpirationRequired(),
		gojwt.WithIssuedAt(),
	)
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gojwt.ErrTokenExpired):
		return ErrExpiredToken
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	case errors.Is(err, gojwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", ErrUnexpectedSigningAlg, err)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
}

// ExpiresAt decodes the exp claim without verifying the signature.
// Callers must only trust the result for a token they already verified.
func ExpiresAt(tokenString string) (time.Time, error) {
	var claims RegisteredClaims
	if _, _, err := gojwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrMissingExpiration
	}
	return claims.ExpiresAt.Time, nil
}

func (s *Service) keyFunc(t *gojwt.Token) (any, error) {
	if _, ok := t.Method.(*gojwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedSigningAlg, t.Header["alg"])
	}
	return s.signingKey, nil
}
