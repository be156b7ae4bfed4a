// Package identity verifies caller access tokens and carries the resulting
// caller through request contexts.
package identity

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/tableside/tableside/internal/platform/errors"
	"github.com/tableside/tableside/internal/services/booking/domain/user"
	"github.com/tableside/tableside/internal/services/booking/policy"
)

// verifierEnv holds raw env values before post-parse validation.
type verifierEnv struct {
	Issuer    string `env:"TABLESIDE_AUTH_ISSUER"`
	Audience  string `env:"TABLESIDE_AUTH_AUDIENCE"`
	PublicKey string `env:"TABLESIDE_AUTH_PUBLIC_KEY"`
}

// VerifierConfig defines how access tokens are verified.
type VerifierConfig struct {
	Issuer   string
	Audience string
	Key      ed25519.PublicKey
	Now      func() time.Time
}

// accessClaims is the internal claims type used for JWT parsing.
type accessClaims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

// LoadVerifierConfigFromEnv reads access token verification configuration.
func LoadVerifierConfigFromEnv(now func() time.Time) (VerifierConfig, error) {
	var raw verifierEnv
	if err := env.Parse(&raw); err != nil {
		return VerifierConfig{}, fmt.Errorf("parse auth env: %w", err)
	}
	issuer := strings.TrimSpace(raw.Issuer)
	audience := strings.TrimSpace(raw.Audience)
	publicKey := strings.TrimSpace(raw.PublicKey)
	if issuer == "" {
		return VerifierConfig{}, fmt.Errorf("TABLESIDE_AUTH_ISSUER is required")
	}
	if audience == "" {
		return VerifierConfig{}, fmt.Errorf("TABLESIDE_AUTH_AUDIENCE is required")
	}
	if publicKey == "" {
		return VerifierConfig{}, fmt.Errorf("TABLESIDE_AUTH_PUBLIC_KEY is required")
	}
	keyBytes, err := decodeBase64(publicKey)
	if err != nil {
		return VerifierConfig{}, fmt.Errorf("decode auth public key: %w", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return VerifierConfig{}, fmt.Errorf("auth public key must be %d bytes", ed25519.PublicKeySize)
	}
	if now == nil {
		now = time.Now
	}
	return VerifierConfig{
		Issuer:   issuer,
		Audience: audience,
		Key:      ed25519.PublicKey(keyBytes),
		Now:      now,
	}, nil
}

// VerifyAccessToken verifies an access token and returns the caller it
// identifies.
func VerifyAccessToken(token string, cfg VerifierConfig) (policy.Caller, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return policy.Caller{}, apperrors.New(apperrors.CodeTokenInvalid, "access token is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.Key) != ed25519.PublicKeySize {
		return policy.Caller{}, errors.New("access token verifier is not configured")
	}

	var parsed accessClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(token *jwt.Token) (any, error) {
		return cfg.Key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return policy.Caller{}, mapJWTError(err)
	}

	if parsed.Issuer == "" || parsed.Issuer != cfg.Issuer {
		return policy.Caller{}, apperrors.WithMetadata(
			apperrors.CodeTokenInvalid,
			"access token issuer mismatch",
			map[string]string{"Field": "issuer"},
		)
	}
	if !audienceContains(parsed.Audience, cfg.Audience) {
		return policy.Caller{}, apperrors.WithMetadata(
			apperrors.CodeTokenInvalid,
			"access token audience mismatch",
			map[string]string{"Field": "audience"},
		)
	}
	if parsed.ExpiresAt == nil {
		return policy.Caller{}, apperrors.New(apperrors.CodeTokenInvalid, "access token exp is required")
	}

	now := cfg.Now().UTC()
	if !parsed.ExpiresAt.Time.UTC().After(now) {
		return policy.Caller{}, apperrors.New(apperrors.CodeTokenExpired, "access token is expired")
	}
	if parsed.NotBefore != nil && now.Before(parsed.NotBefore.Time.UTC()) {
		return policy.Caller{}, apperrors.New(apperrors.CodeTokenInvalid, "access token not active yet")
	}

	if parsed.UserID <= 0 {
		return policy.Caller{}, apperrors.New(apperrors.CodeTokenInvalid, "access token user_id is required")
	}
	role, ok := user.ParseRole(parsed.Role)
	if !ok {
		return policy.Caller{}, apperrors.WithMetadata(
			apperrors.CodeTokenInvalid,
			"access token role is invalid",
			map[string]string{"Role": parsed.Role},
		)
	}

	return policy.Caller{ID: parsed.UserID, Role: role}, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrEd25519Verification) {
		return apperrors.New(apperrors.CodeTokenInvalid, "access token signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeTokenInvalid, "access token alg is invalid")
	}
	return apperrors.New(apperrors.CodeTokenInvalid, "access token is invalid")
}

// audienceContains reports whether the audience list contains the given value.
func audienceContains(aud jwt.ClaimStrings, value string) bool {
	for _, item := range aud {
		if item == value {
			return true
		}
	}
	return false
}

func decodeBase64(value string) ([]byte, error) {
	if value == "" {
		return nil, errors.New("empty base64 value")
	}
	decoded, err := base64.RawStdEncoding.DecodeString(value)
	if err == nil {
		return decoded, nil
	}
	return base64.StdEncoding.DecodeString(value)
}

type callerKey struct{}

// WithCaller stores the verified caller on the context.
func WithCaller(ctx context.Context, caller policy.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFromContext returns the verified caller, or the guest caller when
// the request carried no identity.
func CallerFromContext(ctx context.Context) policy.Caller {
	if ctx == nil {
		return policy.Guest()
	}
	if caller, ok := ctx.Value(callerKey{}).(policy.Caller); ok {
		return caller
	}
	return policy.Guest()
}
