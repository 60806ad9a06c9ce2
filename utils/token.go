package utils

import (
	"errors"
	"fmt"
	"time"

	"vidserve/models"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

var (
	ErrInvalidToken     = errors.New("invalid token format")
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token not yet valid")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrWrongFile        = errors.New("token issued for a different file")
)

// VerifyConfig holds playback token verification configuration.
type VerifyConfig struct {
	SecretKey []byte        // HMAC key (HS256)
	ClockSkew time.Duration // Optional: allow clock skew (default 0)
}

// VerifyPlaybackToken verifies a playback token and checks it was
// issued for the given file id.
func VerifyPlaybackToken(tokenString, fileID string, config VerifyConfig) (*models.PlaybackClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}
	if len(config.SecretKey) == 0 {
		return nil, errors.New("no verification key provided")
	}

	tok, err := jwt.ParseSigned(tokenString, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims := &models.PlaybackClaims{}
	if err := tok.Claims(config.SecretKey, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	now := time.Now().Unix()
	clockSkew := int64(config.ClockSkew.Seconds())

	if claims.ExpiresAt > 0 && claims.ExpiresAt < (now-clockSkew) {
		return nil, ErrTokenExpired
	}
	if claims.IssuedAt > 0 && claims.IssuedAt > (now+clockSkew) {
		return nil, ErrTokenNotYetValid
	}
	if claims.Subject != fileID {
		return nil, ErrWrongFile
	}

	return claims, nil
}

// CreatePlaybackToken signs a playback token for a file id, valid for
// the given duration.
func CreatePlaybackToken(fileID string, ttl time.Duration, secretKey []byte) (string, error) {
	if len(secretKey) == 0 {
		return "", errors.New("signing key cannot be empty")
	}

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: secretKey}, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create signer: %w", err)
	}

	now := time.Now()
	claims := models.PlaybackClaims{
		Issuer:    "vidserve",
		Subject:   fileID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}

	token, err := jwt.Signed(signer).Claims(claims).Serialize()
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}
