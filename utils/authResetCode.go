package utils

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const ResetCodeExpiry = 15 * time.Minute

// CodeCache is the part of the redis cache reset codes need.
type CodeCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// GenerateResetCode generates a random 6-digit reset code.
func GenerateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate reset code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// ResetCodes keeps password reset codes in the cache, keyed by email.
type ResetCodes struct {
	cache CodeCache
}

func NewResetCodes(cache CodeCache) *ResetCodes {
	return &ResetCodes{cache: cache}
}

// Set stores code for email for ResetCodeExpiry.
func (r *ResetCodes) Set(ctx context.Context, email, code string) error {
	return r.cache.Set(ctx, resetCodeKey(email), code, ResetCodeExpiry)
}

// Get returns nil when no code is pending for email.
func (r *ResetCodes) Get(ctx context.Context, email string) (*string, error) {
	code, err := r.cache.Get(ctx, resetCodeKey(email))
	if err != nil {
		return nil, err
	}
	if code == "" {
		return nil, nil
	}
	return &code, nil
}

func (r *ResetCodes) Delete(ctx context.Context, email string) error {
	return r.cache.Delete(ctx, resetCodeKey(email))
}

func resetCodeKey(email string) string {
	return "reset_code:" + email
}
