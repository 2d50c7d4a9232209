// Package ratelimit guards OTP issuance with a per-recipient window.
package ratelimit

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-redis/redis/v8"

	wallet "github.com/idaralabs/Idara-Wallet"
)

// Rediser is an interface to go-redis.
type Rediser interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Close() error
}

// service is an implementation of wallet.LimiterService backed by
// redis. A recipient's window is anchored at their first issuance
// attempt and is not reset until it elapses in full.
type service struct {
	logger  log.Logger
	db      Rediser
	window  time.Duration
	ceiling int64
	prefix  string
}

// CheckAndRecord records an issuance attempt for a recipient and
// rejects it once the window's ceiling is exceeded. Rejected attempts
// are recorded as well, so continued hammering stays visible in the
// counter without extending the window.
func (s *service) CheckAndRecord(ctx context.Context, recipient string) error {
	key := s.key(recipient)

	count, err := s.db.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to increment issuance counter: %w", err)
	}

	// The first attempt creates the counter and anchors the window.
	if count == 1 {
		if err = s.db.Expire(ctx, key, s.window).Err(); err != nil {
			return fmt.Errorf("failed to set window expiry: %w", err)
		}
	}

	if count > s.ceiling {
		return wallet.ErrThrottle("too many codes requested, try again later")
	}

	return nil
}

func (s *service) key(recipient string) string {
	k := fmt.Sprintf("%s:%s", s.prefix, recipient)
	return base64.RawURLEncoding.EncodeToString([]byte(k))
}
