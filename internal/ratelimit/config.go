package ratelimit

import (
	"time"

	"github.com/go-kit/kit/log"

	wallet "github.com/idaralabs/Idara-Wallet"
)

const (
	defaultWindow  = time.Hour
	defaultCeiling = 5
	defaultPrefix  = "otp_limit"
)

// NewService returns a new implementation of wallet.LimiterService.
func NewService(options ...ConfigOption) wallet.LimiterService {
	s := service{
		logger:  log.NewNopLogger(),
		window:  defaultWindow,
		ceiling: defaultCeiling,
		prefix:  defaultPrefix,
	}

	for _, opt := range options {
		opt(&s)
	}

	return &s
}

// ConfigOption configures the service.
type ConfigOption func(*service)

// WithLogger configures the service with a logger.
func WithLogger(l log.Logger) ConfigOption {
	return func(s *service) {
		s.logger = l
	}
}

// WithDB configures the service with a redis DB.
func WithDB(db Rediser) ConfigOption {
	return func(s *service) {
		s.db = db
	}
}

// WithWindow configures the length of the issuance window.
func WithWindow(window time.Duration) ConfigOption {
	return func(s *service) {
		s.window = window
	}
}

// WithCeiling configures the max issuance attempts per window.
func WithCeiling(ceiling int64) ConfigOption {
	return func(s *service) {
		s.ceiling = ceiling
	}
}

// WithPrefix configures the redis key prefix.
func WithPrefix(prefix string) ConfigOption {
	return func(s *service) {
		s.prefix = prefix
	}
}
