package otp

import (
	"sync"
	"time"

	"github.com/go-kit/kit/log"

	wallet "github.com/idaralabs/Idara-Wallet"
	"github.com/idaralabs/Idara-Wallet/internal/crypto"
)

const (
	defaultLength      = 6
	defaultTTL         = time.Minute * 10
	defaultMaxAttempts = 3
)

// NewService returns a new implementation of wallet.OTPService.
func NewService(options ...ConfigOption) wallet.OTPService {
	s := service{
		logger:      log.NewNopLogger(),
		codeLength:  defaultLength,
		charSet:     crypto.CharSetDigits,
		ttl:         defaultTTL,
		maxAttempts: defaultMaxAttempts,
		now:         time.Now,
		recipients:  make(map[string]*sync.Mutex),
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

// WithCodeLength configures the service with a length for random
// code generation.
func WithCodeLength(length int) ConfigOption {
	return func(s *service) {
		s.codeLength = length
	}
}

// WithCharSet configures the service with a character set for random
// code generation.
func WithCharSet(charSet string) ConfigOption {
	return func(s *service) {
		s.charSet = charSet
	}
}

// WithTTL configures the service with a challenge lifetime.
func WithTTL(ttl time.Duration) ConfigOption {
	return func(s *service) {
		s.ttl = ttl
	}
}

// WithMaxAttempts configures the max verification attempts per
// challenge.
func WithMaxAttempts(max int) ConfigOption {
	return func(s *service) {
		s.maxAttempts = max
	}
}

// WithLimiter configures the service with an issuance rate limiter.
func WithLimiter(l wallet.LimiterService) ConfigOption {
	return func(s *service) {
		s.limiter = l
	}
}

// WithRepoManager configures the service with a RepositoryManager.
func WithRepoManager(repoMngr wallet.RepositoryManager) ConfigOption {
	return func(s *service) {
		s.repoMngr = repoMngr
	}
}

// WithMessaging configures the service with a MessagingService.
func WithMessaging(m wallet.MessagingService) ConfigOption {
	return func(s *service) {
		s.messaging = m
	}
}

// WithClock configures the service with a clock function for tests.
func WithClock(now func() time.Time) ConfigOption {
	return func(s *service) {
		s.now = now
	}
}
