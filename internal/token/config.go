package token

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/oklog/ulid/v2"

	wallet "github.com/idaralabs/Idara-Wallet"
)

const (
	defaultTokenExpiry      = time.Hour * 24
	defaultRefreshThreshold = time.Hour
	defaultIssuer           = "idara-wallet"
)

// entropyPool guards a monotonic ULID entropy source.
type entropyPool struct {
	mu     sync.Mutex
	reader io.Reader
}

// NewService returns a new TokenService.
func NewService(options ...ConfigOption) wallet.TokenService {
	s := service{
		logger:           log.NewNopLogger(),
		tokenExpiry:      defaultTokenExpiry,
		refreshThreshold: defaultRefreshThreshold,
		issuer:           defaultIssuer,
		entropy:          &entropyPool{reader: ulid.Monotonic(rand.Reader, 0)},
		now:              time.Now,
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

// WithTokenExpiry defines how long tokens are valid for.
// The default value is 24 hours.
func WithTokenExpiry(expiresIn time.Duration) ConfigOption {
	return func(s *service) {
		s.tokenExpiry = expiresIn
	}
}

// WithRefreshThreshold defines the remaining validity under which a
// refresh re-issues a token. The default value is 1 hour.
func WithRefreshThreshold(threshold time.Duration) ConfigOption {
	return func(s *service) {
		s.refreshThreshold = threshold
	}
}

// WithSecret configures the service with a secret value
// for signing functions.
func WithSecret(secret string) ConfigOption {
	return func(s *service) {
		s.secret = []byte(secret)
	}
}

// WithIssuer is the issuer identity for the JWT token.
func WithIssuer(issuer string) ConfigOption {
	return func(s *service) {
		s.issuer = issuer
	}
}

// WithEntropy configures the service with a ULID entropy source.
func WithEntropy(entropy io.Reader) ConfigOption {
	return func(s *service) {
		s.entropy = &entropyPool{reader: entropy}
	}
}

// WithClock configures the service with a clock function for tests.
func WithClock(now func() time.Time) ConfigOption {
	return func(s *service) {
		s.now = now
	}
}
