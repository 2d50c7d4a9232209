package msgpublisher

import (
	"time"

	"github.com/go-kit/kit/log"

	wallet "github.com/idaralabs/Idara-Wallet"
)

// defaultExpiry is the default expiry time for a message to be published.
const defaultExpiry = time.Minute * 10

// NewService returns a new implementation of wallet.MessagingService.
func NewService(r wallet.MessageRepository, options ...ConfigOption) wallet.MessagingService {
	s := service{
		messageRepo: r,
		expireAfter: defaultExpiry,
		logger:      log.NewNopLogger(),
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

// WithExpiry sets an expiry time for a message to complete sending.
func WithExpiry(t time.Duration) ConfigOption {
	return func(s *service) {
		s.expireAfter = t
	}
}
