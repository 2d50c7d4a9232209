package msgrepo

import (
	"github.com/go-kit/kit/log"

	wallet "github.com/idaralabs/Idara-Wallet"
)

// NewService returns a new MessageRepository.
func NewService(options ...ConfigOption) wallet.MessageRepository {
	s := service{
		logger:       log.NewNopLogger(),
		messageQueue: make(chan *wallet.Message),
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
