package tokenapi

import (
	"github.com/go-kit/kit/log"

	wallet "github.com/idaralabs/Idara-Wallet"
)

// NewService returns a new implementation of wallet.TokenAPI.
func NewService(options ...ConfigOption) wallet.TokenAPI {
	s := service{
		logger: log.NewNopLogger(),
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

// WithTokenService configures the service with a new TokenService.
func WithTokenService(tokenSvc wallet.TokenService) ConfigOption {
	return func(s *service) {
		s.token = tokenSvc
	}
}
