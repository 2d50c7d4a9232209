package authapi

import (
	"github.com/go-kit/kit/log"

	wallet "github.com/idaralabs/Idara-Wallet"
)

// NewService returns a new implementation of wallet.AuthAPI.
func NewService(options ...ConfigOption) wallet.AuthAPI {
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

// WithOTP configures the service with an OTP challenge service.
func WithOTP(o wallet.OTPService) ConfigOption {
	return func(s *service) {
		s.otp = o
	}
}

// WithWebAuthn configures the service with a WebAuthn ceremony
// coordinator.
func WithWebAuthn(w wallet.WebAuthnService) ConfigOption {
	return func(s *service) {
		s.webauthn = w
	}
}

// WithTokenService configures the service with a new TokenService.
func WithTokenService(tokenSvc wallet.TokenService) ConfigOption {
	return func(s *service) {
		s.token = tokenSvc
	}
}

// WithRepoManager configures the service with a new RepositoryManager.
func WithRepoManager(repoMngr wallet.RepositoryManager) ConfigOption {
	return func(s *service) {
		s.repoMngr = repoMngr
	}
}

// WithDID configures the service with a DID bootstrap collaborator.
func WithDID(d wallet.DIDService) ConfigOption {
	return func(s *service) {
		s.did = d
	}
}
