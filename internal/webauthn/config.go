package webauthn

import (
	webauthnLib "github.com/duo-labs/webauthn/webauthn"
	"github.com/go-kit/kit/log"

	wallet "github.com/idaralabs/Idara-Wallet"
)

// NewService returns a new WebAuthn ceremony coordinator.
func NewService(options ...ConfigOption) (wallet.WebAuthnService, error) {
	s := WebAuthn{
		logger: log.NewNopLogger(),
	}

	for _, opt := range options {
		opt(&s)
	}

	if s.lib == nil {
		lib, err := webauthnLib.New(&webauthnLib.Config{
			RPDisplayName: s.displayName,
			RPID:          s.domain,
			RPOrigin:      s.requestOrigin,
		})
		if err != nil {
			return nil, err
		}

		s.lib = lib
	}

	return &s, nil
}

// ConfigOption configures the service.
type ConfigOption func(*WebAuthn)

// WithLogger configures the service with a logger.
func WithLogger(l log.Logger) ConfigOption {
	return func(s *WebAuthn) {
		s.logger = l
	}
}

// WithDisplayName configures the service with a relying party
// display name.
func WithDisplayName(name string) ConfigOption {
	return func(s *WebAuthn) {
		s.displayName = name
	}
}

// WithDomain configures the service with a relying party ID.
func WithDomain(domain string) ConfigOption {
	return func(s *WebAuthn) {
		s.domain = domain
	}
}

// WithRequestOrigin configures the service with a request origin.
func WithRequestOrigin(origin string) ConfigOption {
	return func(s *WebAuthn) {
		s.requestOrigin = origin
	}
}

// WithSessionRepository configures the service with a ceremony
// session store.
func WithSessionRepository(sessions wallet.SessionRepository) ConfigOption {
	return func(s *WebAuthn) {
		s.sessions = sessions
	}
}

// WithRepoManager configures the service with a RepositoryManager.
func WithRepoManager(repoMngr wallet.RepositoryManager) ConfigOption {
	return func(s *WebAuthn) {
		s.repoMngr = repoMngr
	}
}

// WithLib configures the service with a WebAuthn library
// implementation.
func WithLib(lib Webauthner) ConfigOption {
	return func(s *WebAuthn) {
		s.lib = lib
	}
}
