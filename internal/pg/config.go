package pg

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/oklog/ulid/v2"
)

// NewClient returns a new PostgreSQL client.
func NewClient(options ...ConfigOption) *Client {
	c := Client{
		logger:    log.NewNopLogger(),
		entropy:   ulid.Monotonic(rand.Reader, 0),
		entropyMu: &sync.Mutex{},
	}

	for _, opt := range options {
		opt(&c)
	}

	c.accountRepository = &AccountRepository{client: &c}
	c.credentialRepository = &CredentialRepository{client: &c}
	c.challengeRepository = &ChallengeRepository{client: &c}

	return &c
}

// ConfigOption configures the Client.
type ConfigOption func(*Client)

// WithLogger configures the client with a Logger.
func WithLogger(l log.Logger) ConfigOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithEntropy configures the client with an entropy source for ID generation.
func WithEntropy(entropy io.Reader) ConfigOption {
	return func(c *Client) {
		c.entropy = entropy
	}
}

// newULID mints a ULID from the client's entropy source. Monotonic
// readers are not safe for concurrent use so access is serialized.
func (c *Client) newULID() (string, error) {
	c.entropyMu.Lock()
	defer c.entropyMu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now()), c.entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}
