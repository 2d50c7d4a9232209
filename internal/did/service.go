// Package did bootstraps decentralized identifiers for new accounts.
//
// Identifiers use the did:key method over ed25519. The method encodes
// the public key directly in the identifier so no registry or network
// round trip is involved.
package did

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"

	wallet "github.com/idaralabs/Idara-Wallet"
)

// ed25519 multicodec prefix, varint encoded.
var multicodecEd25519 = []byte{0xed, 0x01}

type service struct {
	logger log.Logger
	// rand is the randomness source for key generation.
	rand func() (ed25519.PublicKey, ed25519.PrivateKey, error)
}

// NewService returns a new DIDService.
func NewService(options ...ConfigOption) wallet.DIDService {
	s := service{
		logger: log.NewNopLogger(),
		rand: func() (ed25519.PublicKey, ed25519.PrivateKey, error) {
			return ed25519.GenerateKey(rand.Reader)
		},
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

// WithKeyGen configures the service with a key generator for tests.
func WithKeyGen(gen func() (ed25519.PublicKey, ed25519.PrivateKey, error)) ConfigOption {
	return func(s *service) {
		s.rand = gen
	}
}

// Generate mints a did:key identifier and a minimal DID document for
// a new account.
func (s *service) Generate(ctx context.Context) (string, []byte, error) {
	publicKey, _, err := s.rand()
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to generate ed25519 key")
	}

	keyBytes := make([]byte, 0, len(multicodecEd25519)+len(publicKey))
	keyBytes = append(keyBytes, multicodecEd25519...)
	keyBytes = append(keyBytes, publicKey...)

	// Multibase base58btc carries a leading z.
	encodedKey := "z" + encodeBase58(keyBytes)
	did := "did:key:" + encodedKey

	document, err := json.Marshal(&Document{
		Context: []string{"https://www.w3.org/ns/did/v1"},
		ID:      did,
		VerificationMethod: []VerificationMethod{
			{
				ID:                 did + "#" + encodedKey,
				Type:               "Ed25519VerificationKey2020",
				Controller:         did,
				PublicKeyMultibase: encodedKey,
			},
		},
		Authentication: []string{did + "#" + encodedKey},
	})
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to marshal DID document")
	}

	return did, document, nil
}

// Document is a minimal DID document.
type Document struct {
	Context            []string             `json:"@context"`
	ID                 string               `json:"id"`
	VerificationMethod []VerificationMethod `json:"verificationMethod"`
	Authentication     []string             `json:"authentication"`
}

// VerificationMethod is a public key entry in a DID document.
type VerificationMethod struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	Controller         string `json:"controller"`
	PublicKeyMultibase string `json:"publicKeyMultibase"`
}
