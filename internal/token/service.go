package token

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-kit/kit/log"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"

	wallet "github.com/idaralabs/Idara-Wallet"
)

// service is a stateless implementation of wallet.TokenService.
// Token validity is solely a function of signature and expiry; there
// is no server side revocation list.
type service struct {
	logger log.Logger
	// tokenExpiry is the full lifetime of an issued token.
	tokenExpiry time.Duration
	// refreshThreshold is the remaining validity under which a
	// token is re-issued on refresh.
	refreshThreshold time.Duration
	secret           []byte
	issuer           string
	entropy          *entropyPool
	now              func() time.Time
}

// Create creates a new, unsigned JWT token carrying an account's
// identity claims.
func (s *service) Create(ctx context.Context, account *wallet.Account, method wallet.AuthMethod) (*wallet.Token, error) {
	tokenULID, err := s.entropy.newULID()
	if err != nil {
		return nil, errors.Wrap(err, "cannot generate unique token ID")
	}

	issuedAt := s.now()

	token := wallet.Token{
		StandardClaims: jwt.StandardClaims{
			Id:        tokenULID,
			Issuer:    s.issuer,
			IssuedAt:  issuedAt.Unix(),
			ExpiresAt: issuedAt.Add(s.tokenExpiry).Unix(),
		},
		AccountID: account.ID,
		DID:       account.DID.String,
		Email:     account.Email.String,
		Phone:     account.Phone.String,
		Name:      account.Name,
		Method:    method,
	}

	return &token, nil
}

// Sign creates a signed JWT token string from a token struct.
func (s *service) Sign(ctx context.Context, token *wallet.Token) (string, error) {
	jwtUnsigned := jwt.NewWithClaims(jwt.SigningMethodHS512, token)
	jwtSigned, err := jwtUnsigned.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign JWT token")
	}

	return jwtSigned, nil
}

// Validate checks that a JWT token is signed by us and unexpired. On
// success it returns the unpacked Token struct. Expired tokens are
// reported distinctly from malformed or tampered ones.
func (s *service) Validate(ctx context.Context, signedToken string) (*wallet.Token, error) {
	tokenParser := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", token.Header["alg"])
		}

		return s.secret, nil
	}

	token := wallet.Token{}
	_, err := jwt.ParseWithClaims(signedToken, &token, tokenParser)
	if err != nil {
		if vErr, ok := err.(*jwt.ValidationError); ok && vErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, errors.Wrap(wallet.ErrExpiredToken("token is expired"), err.Error())
		}
		return nil, errors.Wrap(wallet.ErrInvalidToken("token is invalid"), err.Error())
	}

	// Expiry is re-checked against the service clock. The parser's
	// own check runs on the wall clock, which an injected clock must
	// be able to override.
	if token.ExpiresAt <= s.now().Unix() {
		return nil, wallet.ErrExpiredToken("token is expired")
	}

	if token.AccountID == "" {
		return nil, wallet.ErrInvalidToken("token is not associated with an account")
	}

	return &token, nil
}

// Refresh re-issues a token with the same identity claims when its
// remaining validity is under the refresh threshold. Tokens with
// sufficient validity are returned unchanged.
func (s *service) Refresh(ctx context.Context, token *wallet.Token) (*wallet.Token, error) {
	expiresAt := time.Unix(token.ExpiresAt, 0)
	if expiresAt.Sub(s.now()) > s.refreshThreshold {
		return token, nil
	}

	tokenULID, err := s.entropy.newULID()
	if err != nil {
		return nil, errors.Wrap(err, "cannot generate unique token ID")
	}

	issuedAt := s.now()

	refreshed := *token
	refreshed.StandardClaims = jwt.StandardClaims{
		Id:        tokenULID,
		Issuer:    s.issuer,
		IssuedAt:  issuedAt.Unix(),
		ExpiresAt: issuedAt.Add(s.tokenExpiry).Unix(),
	}

	return &refreshed, nil
}

// newULID mints a lexicographically sortable token ID. Monotonic
// entropy readers are not safe for concurrent use so the pool
// serializes access.
func (p *entropyPool) newULID() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tokenULID, err := ulid.New(ulid.Timestamp(time.Now()), p.reader)
	if err != nil {
		return "", err
	}

	return tokenULID.String(), nil
}
