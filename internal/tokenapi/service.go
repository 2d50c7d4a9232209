// Package tokenapi provides an HTTP API for managing JWT tokens.
package tokenapi

import (
	"net/http"

	"github.com/go-kit/kit/log"

	wallet "github.com/idaralabs/Idara-Wallet"
	"github.com/idaralabs/Idara-Wallet/internal/httpapi"
	tokenLib "github.com/idaralabs/Idara-Wallet/internal/token"
)

type service struct {
	logger log.Logger
	token  wallet.TokenService
}

// Verify reports the claims of a validated bearer token. Validation
// itself happens in middleware; reaching the handler means the token
// is good.
func (s *service) Verify(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	token, err := httpapi.GetToken(r)
	if err != nil {
		return nil, wallet.ErrInvalidToken("request is not authenticated")
	}

	return &verifyResponse{Valid: true, Claims: token}, nil
}

// Refresh re-issues a token nearing expiry. Tokens with sufficient
// remaining validity are returned unchanged.
func (s *service) Refresh(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	ctx := r.Context()

	token, err := httpapi.GetToken(r)
	if err != nil {
		return nil, wallet.ErrInvalidToken("request is not authenticated")
	}

	refreshed, err := s.token.Refresh(ctx, token)
	if err != nil {
		return nil, err
	}

	signedToken, err := s.token.Sign(ctx, refreshed)
	if err != nil {
		return nil, err
	}

	return &tokenLib.Response{Token: signedToken}, nil
}

type verifyResponse struct {
	Valid  bool          `json:"valid"`
	Claims *wallet.Token `json:"claims"`
}
