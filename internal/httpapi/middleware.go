package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"

	wallet "github.com/idaralabs/Idara-Wallet"
)

type contextKey string

const authorizationHeader = "Authorization"

const (
	accountIDContextKey contextKey = "accountID"
	tokenContextKey     contextKey = "token"
)

// AuthMiddleware validates a bearer token in the Authorization header
// and stores the unpacked claims in the request context.
func AuthMiddleware(jsonHandler JSONAPIHandler, tokenSvc wallet.TokenService) JSONAPIHandler {
	return func(w http.ResponseWriter, r *http.Request) (interface{}, error) {
		ctx := r.Context()

		header := r.Header.Get(authorizationHeader)
		if header == "" {
			return nil, wallet.ErrInvalidToken("request is not authenticated")
		}
		if !strings.HasPrefix(header, "Bearer ") {
			return nil, wallet.ErrInvalidToken("bearer token expected")
		}

		token, err := tokenSvc.Validate(ctx, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return nil, err
		}

		ctx = context.WithValue(ctx, accountIDContextKey, token.AccountID)
		ctx = context.WithValue(ctx, tokenContextKey, token)

		return jsonHandler(w, r.WithContext(ctx))
	}
}

// ErrorLoggingMiddleware logs any errors that are returned before
// being parsed to an HTTP response.
func ErrorLoggingMiddleware(jsonHandler JSONAPIHandler, source string, l log.Logger) JSONAPIHandler {
	return func(w http.ResponseWriter, r *http.Request) (interface{}, error) {
		accountID, _ := GetAccountID(r)
		response, err := jsonHandler(w, r)
		if err != nil {
			l.Log(
				"account_id", accountID,
				"source", source,
				"error", err.Error(),
				"stack_trace", fmt.Sprintf("%+v", err),
			)
		}
		return response, err
	}
}

// GetAccountID retrieves an account ID from context.
func GetAccountID(r *http.Request) (string, error) {
	accountID, ok := r.Context().Value(accountIDContextKey).(string)
	if !ok {
		return "", errors.New("no account ID available")
	}
	return accountID, nil
}

// GetToken retrieves validated token claims from context.
func GetToken(r *http.Request) (*wallet.Token, error) {
	token, ok := r.Context().Value(tokenContextKey).(*wallet.Token)
	if !ok {
		return nil, errors.New("no token available")
	}
	return token, nil
}
