package tokenapi

import (
	"net/http"

	"github.com/go-kit/kit/log"
	"github.com/gorilla/mux"

	wallet "github.com/idaralabs/Idara-Wallet"
	"github.com/idaralabs/Idara-Wallet/internal/httpapi"
)

// SetupHTTPHandler converts a service's public methods
// to http handlers.
func SetupHTTPHandler(svc wallet.TokenAPI, router *mux.Router, tokenSvc wallet.TokenService, logger log.Logger) {
	var handler httpapi.JSONAPIHandler
	{
		handler = httpapi.AuthMiddleware(svc.Verify, tokenSvc)
		handler = httpapi.RateLimitMiddleware(handler, httpapi.NewRateLimiter(httpapi.ThrottleEveryOneSec))
		handler = httpapi.ErrorLoggingMiddleware(handler, "TokenAPI.Verify", logger)
		httpHandler := httpapi.ToHandlerFunc(handler, http.StatusOK)
		router.HandleFunc("/api/v1/token/validate", httpHandler).Methods("Get")
	}
	{
		handler = httpapi.AuthMiddleware(svc.Refresh, tokenSvc)
		handler = httpapi.RateLimitMiddleware(handler, httpapi.NewRateLimiter(httpapi.ThrottleEveryOneSec))
		handler = httpapi.ErrorLoggingMiddleware(handler, "TokenAPI.Refresh", logger)
		httpHandler := httpapi.ToHandlerFunc(handler, http.StatusOK)
		router.HandleFunc("/api/v1/token/refresh", httpHandler).Methods("Post")
	}
}
