package authapi

import (
	"net/http"

	"github.com/go-kit/kit/log"
	"github.com/gorilla/mux"

	wallet "github.com/idaralabs/Idara-Wallet"
	"github.com/idaralabs/Idara-Wallet/internal/httpapi"
)

// SetupHTTPHandler converts a service's public methods
// to http handlers.
func SetupHTTPHandler(svc wallet.AuthAPI, router *mux.Router, tokenSvc wallet.TokenService, logger log.Logger) {
	var handler httpapi.JSONAPIHandler
	{
		handler = svc.RequestCode
		handler = httpapi.RateLimitMiddleware(handler, httpapi.NewRateLimiter(httpapi.ThrottleEveryOneSec))
		handler = httpapi.ErrorLoggingMiddleware(handler, "AuthAPI.RequestCode", logger)
		httpHandler := httpapi.ToHandlerFunc(handler, http.StatusCreated)
		router.HandleFunc("/api/v1/auth/otp", httpHandler).Methods("Post")
	}
	{
		handler = svc.VerifyCode
		handler = httpapi.RateLimitMiddleware(handler, httpapi.NewRateLimiter(httpapi.ThrottleEveryOneSec))
		handler = httpapi.ErrorLoggingMiddleware(handler, "AuthAPI.VerifyCode", logger)
		httpHandler := httpapi.ToHandlerFunc(handler, http.StatusOK)
		router.HandleFunc("/api/v1/auth/otp/verify", httpHandler).Methods("Post")
	}
	{
		handler = httpapi.AuthMiddleware(svc.BeginWebAuthnRegistration, tokenSvc)
		handler = httpapi.RateLimitMiddleware(handler, httpapi.NewRateLimiter(httpapi.ThrottleEveryOneSec))
		handler = httpapi.ErrorLoggingMiddleware(handler, "AuthAPI.BeginWebAuthnRegistration", logger)
		httpHandler := httpapi.ToHandlerFunc(handler, http.StatusOK)
		router.HandleFunc("/api/v1/auth/webauthn/register", httpHandler).Methods("Post")
	}
	{
		handler = httpapi.AuthMiddleware(svc.FinishWebAuthnRegistration, tokenSvc)
		handler = httpapi.RateLimitMiddleware(handler, httpapi.NewRateLimiter(httpapi.ThrottleEveryOneSec))
		handler = httpapi.ErrorLoggingMiddleware(handler, "AuthAPI.FinishWebAuthnRegistration", logger)
		httpHandler := httpapi.ToHandlerFunc(handler, http.StatusCreated)
		router.HandleFunc("/api/v1/auth/webauthn/register/verify", httpHandler).Methods("Post")
	}
	{
		handler = svc.BeginWebAuthnLogin
		handler = httpapi.RateLimitMiddleware(handler, httpapi.NewRateLimiter(httpapi.ThrottleEveryOneSec))
		handler = httpapi.ErrorLoggingMiddleware(handler, "AuthAPI.BeginWebAuthnLogin", logger)
		httpHandler := httpapi.ToHandlerFunc(handler, http.StatusOK)
		router.HandleFunc("/api/v1/auth/webauthn/login", httpHandler).Methods("Post")
	}
	{
		handler = svc.FinishWebAuthnLogin
		handler = httpapi.RateLimitMiddleware(handler, httpapi.NewRateLimiter(httpapi.ThrottleEveryOneSec))
		handler = httpapi.ErrorLoggingMiddleware(handler, "AuthAPI.FinishWebAuthnLogin", logger)
		httpHandler := httpapi.ToHandlerFunc(handler, http.StatusOK)
		router.HandleFunc("/api/v1/auth/webauthn/login/verify", httpHandler).Methods("Post")
	}
}
