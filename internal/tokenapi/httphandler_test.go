package tokenapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/gorilla/mux"

	wallet "github.com/idaralabs/Idara-Wallet"
	"github.com/idaralabs/Idara-Wallet/internal/token"
)

func newTestRouter(tokenSvc wallet.TokenService) *mux.Router {
	router := mux.NewRouter()
	svc := NewService(
		WithLogger(log.NewNopLogger()),
		WithTokenService(tokenSvc),
	)
	SetupHTTPHandler(svc, router, tokenSvc, log.NewNopLogger())
	return router
}

func signedTestToken(t *testing.T, tokenSvc wallet.TokenService) string {
	t.Helper()

	jwtToken, err := tokenSvc.Create(context.Background(), &wallet.Account{ID: "account-id"}, wallet.MethodOTP)
	if err != nil {
		t.Fatal("failed to create token:", err)
	}
	signed, err := tokenSvc.Sign(context.Background(), jwtToken)
	if err != nil {
		t.Fatal("failed to sign token:", err)
	}
	return signed
}

func TestTokenAPI_Verify(t *testing.T) {
	tokenSvc := token.NewService(token.WithSecret("my-signing-secret"))
	router := newTestRouter(tokenSvc)

	r := httptest.NewRequest("GET", "/api/v1/token/validate", nil)
	r.Header.Set("Authorization", "Bearer "+signedTestToken(t, tokenSvc))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, r)

	if rr.Code != http.StatusOK {
		t.Fatalf("incorrect status code, want %d got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}

	response := verifyResponse{}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatal("failed to unmarshal response:", err)
	}
	if !response.Valid {
		t.Error("validated token should report valid")
	}
	if response.Claims.AccountID != "account-id" {
		t.Errorf("incorrect account claim: %s", response.Claims.AccountID)
	}
}

func TestTokenAPI_VerifyRejectsMissingToken(t *testing.T) {
	tokenSvc := token.NewService(token.WithSecret("my-signing-secret"))
	router := newTestRouter(tokenSvc)

	r := httptest.NewRequest("GET", "/api/v1/token/validate", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, r)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("incorrect status code, want %d got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestTokenAPI_RefreshNearExpiry(t *testing.T) {
	// Tokens are minted with 30 minutes validity against a 1 hour
	// refresh threshold, so every refresh re-issues.
	tokenSvc := token.NewService(
		token.WithSecret("my-signing-secret"),
		token.WithTokenExpiry(time.Minute*30),
		token.WithRefreshThreshold(time.Hour),
	)
	router := newTestRouter(tokenSvc)

	signed := signedTestToken(t, tokenSvc)

	r := httptest.NewRequest("POST", "/api/v1/token/refresh", nil)
	r.Header.Set("Authorization", "Bearer "+signed)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, r)

	if rr.Code != http.StatusOK {
		t.Fatalf("incorrect status code, want %d got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}

	response := token.Response{}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatal("failed to unmarshal response:", err)
	}
	if response.Token == "" {
		t.Fatal("no refreshed token returned")
	}

	refreshed, err := tokenSvc.Validate(context.Background(), response.Token)
	if err != nil {
		t.Fatal("refreshed token failed validation:", err)
	}
	if refreshed.AccountID != "account-id" {
		t.Errorf("incorrect account claim: %s", refreshed.AccountID)
	}
}
