package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	wallet "github.com/idaralabs/Idara-Wallet"
	"github.com/idaralabs/Idara-Wallet/internal/test"
)

func TestHTTPApi_AuthMiddleware(t *testing.T) {
	tt := []struct {
		name       string
		header     string
		validateFn func() (*wallet.Token, error)
		hasError   bool
	}{
		{
			name:     "Missing header",
			header:   "",
			hasError: true,
		},
		{
			name:     "Missing bearer prefix",
			header:   "some-token",
			hasError: true,
		},
		{
			name:   "Invalid token",
			header: "Bearer some-token",
			validateFn: func() (*wallet.Token, error) {
				return nil, wallet.ErrInvalidToken("token is invalid")
			},
			hasError: true,
		},
		{
			name:   "Valid token",
			header: "Bearer some-token",
			validateFn: func() (*wallet.Token, error) {
				return &wallet.Token{AccountID: "account-id"}, nil
			},
			hasError: false,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			tokenSvc := &test.TokenService{ValidateFn: tc.validateFn}

			var gotAccountID string
			handler := AuthMiddleware(func(w http.ResponseWriter, r *http.Request) (interface{}, error) {
				gotAccountID, _ = GetAccountID(r)
				if _, err := GetToken(r); err != nil {
					t.Error("token claims missing from context:", err)
				}
				return nil, nil
			}, tokenSvc)

			r := httptest.NewRequest("GET", "/", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}

			_, err := handler(httptest.NewRecorder(), r)
			if tc.hasError && err == nil {
				t.Error("middleware should return error, not nil")
			}
			if !tc.hasError && err != nil {
				t.Error("middleware failed:", err)
			}
			if !tc.hasError && gotAccountID != "account-id" {
				t.Errorf("incorrect account ID in context: %s", gotAccountID)
			}
		})
	}
}

func TestHTTPApi_RateLimitMiddleware(t *testing.T) {
	lmt := NewRateLimiter(1)

	handler := RateLimitMiddleware(func(w http.ResponseWriter, r *http.Request) (interface{}, error) {
		return nil, nil
	}, lmt)

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:5000"

	if _, err := handler(httptest.NewRecorder(), r); err != nil {
		t.Fatal("first request should be accepted:", err)
	}

	_, err := handler(httptest.NewRecorder(), r)
	if err == nil {
		t.Fatal("burst above accepted rate should be throttled")
	}
	if code := wallet.ErrorCode(err); code != wallet.EThrottle {
		t.Errorf("incorrect error code, want %s got %s", wallet.EThrottle, code)
	}
}
