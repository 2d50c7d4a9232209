// Package httpapi provides common encoding and middleware for an HTTP API.
package httpapi

import (
	"encoding/json"
	"net/http"

	wallet "github.com/idaralabs/Idara-Wallet"
)

// JSONAPIHandler is an HTTP handler for a JSON API.
type JSONAPIHandler func(w http.ResponseWriter, r *http.Request) (interface{}, error)

// ToHandlerFunc adapts a JSONAPIHandler into net/http's HandlerFunc.
func ToHandlerFunc(jsonHandler JSONAPIHandler, successCode int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response, err := jsonHandler(w, r)
		if err != nil {
			ErrorResponse(w, err)
			return
		}

		JSONResponse(w, response, successCode)
	}
}

// JSONResponse writes a response body. If a struct is provided
// and we are unable to marshal it, we return an internal error.
func JSONResponse(w http.ResponseWriter, v interface{}, statusCode int) {
	if v == nil {
		response(w, []byte(""), statusCode)
		return
	}

	b, ok := v.([]byte)
	if ok {
		response(w, b, statusCode)
		return
	}

	b, err := json.Marshal(v)
	if err != nil {
		internalErrorResponse(w)
		return
	}

	response(w, b, statusCode)
}

// ErrorResponse writes an error response. Domain errors are returned
// to the client with a mapped status code. Any other errors resolve
// to a 500 response. WebAuthn failures carry a hint telling the
// client to retry over OTP.
func ErrorResponse(w http.ResponseWriter, err error) {
	domainErr := wallet.DomainError(err)
	if domainErr == nil {
		internalErrorResponse(w)
		return
	}

	var statusCode int
	switch domainErr.Code() {
	case wallet.EInvalidToken, wallet.EExpiredToken:
		statusCode = http.StatusUnauthorized
	case wallet.ENotFound:
		statusCode = http.StatusNotFound
	case wallet.EThrottle:
		statusCode = http.StatusTooManyRequests
	case wallet.EExpired:
		statusCode = http.StatusGone
	case wallet.EConflict:
		statusCode = http.StatusConflict
	case wallet.EInternal:
		statusCode = http.StatusInternalServerError
	default:
		statusCode = http.StatusBadRequest
	}

	content := errorMessage(string(domainErr.Code()), domainErr.Message(), wallet.FallbackToOTP(err))
	response(w, content, statusCode)
}

type errorBody struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	FallbackToOTP bool   `json:"fallbackToOtp,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func errorMessage(code, message string, fallbackToOTP bool) []byte {
	b, err := json.Marshal(&errorEnvelope{
		Error: errorBody{
			Code:          code,
			Message:       message,
			FallbackToOTP: fallbackToOTP,
		},
	})
	if err != nil {
		return []byte(`{"error":{"code":"internal","message":"An internal error occurred"}}`)
	}
	return b
}

func response(w http.ResponseWriter, content []byte, statusCode int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write(content)
}

func internalErrorResponse(w http.ResponseWriter) {
	content := errorMessage("internal", "An internal error occurred", false)
	response(w, content, http.StatusInternalServerError)
}
