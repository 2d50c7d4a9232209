package authapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	wallet "github.com/idaralabs/Idara-Wallet"
)

// identityRequest identifies an account by exactly one of email
// address or phone number.
type identityRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Recipient returns the requested contact address and its channel.
func (r *identityRequest) Recipient() (string, wallet.DeliveryMethod) {
	if r.Email != "" {
		return r.Email, wallet.Email
	}
	return r.Phone, wallet.SMS
}

// AccountAttribute returns the account lookup attribute for the
// request's identity.
func (r *identityRequest) AccountAttribute() string {
	if r.Email != "" {
		return "Email"
	}
	return "Phone"
}

func (r *identityRequest) validate() error {
	if r.Email == "" && r.Phone == "" {
		return wallet.ErrBadRequest("email or phone is required")
	}
	if r.Email != "" && r.Phone != "" {
		return wallet.ErrBadRequest("only one of email or phone may be provided")
	}
	return nil
}

type requestCodeRequest struct {
	identityRequest
	RequestPurpose string `json:"purpose"`
}

// Purpose returns the challenge purpose for the request.
func (r *requestCodeRequest) Purpose() wallet.Purpose {
	return wallet.Purpose(r.RequestPurpose)
}

type verifyCodeRequest struct {
	OTPID        string `json:"otpId"`
	Code         string `json:"code"`
	RegisterUser bool   `json:"registerUser"`
	Name         string `json:"name"`
}

func decodeRequestCodeRequest(r *http.Request) (*requestCodeRequest, error) {
	req := requestCodeRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Wrap(wallet.ErrBadRequest("invalid JSON request"), err.Error())
	}

	if err := req.validate(); err != nil {
		return nil, err
	}

	switch req.Purpose() {
	case wallet.PurposeRegistration, wallet.PurposeLogin, wallet.PurposeRecovery:
	default:
		return nil, wallet.ErrBadRequest("purpose must be registration, login or recovery")
	}

	return &req, nil
}

func decodeVerifyCodeRequest(r *http.Request) (*verifyCodeRequest, error) {
	req := verifyCodeRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Wrap(wallet.ErrBadRequest("invalid JSON request"), err.Error())
	}

	if req.OTPID == "" {
		return nil, wallet.ErrBadRequest("otpId is required")
	}
	if req.Code == "" {
		return nil, wallet.ErrBadRequest("code is required")
	}

	return &req, nil
}

func decodeBeginLoginRequest(r *http.Request) (*identityRequest, error) {
	req := identityRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Wrap(wallet.ErrBadRequest("invalid JSON request"), err.Error())
	}

	if err := req.validate(); err != nil {
		return nil, err
	}

	return &req, nil
}

// ceremonySessionID extracts the ceremony session reference from a
// completion request. The request body is reserved for the WebAuthn
// library's attestation and assertion payloads.
func ceremonySessionID(r *http.Request) (string, error) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		return "", wallet.ErrBadRequest("sessionId is required")
	}
	return sessionID, nil
}

// isWebAuthnCapable guesses WebAuthn support from a user agent
// string. The guess is a UX hint only, never a security gate. Real
// capability detection happens client side.
func isWebAuthnCapable(userAgent string) bool {
	ua := strings.ToLower(userAgent)

	if strings.Contains(ua, "msie") || strings.Contains(ua, "trident") {
		return false
	}

	for _, marker := range []string{"chrome/", "chromium/", "firefox/", "safari/", "edg/"} {
		if strings.Contains(ua, marker) {
			return true
		}
	}

	return false
}
