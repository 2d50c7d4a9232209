package authapi

import (
	"encoding/json"

	wallet "github.com/idaralabs/Idara-Wallet"
)

type otpResponse struct {
	OTPID     string                `json:"otpId"`
	ExpiresAt int64                 `json:"expiresAt"`
	Channel   wallet.DeliveryMethod `json:"channel"`
}

type ceremonyResponse struct {
	SessionID string          `json:"sessionId"`
	Options   json.RawMessage `json:"options"`
}

type accountSummary struct {
	ID                string `json:"id"`
	Name              string `json:"name,omitempty"`
	Email             string `json:"email,omitempty"`
	Phone             string `json:"phone,omitempty"`
	DID               string `json:"did,omitempty"`
	IsWebAuthnAllowed bool   `json:"isWebauthnAllowed"`
}

type authResponse struct {
	Token           string          `json:"token"`
	Account         *accountSummary `json:"account"`
	IsNewAccount    bool            `json:"isNewAccount"`
	WebAuthnCapable bool            `json:"webauthnCapable"`
}

func newAccountSummary(account *wallet.Account) *accountSummary {
	return &accountSummary{
		ID:                account.ID,
		Name:              account.Name,
		Email:             account.Email.String,
		Phone:             account.Phone.String,
		DID:               account.DID.String,
		IsWebAuthnAllowed: account.IsWebAuthnAllowed,
	}
}
