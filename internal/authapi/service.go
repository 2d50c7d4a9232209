// Package authapi provides an HTTP API for passwordless authentication.
package authapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"

	wallet "github.com/idaralabs/Idara-Wallet"
	"github.com/idaralabs/Idara-Wallet/internal/httpapi"
)

type service struct {
	logger   log.Logger
	otp      wallet.OTPService
	webauthn wallet.WebAuthnService
	token    wallet.TokenService
	repoMngr wallet.RepositoryManager
	did      wallet.DIDService
}

// RequestCode issues an OTP challenge to an email address or phone
// number. Login and recovery challenges require an existing account,
// registration challenges require the address to be unclaimed.
func (s *service) RequestCode(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	ctx := r.Context()

	req, err := decodeRequestCodeRequest(r)
	if err != nil {
		return nil, err
	}

	recipient, method := req.Recipient()

	var accountID string
	account, err := s.repoMngr.Account().ByIdentity(ctx, req.AccountAttribute(), recipient)
	switch {
	case err == nil && req.Purpose() == wallet.PurposeRegistration:
		return nil, wallet.ErrConflict("an account with this address already exists")
	case err == nil:
		accountID = account.ID
	case errors.Cause(err) == sql.ErrNoRows && req.Purpose() != wallet.PurposeRegistration:
		return nil, errors.Wrap(wallet.ErrNotFound("no account found for this address"), err.Error())
	case errors.Cause(err) != sql.ErrNoRows:
		return nil, err
	}

	challenge, err := s.otp.Issue(ctx, recipient, method, req.Purpose(), accountID)
	if err != nil {
		return nil, err
	}

	return &otpResponse{
		OTPID:     challenge.ID,
		ExpiresAt: challenge.ExpiresAt.Unix(),
		Channel:   challenge.Delivery,
	}, nil
}

// VerifyCode checks a submitted code against a pending challenge and
// completes the login or registration it was issued for.
func (s *service) VerifyCode(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	ctx := r.Context()

	req, err := decodeVerifyCodeRequest(r)
	if err != nil {
		return nil, err
	}

	challenge, err := s.otp.Verify(ctx, req.OTPID, req.Code)
	if err != nil {
		return nil, err
	}

	var (
		account      *wallet.Account
		isNewAccount bool
	)

	if challenge.AccountID.String != "" {
		account, err = s.completeLogin(ctx, challenge.AccountID.String)
	} else {
		if !req.RegisterUser {
			return nil, wallet.ErrBadRequest("no account is linked to this challenge")
		}
		account, err = s.registerAccount(ctx, challenge, req.Name)
		isNewAccount = true
	}
	if err != nil {
		return nil, err
	}

	return s.respond(ctx, account, wallet.MethodOTP, &responseDetail{
		isNewAccount:    isNewAccount,
		webauthnCapable: isWebAuthnCapable(r.UserAgent()),
	})
}

// BeginWebAuthnRegistration starts a ceremony to enroll a new
// authenticator for the authenticated account.
func (s *service) BeginWebAuthnRegistration(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	ctx := r.Context()

	account, err := s.requestAccount(r)
	if err != nil {
		return nil, err
	}

	sessionID, options, err := s.webauthn.BeginRegistration(ctx, account)
	if err != nil {
		return nil, err
	}

	return &ceremonyResponse{SessionID: sessionID, Options: options}, nil
}

// FinishWebAuthnRegistration completes an enrollment ceremony and
// returns the registered credential.
func (s *service) FinishWebAuthnRegistration(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	ctx := r.Context()

	sessionID, err := ceremonySessionID(r)
	if err != nil {
		return nil, err
	}

	credential, err := s.webauthn.FinishRegistration(ctx, sessionID, r)
	if err != nil {
		return nil, err
	}

	return credential, nil
}

// BeginWebAuthnLogin starts an authentication ceremony for the account
// matching an email address or phone number.
func (s *service) BeginWebAuthnLogin(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	ctx := r.Context()

	req, err := decodeBeginLoginRequest(r)
	if err != nil {
		return nil, err
	}

	recipient, _ := req.Recipient()

	account, err := s.repoMngr.Account().ByIdentity(ctx, req.AccountAttribute(), recipient)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return nil, errors.Wrap(wallet.ErrNotFound("no account found for this address"), err.Error())
		}
		return nil, err
	}

	sessionID, options, err := s.webauthn.BeginLogin(ctx, account)
	if err != nil {
		return nil, err
	}

	return &ceremonyResponse{SessionID: sessionID, Options: options}, nil
}

// FinishWebAuthnLogin completes an authentication ceremony and issues
// a session token for the asserted account.
func (s *service) FinishWebAuthnLogin(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	ctx := r.Context()

	sessionID, err := ceremonySessionID(r)
	if err != nil {
		return nil, err
	}

	account, err := s.webauthn.FinishLogin(ctx, sessionID, r)
	if err != nil {
		return nil, err
	}

	account, err = s.completeLogin(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	return s.respond(ctx, account, wallet.MethodWebAuthn, &responseDetail{
		webauthnCapable: true,
	})
}

// registerAccount creates an account for a verified registration
// challenge. The contact channel that answered the challenge is
// marked verified. DID bootstrap is best effort and must not fail
// the registration.
func (s *service) registerAccount(ctx context.Context, challenge *wallet.Challenge, name string) (*wallet.Account, error) {
	account := &wallet.Account{
		Name:        name,
		LastLoginAt: sql.NullTime{Time: time.Now().UTC(), Valid: true},
	}

	switch challenge.Delivery {
	case wallet.Email:
		account.Email = sql.NullString{String: challenge.Recipient, Valid: true}
		account.IsEmailVerified = true
	case wallet.SMS:
		account.Phone = sql.NullString{String: challenge.Recipient, Valid: true}
		account.IsPhoneVerified = true
	}

	did, _, err := s.did.Generate(ctx)
	if err != nil {
		level.Info(s.logger).Log(
			"source", "AuthAPI.registerAccount",
			"message", "DID bootstrap failed",
			"error", err,
		)
	} else {
		account.DID = sql.NullString{String: did, Valid: true}
	}

	if err = s.repoMngr.Account().Create(ctx, account); err != nil {
		return nil, errors.Wrap(err, "failed to create account")
	}

	return account, nil
}

// completeLogin stamps an account's last login time.
func (s *service) completeLogin(ctx context.Context, accountID string) (*wallet.Account, error) {
	client, err := s.repoMngr.NewWithTransaction(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to start transaction")
	}

	entity, err := client.WithAtomic(func() (interface{}, error) {
		account, err := client.Account().GetForUpdate(ctx, accountID)
		if err != nil {
			return nil, err
		}

		account.LastLoginAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
		if err = client.Account().Update(ctx, account); err != nil {
			return nil, err
		}

		return account, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to record login")
	}

	return entity.(*wallet.Account), nil
}

// requestAccount resolves the authenticated account for a request.
func (s *service) requestAccount(r *http.Request) (*wallet.Account, error) {
	accountID, err := httpapi.GetAccountID(r)
	if err != nil {
		return nil, errors.Wrap(wallet.ErrInvalidToken("request is not authenticated"), err.Error())
	}

	account, err := s.repoMngr.Account().ByIdentity(r.Context(), "ID", accountID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve account")
	}

	return account, nil
}

type responseDetail struct {
	isNewAccount    bool
	webauthnCapable bool
}

// respond signs a session token for an authenticated account.
func (s *service) respond(ctx context.Context, account *wallet.Account, method wallet.AuthMethod, detail *responseDetail) (*authResponse, error) {
	jwtToken, err := s.token.Create(ctx, account, method)
	if err != nil {
		return nil, err
	}

	tokenStr, err := s.token.Sign(ctx, jwtToken)
	if err != nil {
		return nil, err
	}

	return &authResponse{
		Token:           tokenStr,
		Account:         newAccountSummary(account),
		IsNewAccount:    detail.isNewAccount,
		WebAuthnCapable: detail.webauthnCapable,
	}, nil
}
