package token

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/oklog/ulid/v2"

	wallet "github.com/idaralabs/Idara-Wallet"
)

func newTestTokenSvc(options ...ConfigOption) wallet.TokenService {
	opts := []ConfigOption{
		WithLogger(log.NewNopLogger()),
		WithSecret("my-signing-secret"),
		WithIssuer("idara-wallet"),
	}
	opts = append(opts, options...)
	return NewService(opts...)
}

func testAccount() *wallet.Account {
	return &wallet.Account{
		ID:    "account-id",
		DID:   sql.NullString{String: "did:key:z6MkTest", Valid: true},
		Email: sql.NullString{String: "jane@example.com", Valid: true},
		Name:  "Jane",
	}
}

func TestTokenSvc_CreateToken(t *testing.T) {
	tokenSvc := newTestTokenSvc(WithTokenExpiry(time.Second * 10))
	ctx := context.Background()

	token, err := tokenSvc.Create(ctx, testAccount(), wallet.MethodOTP)
	if err != nil {
		t.Fatal("failed to create token:", err)
	}

	now := time.Now().Unix()
	expiry := time.Now().Add(time.Second * 10).Unix()
	if token.ExpiresAt < now {
		t.Error("token expiry cannot be earlier than current time")
	}
	if token.ExpiresAt > expiry {
		t.Error("token should expire by 10 seconds")
	}

	if _, err = ulid.Parse(token.Id); err != nil {
		t.Error("invalid ID generated for token")
	}

	if token.AccountID != "account-id" {
		t.Errorf("incorrect account claim: %s", token.AccountID)
	}
	if token.DID != "did:key:z6MkTest" {
		t.Errorf("incorrect DID claim: %s", token.DID)
	}
	if token.Method != wallet.MethodOTP {
		t.Errorf("incorrect method claim: %s", token.Method)
	}
}

func TestTokenSvc_SignAndValidate(t *testing.T) {
	tokenSvc := newTestTokenSvc()
	ctx := context.Background()

	token, err := tokenSvc.Create(ctx, testAccount(), wallet.MethodWebAuthn)
	if err != nil {
		t.Fatal("failed to create token:", err)
	}

	signed, err := tokenSvc.Sign(ctx, token)
	if err != nil {
		t.Fatal("failed to sign token:", err)
	}

	validated, err := tokenSvc.Validate(ctx, signed)
	if err != nil {
		t.Fatal("failed to validate token:", err)
	}
	if validated.AccountID != token.AccountID {
		t.Errorf("incorrect account claim: %s", validated.AccountID)
	}
	if validated.Id != token.Id {
		t.Errorf("incorrect token ID: %s", validated.Id)
	}
	if validated.Method != wallet.MethodWebAuthn {
		t.Errorf("incorrect method claim: %s", validated.Method)
	}
}

func TestTokenSvc_ValidateRejectsTampering(t *testing.T) {
	tokenSvc := newTestTokenSvc()
	ctx := context.Background()

	token, err := tokenSvc.Create(ctx, testAccount(), wallet.MethodOTP)
	if err != nil {
		t.Fatal("failed to create token:", err)
	}

	signed, err := tokenSvc.Sign(ctx, token)
	if err != nil {
		t.Fatal("failed to sign token:", err)
	}

	otherSvc := newTestTokenSvc(WithSecret("a-different-secret"))

	_, err = otherSvc.Validate(ctx, signed)
	if err == nil {
		t.Fatal("expected foreign signature to be rejected")
	}
	if code := wallet.ErrorCode(err); code != wallet.EInvalidToken {
		t.Errorf("incorrect error code, want %s got %s", wallet.EInvalidToken, code)
	}
}

func TestTokenSvc_ValidateRejectsGarbage(t *testing.T) {
	tokenSvc := newTestTokenSvc()

	_, err := tokenSvc.Validate(context.Background(), "not-a-jwt")
	if err == nil {
		t.Fatal("expected malformed token to be rejected")
	}
	if code := wallet.ErrorCode(err); code != wallet.EInvalidToken {
		t.Errorf("incorrect error code, want %s got %s", wallet.EInvalidToken, code)
	}
}

func TestTokenSvc_ValidateReportsExpiryDistinctly(t *testing.T) {
	clock := time.Now()
	tokenSvc := newTestTokenSvc(
		WithTokenExpiry(time.Minute),
		WithClock(func() time.Time { return clock }),
	)
	ctx := context.Background()

	token, err := tokenSvc.Create(ctx, testAccount(), wallet.MethodOTP)
	if err != nil {
		t.Fatal("failed to create token:", err)
	}

	signed, err := tokenSvc.Sign(ctx, token)
	if err != nil {
		t.Fatal("failed to sign token:", err)
	}

	clock = clock.Add(time.Minute * 2)

	_, err = tokenSvc.Validate(ctx, signed)
	if err == nil {
		t.Fatal("expected expired token to be rejected")
	}
	if code := wallet.ErrorCode(err); code != wallet.EExpiredToken {
		t.Errorf("incorrect error code, want %s got %s", wallet.EExpiredToken, code)
	}
}

func TestTokenSvc_RefreshUnderThreshold(t *testing.T) {
	clock := time.Now()
	tokenSvc := newTestTokenSvc(
		WithTokenExpiry(time.Hour*24),
		WithRefreshThreshold(time.Hour),
		WithClock(func() time.Time { return clock }),
	)
	ctx := context.Background()

	token, err := tokenSvc.Create(ctx, testAccount(), wallet.MethodOTP)
	if err != nil {
		t.Fatal("failed to create token:", err)
	}

	// 23.5 hours remaining, no re-issue.
	refreshed, err := tokenSvc.Refresh(ctx, token)
	if err != nil {
		t.Fatal("failed to refresh token:", err)
	}
	if refreshed.Id != token.Id {
		t.Error("token with sufficient validity should be returned unchanged")
	}

	clock = clock.Add(time.Hour*23 + time.Minute*30)

	// 30 minutes remaining, re-issue.
	refreshed, err = tokenSvc.Refresh(ctx, token)
	if err != nil {
		t.Fatal("failed to refresh token:", err)
	}
	if refreshed.Id == token.Id {
		t.Error("token under refresh threshold should be re-issued")
	}
	if refreshed.ExpiresAt != clock.Add(time.Hour*24).Unix() {
		t.Errorf("incorrect refreshed expiry: %d", refreshed.ExpiresAt)
	}
	if refreshed.AccountID != token.AccountID {
		t.Error("identity claims must carry over on refresh")
	}
	if refreshed.Method != token.Method {
		t.Error("method claim must carry over on refresh")
	}
}
