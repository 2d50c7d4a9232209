// Package wallet describes the domain of a passwordless identity wallet.
// Accounts authenticate through one time passcodes or WebAuthn ceremonies
// and receive signed session tokens bound to a decentralized identifier.
package wallet

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// DeliveryMethod is a channel for an out-of-band secret.
type DeliveryMethod string

// Purpose describes why a challenge was requested.
type Purpose string

// ChallengeStatus is the lifecycle status of an OTP challenge.
type ChallengeStatus string

// AuthMethod is the method an account used to authenticate a session.
type AuthMethod string

const (
	// Email delivers secrets to an email address.
	Email DeliveryMethod = "email"
	// SMS delivers secrets to a phone number.
	SMS DeliveryMethod = "sms"
)

const (
	// PurposeRegistration requests a challenge for a new account.
	PurposeRegistration Purpose = "registration"
	// PurposeLogin requests a challenge for an existing account.
	PurposeLogin Purpose = "login"
	// PurposeRecovery requests a challenge to recover an account.
	PurposeRecovery Purpose = "recovery"
)

const (
	// ChallengePending is an unconsumed, unexpired challenge.
	ChallengePending ChallengeStatus = "pending"
	// ChallengeVerified is a challenge answered with the correct code.
	ChallengeVerified ChallengeStatus = "verified"
	// ChallengeExpired is a challenge checked after its expiry time.
	ChallengeExpired ChallengeStatus = "expired"
	// ChallengeInvalid is a challenge answered with an incorrect code
	// or superseded by a newer challenge for the same recipient.
	ChallengeInvalid ChallengeStatus = "invalid"
)

const (
	// MethodOTP marks a session authenticated by a one time passcode.
	MethodOTP AuthMethod = "otp"
	// MethodWebAuthn marks a session authenticated by a WebAuthn assertion.
	MethodWebAuthn AuthMethod = "webauthn"
)

// Account is a wallet holder. Either Email or Phone is set as
// the account's verified contact identity. A DID is associated
// after a best effort bootstrap on first registration.
type Account struct {
	ID                string         `json:"id"`
	DID               sql.NullString `json:"-"`
	Email             sql.NullString `json:"-"`
	Phone             sql.NullString `json:"-"`
	Name              string         `json:"name"`
	IsEmailVerified   bool           `json:"isEmailVerified"`
	IsPhoneVerified   bool           `json:"isPhoneVerified"`
	IsWebAuthnAllowed bool           `json:"isWebAuthnAllowed"`
	LastLoginAt       sql.NullTime   `json:"-"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// Contact returns the account's default contact address.
func (a *Account) Contact() (string, DeliveryMethod) {
	if a.Email.String != "" {
		return a.Email.String, Email
	}
	return a.Phone.String, SMS
}

// Challenge is an OTP challenge record. Records transition from
// pending to a terminal status and are retained afterwards for audit.
type Challenge struct {
	ID          string          `json:"id"`
	Recipient   string          `json:"recipient"`
	Delivery    DeliveryMethod  `json:"delivery"`
	Purpose     Purpose         `json:"purpose"`
	CodeHash    string          `json:"-"`
	AccountID   sql.NullString  `json:"-"`
	Status      ChallengeStatus `json:"status"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"maxAttempts"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	VerifiedAt  sql.NullTime    `json:"-"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Credential is a WebAuthn public key credential registered to an
// account. SignCount must grow strictly on every authentication.
type Credential struct {
	ID           string       `json:"id"`
	AccountID    string       `json:"accountId"`
	CredentialID []byte       `json:"-"`
	PublicKey    []byte       `json:"-"`
	AAGUID       []byte       `json:"-"`
	SignCount    uint32       `json:"-"`
	Transports   string       `json:"transports"`
	Name         string       `json:"name"`
	LastUsedAt   sql.NullTime `json:"-"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// CeremonySession is a short lived, single use WebAuthn ceremony
// session. Data carries the verifier library's opaque session state.
type CeremonySession struct {
	ID        string
	AccountID string
	Data      []byte
	ExpiresAt time.Time
}

// Token is a stateless JWT session token. Validity is solely a
// function of signature and expiry.
type Token struct {
	jwt.StandardClaims

	AccountID string     `json:"account_id"`
	DID       string     `json:"did,omitempty"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Name      string     `json:"name,omitempty"`
	Method    AuthMethod `json:"auth_method"`
}

// Message is an outgoing secret queued for out-of-band delivery.
type Message struct {
	Delivery         DeliveryMethod `json:"delivery"`
	Address          string         `json:"address"`
	Content          string         `json:"content"`
	Purpose          Purpose        `json:"purpose"`
	DeliveryAttempts int            `json:"delivery_attempts"`
	ExpiresAt        time.Time      `json:"expires_at"`
}

// AccountRepository manages wallet accounts.
type AccountRepository interface {
	// ByIdentity retrieves an account by ID, Email, Phone or DID.
	ByIdentity(ctx context.Context, attribute, value string) (*Account, error)
	GetForUpdate(ctx context.Context, accountID string) (*Account, error)
	Create(ctx context.Context, account *Account) error
	Update(ctx context.Context, account *Account) error
}

// CredentialRepository manages registered WebAuthn credentials.
type CredentialRepository interface {
	ByID(ctx context.Context, credentialID string) (*Credential, error)
	// ByCredentialID retrieves a credential by the binary identifier
	// minted by an authenticator. Identifiers are globally unique.
	ByCredentialID(ctx context.Context, credentialID []byte) (*Credential, error)
	ByAccountID(ctx context.Context, accountID string) ([]*Credential, error)
	Create(ctx context.Context, credential *Credential) error
	GetForUpdate(ctx context.Context, credentialID string) (*Credential, error)
	Update(ctx context.Context, credential *Credential) error
}

// ChallengeRepository manages OTP challenge records.
type ChallengeRepository interface {
	ByID(ctx context.Context, challengeID string) (*Challenge, error)
	GetForUpdate(ctx context.Context, challengeID string) (*Challenge, error)
	Create(ctx context.Context, challenge *Challenge) error
	Update(ctx context.Context, challenge *Challenge) error
	// InvalidatePending marks all pending challenges for a recipient
	// as invalid and reports how many records were affected.
	InvalidatePending(ctx context.Context, recipient string) (int64, error)
}

// RepositoryManager manages repositories stored in persistent storage.
type RepositoryManager interface {
	NewWithTransaction(ctx context.Context) (RepositoryManager, error)
	WithAtomic(operation func() (interface{}, error)) (interface{}, error)
	Account() AccountRepository
	Credential() CredentialRepository
	Challenge() ChallengeRepository
}

// SessionRepository stores WebAuthn ceremony sessions. Sessions are
// single use: Take removes a session as it is retrieved.
type SessionRepository interface {
	Create(ctx context.Context, session *CeremonySession) error
	Take(ctx context.Context, sessionID string) (*CeremonySession, error)
	// PurgeExpired removes sessions past expiry and reports the
	// total removed. Safe to invoke concurrently with Take.
	PurgeExpired(ctx context.Context) (int, error)
}

// OTPService manages the OTP challenge lifecycle.
type OTPService interface {
	// Issue rate checks a recipient, invalidates any pending
	// challenges, and creates a new pending challenge. The generated
	// code is dispatched out of band after the record is persisted.
	Issue(ctx context.Context, recipient string, method DeliveryMethod, purpose Purpose, accountID string) (*Challenge, error)
	// Verify checks a submitted code against a challenge. The
	// returned challenge's status is the sole success signal.
	Verify(ctx context.Context, challengeID, code string) (*Challenge, error)
}

// WebAuthnService coordinates registration and authentication
// ceremonies against an external verifier library.
type WebAuthnService interface {
	BeginRegistration(ctx context.Context, account *Account) (string, []byte, error)
	FinishRegistration(ctx context.Context, sessionID string, r *http.Request) (*Credential, error)
	BeginLogin(ctx context.Context, account *Account) (string, []byte, error)
	FinishLogin(ctx context.Context, sessionID string, r *http.Request) (*Account, error)
}

// TokenService manages signed session tokens.
type TokenService interface {
	Create(ctx context.Context, account *Account, method AuthMethod) (*Token, error)
	Sign(ctx context.Context, token *Token) (string, error)
	Validate(ctx context.Context, signedToken string) (*Token, error)
	// Refresh re-issues a token with the same identity claims if its
	// remaining validity is under the refresh threshold. Otherwise
	// the token is returned unchanged.
	Refresh(ctx context.Context, token *Token) (*Token, error)
}

// LimiterService guards OTP issuance per recipient.
type LimiterService interface {
	// CheckAndRecord records an issuance attempt and returns
	// ErrThrottle when the recipient's window is exhausted.
	CheckAndRecord(ctx context.Context, recipient string) error
}

// MessagingService sends secrets to an out-of-band address.
type MessagingService interface {
	Send(ctx context.Context, content, address string, method DeliveryMethod, purpose Purpose) error
}

// SMSer sends an SMS message to a phone number.
type SMSer interface {
	SMS(ctx context.Context, phoneNumber string, message string) error
}

// Emailer sends an email message to an email address.
type Emailer interface {
	Email(ctx context.Context, email string, message string) error
}

// MessageRepository is a queue of outgoing messages shared by
// publishers and consumers.
type MessageRepository interface {
	Publish(ctx context.Context, msg *Message) error
	Recent(ctx context.Context) (<-chan *Message, <-chan error)
}

// DIDService bootstraps a decentralized identifier for an account.
type DIDService interface {
	Generate(ctx context.Context) (string, []byte, error)
}

// AuthAPI provides HTTP handlers for the authentication flows.
type AuthAPI interface {
	RequestCode(w http.ResponseWriter, r *http.Request) (interface{}, error)
	VerifyCode(w http.ResponseWriter, r *http.Request) (interface{}, error)
	BeginWebAuthnRegistration(w http.ResponseWriter, r *http.Request) (interface{}, error)
	FinishWebAuthnRegistration(w http.ResponseWriter, r *http.Request) (interface{}, error)
	BeginWebAuthnLogin(w http.ResponseWriter, r *http.Request) (interface{}, error)
	FinishWebAuthnLogin(w http.ResponseWriter, r *http.Request) (interface{}, error)
}

// TokenAPI provides HTTP handlers for token validation and refresh.
type TokenAPI interface {
	Verify(w http.ResponseWriter, r *http.Request) (interface{}, error)
	Refresh(w http.ResponseWriter, r *http.Request) (interface{}, error)
}
