// Package test provides mocks and helpers shared across tests.
package test

import (
	"context"
	"net/http"

	webauthnProto "github.com/duo-labs/webauthn/protocol"
	webauthnLib "github.com/duo-labs/webauthn/webauthn"
	"github.com/pkg/errors"

	wallet "github.com/idaralabs/Idara-Wallet"
)

// TokenService mocks wallet.TokenService.
type TokenService struct {
	CreateFn   func() (*wallet.Token, error)
	SignFn     func() (string, error)
	ValidateFn func() (*wallet.Token, error)
	RefreshFn  func() (*wallet.Token, error)
	Calls      struct {
		Create   int
		Sign     int
		Validate int
		Refresh  int
	}
}

// Create mock.
func (m *TokenService) Create(ctx context.Context, account *wallet.Account, method wallet.AuthMethod) (*wallet.Token, error) {
	m.Calls.Create++
	if m.CreateFn != nil {
		return m.CreateFn()
	}
	return &wallet.Token{AccountID: account.ID, Method: method}, nil
}

// Sign mock.
func (m *TokenService) Sign(ctx context.Context, token *wallet.Token) (string, error) {
	m.Calls.Sign++
	if m.SignFn != nil {
		return m.SignFn()
	}
	return "signed-token", nil
}

// Validate mock.
func (m *TokenService) Validate(ctx context.Context, signedToken string) (*wallet.Token, error) {
	m.Calls.Validate++
	if m.ValidateFn != nil {
		return m.ValidateFn()
	}
	return nil, errors.New("failed to validate token")
}

// Refresh mock.
func (m *TokenService) Refresh(ctx context.Context, token *wallet.Token) (*wallet.Token, error) {
	m.Calls.Refresh++
	if m.RefreshFn != nil {
		return m.RefreshFn()
	}
	return token, nil
}

// OTPService mocks wallet.OTPService.
type OTPService struct {
	IssueFn  func() (*wallet.Challenge, error)
	VerifyFn func() (*wallet.Challenge, error)
	Calls    struct {
		Issue  int
		Verify int
	}
}

// Issue mock.
func (m *OTPService) Issue(ctx context.Context, recipient string, method wallet.DeliveryMethod, purpose wallet.Purpose, accountID string) (*wallet.Challenge, error) {
	m.Calls.Issue++
	if m.IssueFn != nil {
		return m.IssueFn()
	}
	return nil, errors.New("failed to issue challenge")
}

// Verify mock.
func (m *OTPService) Verify(ctx context.Context, challengeID, code string) (*wallet.Challenge, error) {
	m.Calls.Verify++
	if m.VerifyFn != nil {
		return m.VerifyFn()
	}
	return nil, errors.New("failed to verify challenge")
}

// WebAuthnService mocks wallet.WebAuthnService.
type WebAuthnService struct {
	BeginRegistrationFn  func() (string, []byte, error)
	FinishRegistrationFn func() (*wallet.Credential, error)
	BeginLoginFn         func() (string, []byte, error)
	FinishLoginFn        func() (*wallet.Account, error)
	Calls                struct {
		BeginRegistration  int
		FinishRegistration int
		BeginLogin         int
		FinishLogin        int
	}
}

// BeginRegistration mock.
func (m *WebAuthnService) BeginRegistration(ctx context.Context, account *wallet.Account) (string, []byte, error) {
	m.Calls.BeginRegistration++
	if m.BeginRegistrationFn != nil {
		return m.BeginRegistrationFn()
	}
	return "", nil, errors.New("failed to begin registration")
}

// FinishRegistration mock.
func (m *WebAuthnService) FinishRegistration(ctx context.Context, sessionID string, r *http.Request) (*wallet.Credential, error) {
	m.Calls.FinishRegistration++
	if m.FinishRegistrationFn != nil {
		return m.FinishRegistrationFn()
	}
	return nil, errors.New("failed to finish registration")
}

// BeginLogin mock.
func (m *WebAuthnService) BeginLogin(ctx context.Context, account *wallet.Account) (string, []byte, error) {
	m.Calls.BeginLogin++
	if m.BeginLoginFn != nil {
		return m.BeginLoginFn()
	}
	return "", nil, errors.New("failed to begin login")
}

// FinishLogin mock.
func (m *WebAuthnService) FinishLogin(ctx context.Context, sessionID string, r *http.Request) (*wallet.Account, error) {
	m.Calls.FinishLogin++
	if m.FinishLoginFn != nil {
		return m.FinishLoginFn()
	}
	return nil, errors.New("failed to finish login")
}

// MessagingService mocks wallet.MessagingService. Dispatched
// messages are recorded so tests can observe generated codes.
type MessagingService struct {
	SendFn func() error
	Sent   []wallet.Message
	Calls  struct {
		Send int
	}
}

// Send mock.
func (m *MessagingService) Send(ctx context.Context, content, address string, method wallet.DeliveryMethod, purpose wallet.Purpose) error {
	m.Calls.Send++
	m.Sent = append(m.Sent, wallet.Message{
		Delivery: method,
		Address:  address,
		Content:  content,
		Purpose:  purpose,
	})
	if m.SendFn != nil {
		return m.SendFn()
	}
	return nil
}

// LastSent returns the most recently dispatched message.
func (m *MessagingService) LastSent() wallet.Message {
	if len(m.Sent) == 0 {
		return wallet.Message{}
	}
	return m.Sent[len(m.Sent)-1]
}

// LimiterService mocks wallet.LimiterService.
type LimiterService struct {
	CheckAndRecordFn func() error
	Calls            struct {
		CheckAndRecord int
	}
}

// CheckAndRecord mock.
func (m *LimiterService) CheckAndRecord(ctx context.Context, recipient string) error {
	m.Calls.CheckAndRecord++
	if m.CheckAndRecordFn != nil {
		return m.CheckAndRecordFn()
	}
	return nil
}

// DIDService mocks wallet.DIDService.
type DIDService struct {
	GenerateFn func() (string, []byte, error)
	Calls      struct {
		Generate int
	}
}

// Generate mock.
func (m *DIDService) Generate(ctx context.Context) (string, []byte, error) {
	m.Calls.Generate++
	if m.GenerateFn != nil {
		return m.GenerateFn()
	}
	return "did:key:z6MkTest", []byte(`{}`), nil
}

// RepositoryManager mocks wallet.RepositoryManager.
type RepositoryManager struct {
	NewWithTransactionFn func() (wallet.RepositoryManager, error)
	WithAtomicFn         func(operation func() (interface{}, error)) (interface{}, error)
	AccountFn            func() wallet.AccountRepository
	CredentialFn         func() wallet.CredentialRepository
	ChallengeFn          func() wallet.ChallengeRepository
	Calls                struct {
		NewWithTransaction int
		WithAtomic         int
		Account            int
		Credential         int
		Challenge          int
	}
}

// NewWithTransaction mock.
func (m *RepositoryManager) NewWithTransaction(ctx context.Context) (wallet.RepositoryManager, error) {
	m.Calls.NewWithTransaction++
	if m.NewWithTransactionFn != nil {
		return m.NewWithTransactionFn()
	}
	return m, nil
}

// WithAtomic mock. By default the operation is executed without
// transactional guarantees.
func (m *RepositoryManager) WithAtomic(operation func() (interface{}, error)) (interface{}, error) {
	m.Calls.WithAtomic++
	if m.WithAtomicFn != nil {
		return m.WithAtomicFn(operation)
	}
	return operation()
}

// Account mock.
func (m *RepositoryManager) Account() wallet.AccountRepository {
	m.Calls.Account++
	if m.AccountFn != nil {
		return m.AccountFn()
	}
	return nil
}

// Credential mock.
func (m *RepositoryManager) Credential() wallet.CredentialRepository {
	m.Calls.Credential++
	if m.CredentialFn != nil {
		return m.CredentialFn()
	}
	return nil
}

// Challenge mock.
func (m *RepositoryManager) Challenge() wallet.ChallengeRepository {
	m.Calls.Challenge++
	if m.ChallengeFn != nil {
		return m.ChallengeFn()
	}
	return nil
}

// AccountRepository mocks wallet.AccountRepository.
type AccountRepository struct {
	ByIdentityFn   func() (*wallet.Account, error)
	GetForUpdateFn func() (*wallet.Account, error)
	CreateFn       func() error
	UpdateFn       func() error
	Calls          struct {
		ByIdentity   int
		GetForUpdate int
		Create       int
		Update       int
	}
}

// ByIdentity mock.
func (m *AccountRepository) ByIdentity(ctx context.Context, attribute, value string) (*wallet.Account, error) {
	m.Calls.ByIdentity++
	if m.ByIdentityFn != nil {
		return m.ByIdentityFn()
	}
	return nil, errors.New("failed to retrieve account")
}

// GetForUpdate mock.
func (m *AccountRepository) GetForUpdate(ctx context.Context, accountID string) (*wallet.Account, error) {
	m.Calls.GetForUpdate++
	if m.GetForUpdateFn != nil {
		return m.GetForUpdateFn()
	}
	return nil, errors.New("failed to retrieve account")
}

// Create mock.
func (m *AccountRepository) Create(ctx context.Context, account *wallet.Account) error {
	m.Calls.Create++
	if m.CreateFn != nil {
		return m.CreateFn()
	}
	account.ID = "01FAKEACCOUNTID0000000000"
	return nil
}

// Update mock.
func (m *AccountRepository) Update(ctx context.Context, account *wallet.Account) error {
	m.Calls.Update++
	if m.UpdateFn != nil {
		return m.UpdateFn()
	}
	return nil
}

// CredentialRepository mocks wallet.CredentialRepository.
type CredentialRepository struct {
	ByIDFn           func() (*wallet.Credential, error)
	ByCredentialIDFn func() (*wallet.Credential, error)
	ByAccountIDFn    func() ([]*wallet.Credential, error)
	CreateFn         func() error
	GetForUpdateFn   func() (*wallet.Credential, error)
	UpdateFn         func() error
	Calls            struct {
		ByID           int
		ByCredentialID int
		ByAccountID    int
		Create         int
		GetForUpdate   int
		Update         int
	}
}

// ByID mock.
func (m *CredentialRepository) ByID(ctx context.Context, credentialID string) (*wallet.Credential, error) {
	m.Calls.ByID++
	if m.ByIDFn != nil {
		return m.ByIDFn()
	}
	return nil, errors.New("failed to retrieve credential")
}

// ByCredentialID mock.
func (m *CredentialRepository) ByCredentialID(ctx context.Context, credentialID []byte) (*wallet.Credential, error) {
	m.Calls.ByCredentialID++
	if m.ByCredentialIDFn != nil {
		return m.ByCredentialIDFn()
	}
	return nil, errors.New("failed to retrieve credential")
}

// ByAccountID mock.
func (m *CredentialRepository) ByAccountID(ctx context.Context, accountID string) ([]*wallet.Credential, error) {
	m.Calls.ByAccountID++
	if m.ByAccountIDFn != nil {
		return m.ByAccountIDFn()
	}
	return []*wallet.Credential{}, nil
}

// Create mock.
func (m *CredentialRepository) Create(ctx context.Context, credential *wallet.Credential) error {
	m.Calls.Create++
	if m.CreateFn != nil {
		return m.CreateFn()
	}
	credential.ID = "01FAKECREDENTIALID0000000"
	return nil
}

// GetForUpdate mock.
func (m *CredentialRepository) GetForUpdate(ctx context.Context, credentialID string) (*wallet.Credential, error) {
	m.Calls.GetForUpdate++
	if m.GetForUpdateFn != nil {
		return m.GetForUpdateFn()
	}
	return nil, errors.New("failed to retrieve credential")
}

// Update mock.
func (m *CredentialRepository) Update(ctx context.Context, credential *wallet.Credential) error {
	m.Calls.Update++
	if m.UpdateFn != nil {
		return m.UpdateFn()
	}
	return nil
}

// ChallengeRepository mocks wallet.ChallengeRepository.
type ChallengeRepository struct {
	ByIDFn              func() (*wallet.Challenge, error)
	GetForUpdateFn      func() (*wallet.Challenge, error)
	CreateFn            func() error
	UpdateFn            func() error
	InvalidatePendingFn func() (int64, error)
	Calls               struct {
		ByID              int
		GetForUpdate      int
		Create            int
		Update            int
		InvalidatePending int
	}
}

// ByID mock.
func (m *ChallengeRepository) ByID(ctx context.Context, challengeID string) (*wallet.Challenge, error) {
	m.Calls.ByID++
	if m.ByIDFn != nil {
		return m.ByIDFn()
	}
	return nil, errors.New("failed to retrieve challenge")
}

// GetForUpdate mock.
func (m *ChallengeRepository) GetForUpdate(ctx context.Context, challengeID string) (*wallet.Challenge, error) {
	m.Calls.GetForUpdate++
	if m.GetForUpdateFn != nil {
		return m.GetForUpdateFn()
	}
	return nil, errors.New("failed to retrieve challenge")
}

// Create mock.
func (m *ChallengeRepository) Create(ctx context.Context, challenge *wallet.Challenge) error {
	m.Calls.Create++
	if m.CreateFn != nil {
		return m.CreateFn()
	}
	challenge.ID = "01FAKECHALLENGEID00000000"
	return nil
}

// Update mock.
func (m *ChallengeRepository) Update(ctx context.Context, challenge *wallet.Challenge) error {
	m.Calls.Update++
	if m.UpdateFn != nil {
		return m.UpdateFn()
	}
	return nil
}

// InvalidatePending mock.
func (m *ChallengeRepository) InvalidatePending(ctx context.Context, recipient string) (int64, error) {
	m.Calls.InvalidatePending++
	if m.InvalidatePendingFn != nil {
		return m.InvalidatePendingFn()
	}
	return 0, nil
}

// WebAuthnLib mocks the duo-labs/webauthn third party library.
type WebAuthnLib struct {
	BeginRegistrationFn  func() (*webauthnProto.CredentialCreation, *webauthnLib.SessionData, error)
	FinishRegistrationFn func() (*webauthnLib.Credential, error)
	BeginLoginFn         func() (*webauthnProto.CredentialAssertion, *webauthnLib.SessionData, error)
	FinishLoginFn        func() (*webauthnLib.Credential, error)
	Calls                struct {
		BeginRegistration  int
		FinishRegistration int
		BeginLogin         int
		FinishLogin        int
	}
}

// BeginRegistration mock.
func (m *WebAuthnLib) BeginRegistration(user webauthnLib.User, opts ...webauthnLib.RegistrationOption) (*webauthnProto.CredentialCreation, *webauthnLib.SessionData, error) {
	m.Calls.BeginRegistration++
	if m.BeginRegistrationFn != nil {
		return m.BeginRegistrationFn()
	}
	return nil, nil, errors.New("failed to begin registration")
}

// FinishRegistration mock.
func (m *WebAuthnLib) FinishRegistration(user webauthnLib.User, session webauthnLib.SessionData, r *http.Request) (*webauthnLib.Credential, error) {
	m.Calls.FinishRegistration++
	if m.FinishRegistrationFn != nil {
		return m.FinishRegistrationFn()
	}
	return nil, errors.New("failed to finish registration")
}

// BeginLogin mock.
func (m *WebAuthnLib) BeginLogin(user webauthnLib.User, opts ...webauthnLib.LoginOption) (*webauthnProto.CredentialAssertion, *webauthnLib.SessionData, error) {
	m.Calls.BeginLogin++
	if m.BeginLoginFn != nil {
		return m.BeginLoginFn()
	}
	return nil, nil, errors.New("failed to begin login")
}

// FinishLogin mock.
func (m *WebAuthnLib) FinishLogin(user webauthnLib.User, session webauthnLib.SessionData, r *http.Request) (*webauthnLib.Credential, error) {
	m.Calls.FinishLogin++
	if m.FinishLoginFn != nil {
		return m.FinishLoginFn()
	}
	return nil, errors.New("failed to finish login")
}

// MessageRepository mocks wallet.MessageRepository.
type MessageRepository struct {
	PublishFn func() error
	RecentFn  func() (<-chan *wallet.Message, <-chan error)
	Published []*wallet.Message
	Calls     struct {
		Publish int
		Recent  int
	}
}

// Publish mock.
func (m *MessageRepository) Publish(ctx context.Context, msg *wallet.Message) error {
	m.Calls.Publish++
	m.Published = append(m.Published, msg)
	if m.PublishFn != nil {
		return m.PublishFn()
	}
	return nil
}

// Recent mock.
func (m *MessageRepository) Recent(ctx context.Context) (<-chan *wallet.Message, <-chan error) {
	m.Calls.Recent++
	if m.RecentFn != nil {
		return m.RecentFn()
	}
	msgc := make(chan *wallet.Message)
	errc := make(chan error, 1)
	close(msgc)
	return msgc, errc
}
