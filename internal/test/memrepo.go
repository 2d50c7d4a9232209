package test

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	wallet "github.com/idaralabs/Idara-Wallet"
)

// MemRepository is an in-memory wallet.RepositoryManager for tests.
// It offers no transactional isolation; WithAtomic runs operations
// under a single lock to keep state machine tests deterministic.
type MemRepository struct {
	mu          sync.Mutex
	seq         int
	accounts    map[string]*wallet.Account
	credentials map[string]*wallet.Credential
	challenges  map[string]*wallet.Challenge
}

// NewMemRepository returns a new in-memory repository manager.
func NewMemRepository() *MemRepository {
	return &MemRepository{
		accounts:    make(map[string]*wallet.Account),
		credentials: make(map[string]*wallet.Credential),
		challenges:  make(map[string]*wallet.Challenge),
	}
}

// NewWithTransaction implements wallet.RepositoryManager.
func (m *MemRepository) NewWithTransaction(ctx context.Context) (wallet.RepositoryManager, error) {
	return m, nil
}

// WithAtomic implements wallet.RepositoryManager.
func (m *MemRepository) WithAtomic(operation func() (interface{}, error)) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return operation()
}

// Account implements wallet.RepositoryManager.
func (m *MemRepository) Account() wallet.AccountRepository { return &memAccountRepo{m} }

// Credential implements wallet.RepositoryManager.
func (m *MemRepository) Credential() wallet.CredentialRepository { return &memCredentialRepo{m} }

// Challenge implements wallet.RepositoryManager.
func (m *MemRepository) Challenge() wallet.ChallengeRepository { return &memChallengeRepo{m} }

func (m *MemRepository) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%026d", prefix, m.seq)
}

type memAccountRepo struct{ m *MemRepository }

func (r *memAccountRepo) ByIdentity(ctx context.Context, attribute, value string) (*wallet.Account, error) {
	for _, a := range r.m.accounts {
		var match bool
		switch attribute {
		case "ID":
			match = a.ID == value
		case "Email":
			match = a.Email.String == value
		case "Phone":
			match = a.Phone.String == value
		case "DID":
			match = a.DID.String == value
		default:
			return nil, fmt.Errorf("%s is not a valid query parameter", attribute)
		}
		if match {
			copied := *a
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memAccountRepo) GetForUpdate(ctx context.Context, accountID string) (*wallet.Account, error) {
	a, ok := r.m.accounts[accountID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *a
	return &copied, nil
}

func (r *memAccountRepo) Create(ctx context.Context, account *wallet.Account) error {
	if account.ID == "" {
		account.ID = r.m.nextID("account")
	}
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	copied := *account
	r.m.accounts[account.ID] = &copied
	return nil
}

func (r *memAccountRepo) Update(ctx context.Context, account *wallet.Account) error {
	if _, ok := r.m.accounts[account.ID]; !ok {
		return sql.ErrNoRows
	}
	account.UpdatedAt = time.Now()
	copied := *account
	r.m.accounts[account.ID] = &copied
	return nil
}

type memCredentialRepo struct{ m *MemRepository }

func (r *memCredentialRepo) ByID(ctx context.Context, credentialID string) (*wallet.Credential, error) {
	c, ok := r.m.credentials[credentialID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *c
	return &copied, nil
}

func (r *memCredentialRepo) ByCredentialID(ctx context.Context, credentialID []byte) (*wallet.Credential, error) {
	for _, c := range r.m.credentials {
		if bytes.Equal(c.CredentialID, credentialID) {
			copied := *c
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memCredentialRepo) ByAccountID(ctx context.Context, accountID string) ([]*wallet.Credential, error) {
	var credentials []*wallet.Credential
	for _, c := range r.m.credentials {
		if c.AccountID == accountID {
			copied := *c
			credentials = append(credentials, &copied)
		}
	}
	return credentials, nil
}

func (r *memCredentialRepo) Create(ctx context.Context, credential *wallet.Credential) error {
	if credential.ID == "" {
		credential.ID = r.m.nextID("credential")
	}
	credential.CreatedAt = time.Now()
	credential.UpdatedAt = credential.CreatedAt
	copied := *credential
	r.m.credentials[credential.ID] = &copied
	return nil
}

func (r *memCredentialRepo) GetForUpdate(ctx context.Context, credentialID string) (*wallet.Credential, error) {
	return r.ByID(ctx, credentialID)
}

func (r *memCredentialRepo) Update(ctx context.Context, credential *wallet.Credential) error {
	if _, ok := r.m.credentials[credential.ID]; !ok {
		return sql.ErrNoRows
	}
	credential.UpdatedAt = time.Now()
	copied := *credential
	r.m.credentials[credential.ID] = &copied
	return nil
}

type memChallengeRepo struct{ m *MemRepository }

func (r *memChallengeRepo) ByID(ctx context.Context, challengeID string) (*wallet.Challenge, error) {
	c, ok := r.m.challenges[challengeID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *c
	return &copied, nil
}

func (r *memChallengeRepo) GetForUpdate(ctx context.Context, challengeID string) (*wallet.Challenge, error) {
	return r.ByID(ctx, challengeID)
}

func (r *memChallengeRepo) Create(ctx context.Context, challenge *wallet.Challenge) error {
	if challenge.ID == "" {
		challenge.ID = r.m.nextID("challenge")
	}
	challenge.CreatedAt = time.Now()
	challenge.UpdatedAt = challenge.CreatedAt
	copied := *challenge
	r.m.challenges[challenge.ID] = &copied
	return nil
}

func (r *memChallengeRepo) Update(ctx context.Context, challenge *wallet.Challenge) error {
	if _, ok := r.m.challenges[challenge.ID]; !ok {
		return sql.ErrNoRows
	}
	challenge.UpdatedAt = time.Now()
	copied := *challenge
	r.m.challenges[challenge.ID] = &copied
	return nil
}

func (r *memChallengeRepo) InvalidatePending(ctx context.Context, recipient string) (int64, error) {
	var affected int64
	for _, c := range r.m.challenges {
		if c.Recipient == recipient && c.Status == wallet.ChallengePending {
			c.Status = wallet.ChallengeInvalid
			c.UpdatedAt = time.Now()
			affected++
		}
	}
	return affected, nil
}
