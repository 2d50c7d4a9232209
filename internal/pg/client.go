// Package pg provides implementations of wallet domain repository interfaces.
package pg

import (
	"context"
	"database/sql"
	"io"
	"sync"

	"github.com/go-kit/kit/log"
	// pg driver registers itself as being available to the database/sql package.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	wallet "github.com/idaralabs/Idara-Wallet"
)

// Client represents a client for PostgreSQL.
type Client struct {
	db        *sql.DB
	tx        *sql.Tx
	entropy   io.Reader
	entropyMu *sync.Mutex
	logger    log.Logger

	accountRepository *AccountRepository
	accountQ          map[string]string

	credentialRepository *CredentialRepository
	credentialQ          map[string]string

	challengeRepository *ChallengeRepository
	challengeQ          map[string]string
}

// Open connects to PostgreSQL.
func (c *Client) Open(dataSourceName string) error {
	var err error

	c.logger.Log("level", "debug", "msg", "connecting to db")
	if c.db, err = sql.Open("postgres", dataSourceName); err != nil {
		return err
	}
	if err = c.db.Ping(); err != nil {
		return err
	}
	c.logger.Log("level", "debug", "msg", "connected to db")

	c.accountQ = map[string]string{
		"byID": `
			SELECT id, did, phone, email, name, is_email_verified, is_phone_verified,
				is_webauthn_allowed, last_login_at, created_at, updated_at
			FROM account
			WHERE id = $1;
		`,
		"byEmail": `
			SELECT id, did, phone, email, name, is_email_verified, is_phone_verified,
				is_webauthn_allowed, last_login_at, created_at, updated_at
			FROM account
			WHERE email = $1;
		`,
		"byPhone": `
			SELECT id, did, phone, email, name, is_email_verified, is_phone_verified,
				is_webauthn_allowed, last_login_at, created_at, updated_at
			FROM account
			WHERE phone = $1;
		`,
		"byDID": `
			SELECT id, did, phone, email, name, is_email_verified, is_phone_verified,
				is_webauthn_allowed, last_login_at, created_at, updated_at
			FROM account
			WHERE did = $1;
		`,
		"forUpdate": `
			SELECT id, did, phone, email, name, is_email_verified, is_phone_verified,
				is_webauthn_allowed, last_login_at, created_at, updated_at
			FROM account
			WHERE id = $1
			FOR UPDATE;
		`,
		"update": `
			UPDATE account
			SET did=$2, phone=$3, email=$4, name=$5, is_email_verified=$6,
				is_phone_verified=$7, is_webauthn_allowed=$8, last_login_at=$9,
				updated_at=$10
			WHERE id = $1;
		`,
		"insert": `
			INSERT INTO account (
				id, did, phone, email, name, is_email_verified, is_phone_verified,
				is_webauthn_allowed, last_login_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING created_at, updated_at;
		`,
	}

	c.credentialQ = map[string]string{
		"byID": `
			SELECT id, account_id, credential_id, public_key, aaguid, sign_count,
				transports, name, last_used_at, created_at, updated_at
			FROM webauthn_credential
			WHERE id = $1;
		`,
		"byCredentialID": `
			SELECT id, account_id, credential_id, public_key, aaguid, sign_count,
				transports, name, last_used_at, created_at, updated_at
			FROM webauthn_credential
			WHERE credential_id = $1;
		`,
		"byAccountID": `
			SELECT id, account_id, credential_id, public_key, aaguid, sign_count,
				transports, name, last_used_at, created_at, updated_at
			FROM webauthn_credential
			WHERE account_id = $1;
		`,
		"forUpdate": `
			SELECT id, account_id, credential_id, public_key, aaguid, sign_count,
				transports, name, last_used_at, created_at, updated_at
			FROM webauthn_credential
			WHERE id = $1
			FOR UPDATE;
		`,
		"update": `
			UPDATE webauthn_credential
			SET sign_count=$2, transports=$3, name=$4, last_used_at=$5, updated_at=$6
			WHERE id = $1;
		`,
		"insert": `
			INSERT INTO webauthn_credential (
				id, account_id, credential_id, public_key, aaguid, sign_count,
				transports, name
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING created_at, updated_at;
		`,
	}

	c.challengeQ = map[string]string{
		"byID": `
			SELECT id, recipient, delivery, purpose, code_hash, account_id, status,
				attempts, max_attempts, expires_at, verified_at, created_at, updated_at
			FROM otp_challenge
			WHERE id = $1;
		`,
		"forUpdate": `
			SELECT id, recipient, delivery, purpose, code_hash, account_id, status,
				attempts, max_attempts, expires_at, verified_at, created_at, updated_at
			FROM otp_challenge
			WHERE id = $1
			FOR UPDATE;
		`,
		"update": `
			UPDATE otp_challenge
			SET status=$2, attempts=$3, verified_at=$4, updated_at=$5
			WHERE id = $1;
		`,
		"insert": `
			INSERT INTO otp_challenge (
				id, recipient, delivery, purpose, code_hash, account_id, status,
				attempts, max_attempts, expires_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING created_at, updated_at;
		`,
		"invalidatePending": `
			UPDATE otp_challenge
			SET status=$2, updated_at=$3
			WHERE recipient = $1
			AND status = $4;
		`,
	}

	return nil
}

// Close closes PostgreSQL connection.
func (c *Client) Close() error {
	return c.db.Close()
}

// NewWithTransaction starts a transaction and returns a client
// with the transaction set.
func (c *Client) NewWithTransaction(ctx context.Context) (wallet.RepositoryManager, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	newClient := *c
	newClient.tx = tx
	newClient.accountRepository = &AccountRepository{client: &newClient}
	newClient.credentialRepository = &CredentialRepository{client: &newClient}
	newClient.challengeRepository = &ChallengeRepository{client: &newClient}
	return &newClient, nil
}

// WithAtomic performs an operation within a transaction. If the operation
// is successful it commits it, otherwise the operation will be rolledback.
func (c *Client) WithAtomic(operation func() (interface{}, error)) (interface{}, error) {
	if c.tx == nil {
		return nil, errors.New("cannot complete operation outside of transaction")
	}

	entity, err := operation()

	defer func() {
		c.tx = nil
	}()

	if err == nil {
		return entity, errors.Wrap(c.tx.Commit(), "commit failed")
	}

	if dbErr := c.tx.Rollback(); dbErr != nil {
		err = errors.Wrap(err, dbErr.Error())
	}

	return nil, err
}

// Account returns the AccountRepository.
func (c *Client) Account() wallet.AccountRepository {
	return c.accountRepository
}

// Credential returns the CredentialRepository.
func (c *Client) Credential() wallet.CredentialRepository {
	return c.credentialRepository
}

// Challenge returns the ChallengeRepository.
func (c *Client) Challenge() wallet.ChallengeRepository {
	return c.challengeRepository
}

func (c *Client) queryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	if c.tx != nil {
		return c.tx.QueryRowContext(ctx, query, args...)
	}

	return c.db.QueryRowContext(ctx, query, args...)
}

func (c *Client) queryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if c.tx != nil {
		return c.tx.QueryContext(ctx, query, args...)
	}

	return c.db.QueryContext(ctx, query, args...)
}

func (c *Client) execContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	if c.tx != nil {
		return c.tx.ExecContext(ctx, query, args...)
	}

	return c.db.ExecContext(ctx, query, args...)
}
