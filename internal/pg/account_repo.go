package pg

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	wallet "github.com/idaralabs/Idara-Wallet"
)

// AccountRepository is an implementation of wallet.AccountRepository.
type AccountRepository struct {
	client *Client
}

// ByIdentity retrieves an Account by some attribute of identification,
// e.g. ID, Email, Phone or DID.
func (r *AccountRepository) ByIdentity(ctx context.Context, attribute, value string) (*wallet.Account, error) {
	var q string

	switch attribute {
	case "ID":
		q = r.client.accountQ["byID"]
	case "Email":
		q = r.client.accountQ["byEmail"]
	case "Phone":
		q = r.client.accountQ["byPhone"]
	case "DID":
		q = r.client.accountQ["byDID"]
	default:
		return nil, errors.Errorf("%s is not a valid account attribute", attribute)
	}

	account := wallet.Account{}
	row := r.client.queryRowContext(ctx, q, value)
	if err := r.scan(row, &account); err != nil {
		return nil, err
	}

	return &account, nil
}

// GetForUpdate retrieves an Account to be updated within a transaction.
func (r *AccountRepository) GetForUpdate(ctx context.Context, accountID string) (*wallet.Account, error) {
	if r.client.tx == nil {
		return nil, errors.New("cannot retrieve account outside of transaction")
	}

	account := wallet.Account{}
	row := r.client.queryRowContext(ctx, r.client.accountQ["forUpdate"], accountID)
	if err := r.scan(row, &account); err != nil {
		return nil, err
	}

	return &account, nil
}

// Create persists a new Account.
func (r *AccountRepository) Create(ctx context.Context, account *wallet.Account) error {
	id, err := r.client.newULID()
	if err != nil {
		return err
	}

	account.ID = id
	row := r.client.queryRowContext(
		ctx,
		r.client.accountQ["insert"],
		account.ID,
		account.DID,
		account.Phone,
		account.Email,
		account.Name,
		account.IsEmailVerified,
		account.IsPhoneVerified,
		account.IsWebAuthnAllowed,
		account.LastLoginAt,
	)
	return row.Scan(&account.CreatedAt, &account.UpdatedAt)
}

// Update updates an Account.
func (r *AccountRepository) Update(ctx context.Context, account *wallet.Account) error {
	account.UpdatedAt = time.Now().UTC()

	res, err := r.client.execContext(
		ctx,
		r.client.accountQ["update"],
		account.ID,
		account.DID,
		account.Phone,
		account.Email,
		account.Name,
		account.IsEmailVerified,
		account.IsPhoneVerified,
		account.IsWebAuthnAllowed,
		account.LastLoginAt,
		account.UpdatedAt,
	)
	if err != nil {
		return err
	}

	updatedRows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if updatedRows != 1 {
		return errors.Errorf("wrong number of accounts updated: %d", updatedRows)
	}

	return nil
}

func (r *AccountRepository) scan(row *sql.Row, account *wallet.Account) error {
	return row.Scan(
		&account.ID,
		&account.DID,
		&account.Phone,
		&account.Email,
		&account.Name,
		&account.IsEmailVerified,
		&account.IsPhoneVerified,
		&account.IsWebAuthnAllowed,
		&account.LastLoginAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
}
