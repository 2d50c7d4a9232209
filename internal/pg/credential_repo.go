package pg

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	wallet "github.com/idaralabs/Idara-Wallet"
)

// CredentialRepository is an implementation of wallet.CredentialRepository.
type CredentialRepository struct {
	client *Client
}

// ByID retrieves a Credential by its record ID.
func (r *CredentialRepository) ByID(ctx context.Context, credentialID string) (*wallet.Credential, error) {
	credential := wallet.Credential{}
	row := r.client.queryRowContext(ctx, r.client.credentialQ["byID"], credentialID)
	if err := r.scan(row, &credential); err != nil {
		return nil, err
	}

	return &credential, nil
}

// ByCredentialID retrieves a Credential by the raw credential ID
// minted by an authenticator.
func (r *CredentialRepository) ByCredentialID(ctx context.Context, credentialID []byte) (*wallet.Credential, error) {
	credential := wallet.Credential{}
	row := r.client.queryRowContext(ctx, r.client.credentialQ["byCredentialID"], credentialID)
	if err := r.scan(row, &credential); err != nil {
		return nil, err
	}

	return &credential, nil
}

// ByAccountID retrieves all Credentials registered to an account.
func (r *CredentialRepository) ByAccountID(ctx context.Context, accountID string) ([]*wallet.Credential, error) {
	rows, err := r.client.queryContext(ctx, r.client.credentialQ["byAccountID"], accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	credentials := make([]*wallet.Credential, 0)
	for rows.Next() {
		credential := wallet.Credential{}
		err := rows.Scan(
			&credential.ID,
			&credential.AccountID,
			&credential.CredentialID,
			&credential.PublicKey,
			&credential.AAGUID,
			&credential.SignCount,
			&credential.Transports,
			&credential.Name,
			&credential.LastUsedAt,
			&credential.CreatedAt,
			&credential.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		credentials = append(credentials, &credential)
	}

	return credentials, rows.Err()
}

// GetForUpdate retrieves a Credential to be updated within a transaction.
func (r *CredentialRepository) GetForUpdate(ctx context.Context, credentialID string) (*wallet.Credential, error) {
	if r.client.tx == nil {
		return nil, errors.New("cannot retrieve credential outside of transaction")
	}

	credential := wallet.Credential{}
	row := r.client.queryRowContext(ctx, r.client.credentialQ["forUpdate"], credentialID)
	if err := r.scan(row, &credential); err != nil {
		return nil, err
	}

	return &credential, nil
}

// Create persists a new Credential.
func (r *CredentialRepository) Create(ctx context.Context, credential *wallet.Credential) error {
	id, err := r.client.newULID()
	if err != nil {
		return err
	}

	credential.ID = id
	row := r.client.queryRowContext(
		ctx,
		r.client.credentialQ["insert"],
		credential.ID,
		credential.AccountID,
		credential.CredentialID,
		credential.PublicKey,
		credential.AAGUID,
		credential.SignCount,
		credential.Transports,
		credential.Name,
	)
	return row.Scan(&credential.CreatedAt, &credential.UpdatedAt)
}

// Update updates a Credential's mutable fields.
func (r *CredentialRepository) Update(ctx context.Context, credential *wallet.Credential) error {
	credential.UpdatedAt = time.Now().UTC()

	res, err := r.client.execContext(
		ctx,
		r.client.credentialQ["update"],
		credential.ID,
		credential.SignCount,
		credential.Transports,
		credential.Name,
		credential.LastUsedAt,
		credential.UpdatedAt,
	)
	if err != nil {
		return err
	}

	updatedRows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if updatedRows != 1 {
		return errors.Errorf("wrong number of credentials updated: %d", updatedRows)
	}

	return nil
}

func (r *CredentialRepository) scan(row *sql.Row, credential *wallet.Credential) error {
	return row.Scan(
		&credential.ID,
		&credential.AccountID,
		&credential.CredentialID,
		&credential.PublicKey,
		&credential.AAGUID,
		&credential.SignCount,
		&credential.Transports,
		&credential.Name,
		&credential.LastUsedAt,
		&credential.CreatedAt,
		&credential.UpdatedAt,
	)
}
