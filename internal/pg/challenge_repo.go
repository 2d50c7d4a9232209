package pg

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	wallet "github.com/idaralabs/Idara-Wallet"
)

// ChallengeRepository is an implementation of wallet.ChallengeRepository.
type ChallengeRepository struct {
	client *Client
}

// ByID retrieves a Challenge by ID.
func (r *ChallengeRepository) ByID(ctx context.Context, challengeID string) (*wallet.Challenge, error) {
	challenge := wallet.Challenge{}
	row := r.client.queryRowContext(ctx, r.client.challengeQ["byID"], challengeID)
	if err := r.scan(row, &challenge); err != nil {
		return nil, err
	}

	return &challenge, nil
}

// GetForUpdate retrieves a Challenge to be updated within a transaction.
func (r *ChallengeRepository) GetForUpdate(ctx context.Context, challengeID string) (*wallet.Challenge, error) {
	if r.client.tx == nil {
		return nil, errors.New("cannot retrieve challenge outside of transaction")
	}

	challenge := wallet.Challenge{}
	row := r.client.queryRowContext(ctx, r.client.challengeQ["forUpdate"], challengeID)
	if err := r.scan(row, &challenge); err != nil {
		return nil, err
	}

	return &challenge, nil
}

// Create persists a new Challenge.
func (r *ChallengeRepository) Create(ctx context.Context, challenge *wallet.Challenge) error {
	id, err := r.client.newULID()
	if err != nil {
		return err
	}

	challenge.ID = id
	row := r.client.queryRowContext(
		ctx,
		r.client.challengeQ["insert"],
		challenge.ID,
		challenge.Recipient,
		challenge.Delivery,
		challenge.Purpose,
		challenge.CodeHash,
		challenge.AccountID,
		challenge.Status,
		challenge.Attempts,
		challenge.MaxAttempts,
		challenge.ExpiresAt,
	)
	return row.Scan(&challenge.CreatedAt, &challenge.UpdatedAt)
}

// Update updates a Challenge's status and attempt count.
func (r *ChallengeRepository) Update(ctx context.Context, challenge *wallet.Challenge) error {
	challenge.UpdatedAt = time.Now().UTC()

	res, err := r.client.execContext(
		ctx,
		r.client.challengeQ["update"],
		challenge.ID,
		challenge.Status,
		challenge.Attempts,
		challenge.VerifiedAt,
		challenge.UpdatedAt,
	)
	if err != nil {
		return err
	}

	updatedRows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if updatedRows != 1 {
		return errors.Errorf("wrong number of challenges updated: %d", updatedRows)
	}

	return nil
}

// InvalidatePending marks all pending challenges for a recipient as
// invalid, returning the number of challenges superseded.
func (r *ChallengeRepository) InvalidatePending(ctx context.Context, recipient string) (int64, error) {
	res, err := r.client.execContext(
		ctx,
		r.client.challengeQ["invalidatePending"],
		recipient,
		wallet.ChallengeInvalid,
		time.Now().UTC(),
		wallet.ChallengePending,
	)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (r *ChallengeRepository) scan(row *sql.Row, challenge *wallet.Challenge) error {
	return row.Scan(
		&challenge.ID,
		&challenge.Recipient,
		&challenge.Delivery,
		&challenge.Purpose,
		&challenge.CodeHash,
		&challenge.AccountID,
		&challenge.Status,
		&challenge.Attempts,
		&challenge.MaxAttempts,
		&challenge.ExpiresAt,
		&challenge.VerifiedAt,
		&challenge.CreatedAt,
		&challenge.UpdatedAt,
	)
}
