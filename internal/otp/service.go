// Package otp manages the lifecycle of one time passcode challenges.
package otp

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"

	wallet "github.com/idaralabs/Idara-Wallet"
	"github.com/idaralabs/Idara-Wallet/internal/contactchecker"
	"github.com/idaralabs/Idara-Wallet/internal/crypto"
)

// service is an implementation of wallet.OTPService.
//
// Challenge records transition from pending to a terminal status.
// A stored status of invalid means the record was superseded by a
// newer challenge for the same recipient; failed verification
// attempts keep the stored status pending until the attempt ceiling
// is reached, and the per-attempt outcome is reported to the caller
// instead.
type service struct {
	logger      log.Logger
	codeLength  int
	charSet     string
	ttl         time.Duration
	maxAttempts int
	limiter     wallet.LimiterService
	repoMngr    wallet.RepositoryManager
	messaging   wallet.MessagingService
	now         func() time.Time

	mu         sync.Mutex
	recipients map[string]*sync.Mutex
}

type verifyOutcome struct {
	challenge *wallet.Challenge
	err       error
}

// Issue creates a new pending challenge for a recipient and hands
// the generated code to the messaging service for out-of-band
// delivery. Any prior pending challenges for the recipient are
// invalidated first, so at most one active challenge exists per
// recipient. Issuance for the same recipient is serialized to keep
// that invariant under concurrent requests.
func (s *service) Issue(ctx context.Context, recipient string, method wallet.DeliveryMethod, purpose wallet.Purpose, accountID string) (*wallet.Challenge, error) {
	if !contactchecker.Validator(method)(recipient) {
		return nil, wallet.ErrBadRequest("recipient is not a valid address for its delivery channel")
	}

	unlock := s.lockRecipient(recipient)
	defer unlock()

	if err := s.limiter.CheckAndRecord(ctx, recipient); err != nil {
		return nil, err
	}

	code, err := crypto.Code(s.codeLength, s.charSet)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate code")
	}

	codeHash, err := crypto.Hash(code)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash code")
	}

	challenge := &wallet.Challenge{
		Recipient:   recipient,
		Delivery:    method,
		Purpose:     purpose,
		CodeHash:    codeHash,
		Status:      wallet.ChallengePending,
		MaxAttempts: s.maxAttempts,
		ExpiresAt:   s.now().Add(s.ttl),
	}
	if accountID != "" {
		challenge.AccountID = sql.NullString{String: accountID, Valid: true}
	}

	tx, err := s.repoMngr.NewWithTransaction(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to start transaction")
	}

	_, err = tx.WithAtomic(func() (interface{}, error) {
		if _, err := tx.Challenge().InvalidatePending(ctx, recipient); err != nil {
			return nil, err
		}

		if err := tx.Challenge().Create(ctx, challenge); err != nil {
			return nil, err
		}

		return challenge, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to persist challenge")
	}

	// Enable in config: api.debug
	level.Debug(s.logger).Log(
		"source", "OTP.Issue",
		"message", "challenge code generated",
		"challenge_id", challenge.ID,
		"recipient", recipient,
		"code", code,
	)

	// The challenge is committed at this point. Delivery is queued
	// asynchronously and falls back to the log sink downstream, so a
	// dispatch error does not fail issuance.
	if err = s.messaging.Send(ctx, code, recipient, method, purpose); err != nil {
		level.Info(s.logger).Log(
			"source", "OTP.Issue",
			"message", "failed to dispatch code for delivery",
			"challenge_id", challenge.ID,
			"error", err,
		)
	}

	return challenge, nil
}

// Verify checks a submitted code against a stored challenge. The
// returned challenge reflects the outcome of this attempt; a nil
// error is returned only when the challenge transitioned to
// verified.
func (s *service) Verify(ctx context.Context, challengeID, code string) (*wallet.Challenge, error) {
	tx, err := s.repoMngr.NewWithTransaction(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to start transaction")
	}

	entity, err := tx.WithAtomic(func() (interface{}, error) {
		return s.verifyAttempt(ctx, tx, challengeID, code)
	})
	if err != nil {
		return nil, err
	}

	outcome := entity.(*verifyOutcome)
	return outcome.challenge, outcome.err
}

// verifyAttempt runs a single verification attempt inside a
// transaction. Failure outcomes that mutate the record (expiry
// transitions, consumed attempts) are returned through verifyOutcome
// so the mutation still commits.
func (s *service) verifyAttempt(ctx context.Context, tx wallet.RepositoryManager, challengeID, code string) (*verifyOutcome, error) {
	challenge, err := tx.Challenge().GetForUpdate(ctx, challengeID)
	if err == sql.ErrNoRows {
		return nil, wallet.ErrNotFound("challenge does not exist")
	}
	if err != nil {
		return nil, err
	}

	switch challenge.Status {
	case wallet.ChallengeVerified:
		return nil, wallet.ErrBadRequest("challenge has already been verified")
	case wallet.ChallengeExpired:
		return &verifyOutcome{
			challenge: challenge,
			err:       wallet.ErrExpired("challenge is expired"),
		}, nil
	case wallet.ChallengeInvalid:
		return &verifyOutcome{
			challenge: challenge,
			err:       wallet.ErrExpired("challenge was superseded by a newer code"),
		}, nil
	}

	if s.now().After(challenge.ExpiresAt) {
		challenge.Status = wallet.ChallengeExpired
		if err = tx.Challenge().Update(ctx, challenge); err != nil {
			return nil, err
		}

		return &verifyOutcome{
			challenge: challenge,
			err:       wallet.ErrExpired("challenge is expired"),
		}, nil
	}

	if challenge.Attempts >= challenge.MaxAttempts {
		return &verifyOutcome{
			challenge: challenge,
			err:       wallet.ErrAttemptsExhausted("verification attempts exhausted"),
		}, nil
	}

	challenge.Attempts++

	if crypto.HashMatches(code, challenge.CodeHash) {
		challenge.Status = wallet.ChallengeVerified
		challenge.VerifiedAt = sql.NullTime{Time: s.now(), Valid: true}
		if err = tx.Challenge().Update(ctx, challenge); err != nil {
			return nil, err
		}

		return &verifyOutcome{challenge: challenge}, nil
	}

	if err = tx.Challenge().Update(ctx, challenge); err != nil {
		return nil, err
	}

	reported := *challenge
	reported.Status = wallet.ChallengeInvalid

	return &verifyOutcome{
		challenge: &reported,
		err:       wallet.ErrInvalidCode("incorrect code provided"),
	}, nil
}

func (s *service) lockRecipient(recipient string) func() {
	s.mu.Lock()
	m, ok := s.recipients[recipient]
	if !ok {
		m = &sync.Mutex{}
		s.recipients[recipient] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}
