package webauthn

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	webauthnProto "github.com/duo-labs/webauthn/protocol"
	webauthnLib "github.com/duo-labs/webauthn/webauthn"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"

	wallet "github.com/idaralabs/Idara-Wallet"
	"github.com/idaralabs/Idara-Wallet/internal/crypto"
)

// sessionIDLength is the length of a minted ceremony session ID.
const sessionIDLength = 40

// Webauthner is an interface to duo-labs/webauthn.
type Webauthner interface {
	BeginRegistration(user webauthnLib.User, opts ...webauthnLib.RegistrationOption) (*webauthnProto.CredentialCreation, *webauthnLib.SessionData, error)
	FinishRegistration(user webauthnLib.User, session webauthnLib.SessionData, r *http.Request) (*webauthnLib.Credential, error)
	BeginLogin(user webauthnLib.User, opts ...webauthnLib.LoginOption) (*webauthnProto.CredentialAssertion, *webauthnLib.SessionData, error)
	FinishLogin(user webauthnLib.User, session webauthnLib.SessionData, r *http.Request) (*webauthnLib.Credential, error)
}

// WebAuthn coordinates registration and authentication ceremonies.
// Cryptographic attestation and assertion verification is deferred to
// the duo-labs/webauthn library; this service owns ceremony sessions,
// allow and exclusion lists, and the credential records that ceremonies
// produce.
type WebAuthn struct {
	logger log.Logger
	// displayName is the relying party display name.
	displayName string
	// domain is the relying party ID.
	domain string
	// requestOrigin is the origin domain for
	// authentication requests.
	requestOrigin string
	// lib is the underlying WebAuthn library
	// used by this adapter.
	lib Webauthner
	// sessions stores in-flight ceremony sessions.
	sessions wallet.SessionRepository
	// repoMngr is an instance of a RepositoryManager
	// to manage domain entities.
	repoMngr wallet.RepositoryManager
}

// BeginRegistration starts a ceremony to register a new credential for
// an account. Previously registered credentials are excluded so the
// same authenticator cannot be enrolled twice.
func (w *WebAuthn) BeginRegistration(ctx context.Context, account *wallet.Account) (string, []byte, error) {
	credentials, err := w.repoMngr.Credential().ByAccountID(ctx, account.ID)
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to load registered credentials")
	}

	wu := User{Account: *account, Credentials: credentials}

	var opts []webauthnLib.RegistrationOption
	if len(credentials) > 0 {
		opts = append(opts, webauthnLib.WithExclusions(descriptors(credentials)))
	}

	creation, session, err := w.lib.BeginRegistration(&wu, opts...)
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to initialize webauthn registration")
	}

	optionBytes, err := json.Marshal(creation)
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to marshal webauthn credential options")
	}

	sessionID, err := w.storeSession(ctx, account.ID, session)
	if err != nil {
		return "", nil, err
	}

	return sessionID, optionBytes, nil
}

// FinishRegistration verifies a registration ceremony and persists the
// resulting credential. The consumed session is removed regardless of
// outcome.
func (w *WebAuthn) FinishRegistration(ctx context.Context, sessionID string, r *http.Request) (*wallet.Credential, error) {
	account, session, err := w.takeSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	wu := User{Account: *account}

	libCredential, err := w.lib.FinishRegistration(&wu, *session, r)
	if err != nil {
		level.Info(w.logger).Log(
			"source", "WebAuthn.FinishRegistration",
			"message", "attestation rejected",
			"error", err,
		)
		return nil, wallet.ErrWebAuthn("credential registration failed")
	}

	if _, err = w.repoMngr.Credential().ByCredentialID(ctx, libCredential.ID); err == nil {
		return nil, wallet.ErrConflict("credential is already registered")
	} else if errors.Cause(err) != sql.ErrNoRows {
		return nil, errors.Wrap(err, "failed to check for duplicate credential")
	}

	client, err := w.repoMngr.NewWithTransaction(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to start transaction")
	}

	entity, err := client.WithAtomic(func() (interface{}, error) {
		credential := &wallet.Credential{
			AccountID:    account.ID,
			CredentialID: libCredential.ID,
			PublicKey:    libCredential.PublicKey,
			AAGUID:       libCredential.Authenticator.AAGUID,
			SignCount:    libCredential.Authenticator.SignCount,
		}
		if err = client.Credential().Create(ctx, credential); err != nil {
			return nil, err
		}

		if !account.IsWebAuthnAllowed {
			acct, err := client.Account().GetForUpdate(ctx, account.ID)
			if err != nil {
				return nil, err
			}

			acct.IsWebAuthnAllowed = true
			if err = client.Account().Update(ctx, acct); err != nil {
				return nil, err
			}
		}

		return credential, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to persist credential")
	}

	return entity.(*wallet.Credential), nil
}

// BeginLogin starts a ceremony to authenticate an account through
// proof of credential ownership. The challenge is scoped to the
// account's registered credentials.
func (w *WebAuthn) BeginLogin(ctx context.Context, account *wallet.Account) (string, []byte, error) {
	credentials, err := w.repoMngr.Credential().ByAccountID(ctx, account.ID)
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to load registered credentials")
	}

	if len(credentials) == 0 {
		return "", nil, wallet.ErrNoCredentials("account has no registered credentials")
	}

	wu := User{Account: *account, Credentials: credentials}

	assertion, session, err := w.lib.BeginLogin(&wu, webauthnLib.WithAllowedCredentials(descriptors(credentials)))
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to initialize webauthn login")
	}

	optionBytes, err := json.Marshal(assertion)
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to marshal webauthn assertion options")
	}

	sessionID, err := w.storeSession(ctx, account.ID, session)
	if err != nil {
		return "", nil, err
	}

	return sessionID, optionBytes, nil
}

// FinishLogin verifies an authentication ceremony and returns the
// asserted account for token issuance. The stored sign count is
// advanced on success.
func (w *WebAuthn) FinishLogin(ctx context.Context, sessionID string, r *http.Request) (*wallet.Account, error) {
	account, session, err := w.takeSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	credentials, err := w.repoMngr.Credential().ByAccountID(ctx, account.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load registered credentials")
	}

	wu := User{Account: *account, Credentials: credentials}

	libCredential, err := w.lib.FinishLogin(&wu, *session, r)
	if err != nil {
		level.Info(w.logger).Log(
			"source", "WebAuthn.FinishLogin",
			"message", "assertion rejected",
			"error", err,
		)
		return nil, wallet.ErrWebAuthn("credential assertion failed")
	}

	if libCredential.Authenticator.CloneWarning {
		return nil, wallet.ErrWebAuthn("authenticator is possibly cloned")
	}

	stored, err := w.repoMngr.Credential().ByCredentialID(ctx, libCredential.ID)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return nil, wallet.ErrWebAuthn("credential is not recognized")
		}
		return nil, errors.Wrap(err, "failed to look up asserted credential")
	}

	if stored.AccountID != account.ID {
		return nil, wallet.ErrBadRequest("credential is registered to another account")
	}

	newCount := libCredential.Authenticator.SignCount
	if !signCountAdvanced(stored.SignCount, newCount) {
		return nil, wallet.ErrWebAuthn("authenticator sign count did not increase")
	}

	client, err := w.repoMngr.NewWithTransaction(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to start transaction")
	}

	_, err = client.WithAtomic(func() (interface{}, error) {
		credential, err := client.Credential().GetForUpdate(ctx, stored.ID)
		if err != nil {
			return nil, err
		}

		credential.SignCount = newCount
		credential.LastUsedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
		if err = client.Credential().Update(ctx, credential); err != nil {
			return nil, err
		}

		return credential, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update credential sign count")
	}

	return account, nil
}

// storeSession mints a session ID and persists the library's opaque
// ceremony state under it.
func (w *WebAuthn) storeSession(ctx context.Context, accountID string, data *webauthnLib.SessionData) (string, error) {
	sessionBytes, err := json.Marshal(data)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal webauthn ceremony session")
	}

	sessionID, err := crypto.String(sessionIDLength)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate session ID")
	}

	err = w.sessions.Create(ctx, &wallet.CeremonySession{
		ID:        sessionID,
		AccountID: accountID,
		Data:      sessionBytes,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to store webauthn ceremony session")
	}

	return sessionID, nil
}

// takeSession consumes a ceremony session and resolves its account.
func (w *WebAuthn) takeSession(ctx context.Context, sessionID string) (*wallet.Account, *webauthnLib.SessionData, error) {
	session, err := w.sessions.Take(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	account, err := w.repoMngr.Account().ByIdentity(ctx, "ID", session.AccountID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to resolve session account")
	}

	data := webauthnLib.SessionData{}
	if err = json.Unmarshal(session.Data, &data); err != nil {
		return nil, nil, errors.Wrap(err, "failed to unmarshal webauthn ceremony session")
	}

	return account, &data, nil
}

// signCountAdvanced reports whether a verifier reported sign count is
// acceptable. Counts must strictly increase; authenticators that do
// not implement a counter report zero on every assertion.
func signCountAdvanced(stored, updated uint32) bool {
	if stored == 0 && updated == 0 {
		return true
	}
	return updated > stored
}

func descriptors(credentials []*wallet.Credential) []webauthnProto.CredentialDescriptor {
	ds := make([]webauthnProto.CredentialDescriptor, len(credentials))
	for idx, credential := range credentials {
		ds[idx] = webauthnProto.CredentialDescriptor{
			Type:         webauthnProto.PublicKeyCredentialType,
			CredentialID: credential.CredentialID,
		}
	}
	return ds
}
