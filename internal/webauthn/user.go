package webauthn

import (
	webauthnLib "github.com/duo-labs/webauthn/webauthn"

	wallet "github.com/idaralabs/Idara-Wallet"
)

// User wraps the wallet.Account domain entity to satisfy duo-lab's
// webauthn User interface.
type User struct {
	wallet.Account
	Credentials []*wallet.Credential
}

// WebAuthnID returns the account's ID.
func (u *User) WebAuthnID() []byte {
	return []byte(u.ID)
}

// WebAuthnName returns the account's default contact address.
func (u *User) WebAuthnName() string {
	address, _ := u.Contact()
	return address
}

// WebAuthnDisplayName returns the account's display name.
func (u *User) WebAuthnDisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.WebAuthnName()
}

// WebAuthnIcon returns an Icon for the user.
func (u *User) WebAuthnIcon() string {
	return ""
}

// WebAuthnCredentials returns all of the account's registered
// credentials.
func (u *User) WebAuthnCredentials() []webauthnLib.Credential {
	wcs := make([]webauthnLib.Credential, len(u.Credentials))

	for idx, credential := range u.Credentials {
		wcs[idx] = webauthnLib.Credential{
			ID:        credential.CredentialID,
			PublicKey: credential.PublicKey,
			Authenticator: webauthnLib.Authenticator{
				AAGUID:    credential.AAGUID,
				SignCount: credential.SignCount,
			},
		}
	}

	return wcs
}
