// Package contactchecker offers utility functions for validating
// OTP recipient addresses.
package contactchecker

import (
	"net/mail"

	"github.com/nyaruka/phonenumbers"

	wallet "github.com/idaralabs/Idara-Wallet"
)

// IsPhoneValid checks if a phone string is a valid E.164 format.
// Only the shape is checked, not carrier assignment, so reserved
// test ranges remain deliverable.
func IsPhoneValid(phone string) bool {
	// We expect phone numbers to be supplied with valid country
	// codes. Due to this, we leave country ISO values blank.
	countryISO := ""
	meta, err := phonenumbers.Parse(phone, countryISO)
	if err != nil {
		return false
	}

	return phonenumbers.IsPossibleNumber(meta)
}

// IsEmailValid checks if an email string is a valid format.
func IsEmailValid(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// Validator returns an email or phone validator for a delivery
// channel.
func Validator(method wallet.DeliveryMethod) func(s string) bool {
	if method == wallet.Email {
		return IsEmailValid
	}

	if method == wallet.SMS {
		return IsPhoneValid
	}

	return func(s string) bool {
		return false
	}
}
