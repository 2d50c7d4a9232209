// Package crypto provides cryptographic utility functions.
package crypto

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// CharSetDigits is the default sample for OTP code generation.
const CharSetDigits = "0123456789"

// CharSetAlphanumeric is an alternative sample for OTP code
// generation.
const CharSetAlphanumeric = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Bytes returns securely generated random bytes.
func Bytes(length int) ([]byte, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// BytesFromSample returns securely generated random bytes from a
// string sample.
func BytesFromSample(length int, samples ...string) ([]byte, error) {
	sample := strings.Join(samples, "")
	if sample == "" {
		sample = "!\"#$%&'()*+,-./0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
			"[\\]^_`abcdefghijklmnopqrstuvwxyz{|}~"
	}

	bytes, err := Bytes(length)
	if err != nil {
		return nil, err
	}
	for i, b := range bytes {
		bytes[i] = sample[b%byte(len(sample))]
	}

	return bytes, nil
}

// String returns a securely generated random string from an optional
// sample.
func String(length int, samples ...string) (string, error) {
	b, err := BytesFromSample(length, samples...)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// Code returns a securely generated OTP code of the requested length
// drawn from a character set.
func Code(length int, charSet string) (string, error) {
	if charSet == "" {
		charSet = CharSetDigits
	}

	return String(length, charSet)
}

// Hash returns a sha512 hash of a string.
func Hash(s string) (string, error) {
	h := sha512.New()
	_, err := h.Write([]byte(s))
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashMatches compares a plaintext value against a hash in constant
// time.
func HashMatches(value, hash string) bool {
	h, err := Hash(value)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(h), []byte(hash)) == 1
}
