package crypto

import (
	"strings"
	"testing"
)

func TestCrypto_Code(t *testing.T) {
	code, err := Code(6, CharSetDigits)
	if err != nil {
		t.Fatal("failed to generate code:", err)
	}

	if len(code) != 6 {
		t.Errorf("incorrect code length, want 6 got %d", len(code))
	}

	for _, c := range code {
		if !strings.ContainsRune(CharSetDigits, c) {
			t.Errorf("code contains character outside of sample: %q", c)
		}
	}
}

func TestCrypto_CodeDefaultsToDigits(t *testing.T) {
	code, err := Code(8, "")
	if err != nil {
		t.Fatal("failed to generate code:", err)
	}

	for _, c := range code {
		if !strings.ContainsRune(CharSetDigits, c) {
			t.Errorf("code contains character outside of sample: %q", c)
		}
	}
}

func TestCrypto_HashMatches(t *testing.T) {
	hash, err := Hash("123456")
	if err != nil {
		t.Fatal("failed to hash value:", err)
	}

	if !HashMatches("123456", hash) {
		t.Error("expected hash to match original value")
	}

	if HashMatches("654321", hash) {
		t.Error("expected hash mismatch for different value")
	}
}

func TestCrypto_String(t *testing.T) {
	s1, err := String(40)
	if err != nil {
		t.Fatal("failed to generate string:", err)
	}

	s2, err := String(40)
	if err != nil {
		t.Fatal("failed to generate string:", err)
	}

	if len(s1) != 40 {
		t.Errorf("incorrect length, want 40 got %d", len(s1))
	}

	if s1 == s2 {
		t.Error("generated strings are not random")
	}
}
