package contactchecker

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	wallet "github.com/idaralabs/Idara-Wallet"
)

func TestContactChecker_ValidatesPhone(t *testing.T) {
	tt := []struct {
		name string
		in   string
		out  bool
	}{
		{
			name: "Valid phone number",
			in:   "+15551234567",
			out:  true,
		},
		{
			name: "Valid phone number in a reserved test range",
			in:   "+15555550100",
			out:  true,
		},
		{
			name: "Valid phone number with foreign country code",
			in:   "+6594867353",
			out:  true,
		},
		{
			name: "Invalid phone number without country code",
			in:   "94867353",
			out:  false,
		},
		{
			name: "Invalid phone number without prefix",
			in:   "6594867353",
			out:  false,
		},
		{
			name: "Invalid phone number too short",
			in:   "+1555",
			out:  false,
		},
		{
			name: "Invalid phone number too long",
			in:   "+1555123456789012345",
			out:  false,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			res := Validator(wallet.SMS)(tc.in)
			if res != tc.out {
				t.Error("phone validation failed", cmp.Diff(res, tc.out))
			}
		})
	}
}

func TestContactChecker_ValidatesEmail(t *testing.T) {
	tt := []struct {
		name string
		in   string
		out  bool
	}{
		{
			name: "Valid email",
			in:   "jane@example.com",
			out:  true,
		},
		{
			name: "Invalid email without domain",
			in:   "jane@",
			out:  false,
		},
		{
			name: "Invalid email without user",
			in:   "@example.com",
			out:  false,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			res := Validator(wallet.Email)(tc.in)
			if res != tc.out {
				t.Error("email validation failed", cmp.Diff(res, tc.out))
			}
		})
	}
}

func TestContactChecker_UnknownMethod(t *testing.T) {
	if Validator(wallet.DeliveryMethod("pigeon"))("jane@example.com") {
		t.Error("expected unknown delivery method to fail validation")
	}
}
