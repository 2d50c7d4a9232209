package did

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"strings"
	"testing"
)

func TestDIDSvc_Generate(t *testing.T) {
	svc := NewService()

	did, document, err := svc.Generate(context.Background())
	if err != nil {
		t.Fatal("failed to generate DID:", err)
	}

	if !strings.HasPrefix(did, "did:key:z6Mk") {
		t.Errorf("incorrect ed25519 did:key prefix: %s", did)
	}

	doc := Document{}
	if err = json.Unmarshal(document, &doc); err != nil {
		t.Fatal("failed to unmarshal DID document:", err)
	}
	if doc.ID != did {
		t.Errorf("document subject does not match DID: %s", doc.ID)
	}
	if len(doc.VerificationMethod) != 1 {
		t.Fatalf("incorrect verification method total: %d", len(doc.VerificationMethod))
	}
	if doc.VerificationMethod[0].Controller != did {
		t.Errorf("incorrect controller: %s", doc.VerificationMethod[0].Controller)
	}
}

func TestDIDSvc_GenerateIsDeterministicForKey(t *testing.T) {
	seed := bytes.Repeat([]byte{1}, ed25519.SeedSize)
	gen := func() (ed25519.PublicKey, ed25519.PrivateKey, error) {
		private := ed25519.NewKeyFromSeed(seed)
		return private.Public().(ed25519.PublicKey), private, nil
	}

	svc := NewService(WithKeyGen(gen))
	ctx := context.Background()

	first, _, err := svc.Generate(ctx)
	if err != nil {
		t.Fatal("failed to generate DID:", err)
	}
	second, _, err := svc.Generate(ctx)
	if err != nil {
		t.Fatal("failed to generate DID:", err)
	}

	if first != second {
		t.Errorf("same key must yield same DID: %s != %s", first, second)
	}
}

func TestEncodeBase58(t *testing.T) {
	tt := []struct {
		in   []byte
		want string
	}{
		{in: []byte("hello"), want: "Cn8eVZg"},
		{in: []byte{0, 0, 1}, want: "112"},
		{in: []byte{}, want: ""},
	}

	for _, tc := range tt {
		if got := encodeBase58(tc.in); got != tc.want {
			t.Errorf("incorrect encoding of %v, want %s got %s", tc.in, tc.want, got)
		}
	}
}
