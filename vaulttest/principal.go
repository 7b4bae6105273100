package vaulttest

import (
	"crypto/rand"
	"encoding/binary"
	"testing"

	"github.com/keygate/vault"
	"github.com/keygate/vault/crypto"
)

// NewKey returns a fresh ed25519 identity.
func NewKey(t testing.TB) *crypto.PrivateKey {
	t.Helper()
	key, err := crypto.GenPrivKeyEd25519()
	if err != nil {
		t.Fatalf("cannot generate key: %s", err)
	}
	return key
}

// RandomPrincipal returns a self authenticating principal of a random key.
func RandomPrincipal(t testing.TB) vault.Principal {
	t.Helper()
	return NewKey(t).Principal()
}

// SequencePrincipal returns a deterministic principal for the given number.
// Useful when the order of principals must be predictable.
func SequencePrincipal(n uint32) vault.Principal {
	seed := make([]byte, 32)
	binary.BigEndian.PutUint32(seed[28:], n)
	return crypto.PrivKeyEd25519FromSeed(seed).Principal()
}

// ParsePrincipal decodes a principal text or fails the test.
func ParsePrincipal(t testing.TB, text string) vault.Principal {
	t.Helper()
	p, err := vault.ParsePrincipal(text)
	if err != nil {
		t.Fatalf("cannot parse %q principal: %s", text, err)
	}
	return p
}

// RandomBytes returns n random bytes.
func RandomBytes(t testing.TB, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("cannot read random data: %s", err)
	}
	return b
}
