package crypto

import (
	"bytes"
	"encoding/hex"
	"io/ioutil"
	"os"

	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
	"golang.org/x/crypto/ed25519"
)

// KeyPerm is the file permissions for saved private keys.
const KeyPerm = 0600

// ed25519DERPrefix is the SubjectPublicKeyInfo header of an ed25519 key.
var ed25519DERPrefix = []byte{
	0x30, 0x2a, 0x30, 0x05, 0x06, 0x03, 0x2b, 0x65, 0x70, 0x03, 0x21, 0x00,
}

// PrivateKey is an ed25519 identity of a vault operator.
type PrivateKey struct {
	key ed25519.PrivateKey
}

// GenPrivKeyEd25519 returns a random new private key.
func GenPrivKeyEd25519() (*PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, errors.Wrap(err, "generate key")
	}
	return &PrivateKey{key: priv}, nil
}

// PrivKeyEd25519FromSeed will deterministically generate a private key from
// a given 32 byte seed. Use for deterministic keys in test cases.
func PrivKeyEd25519FromSeed(seed []byte) *PrivateKey {
	return &PrivateKey{key: ed25519.NewKeyFromSeed(seed)}
}

// PublicKey returns the raw 32 byte public key.
func (p *PrivateKey) PublicKey() []byte {
	return []byte(p.key.Public().(ed25519.PublicKey))
}

// Principal returns the self authenticating principal of this key.
func (p *PrivateKey) Principal() vault.Principal {
	return vault.SelfAuthenticating(PublicKeyDER(p.PublicKey()))
}

// Sign returns a signature of the message.
func (p *PrivateKey) Sign(message []byte) []byte {
	return ed25519.Sign(p.key, message)
}

// Verify checks that sig was created by the owner of the public key.
func Verify(pub, message, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), message, sig)
}

// PublicKeyDER wraps a raw ed25519 public key in its DER envelope.
func PublicKeyDER(pub []byte) []byte {
	der := make([]byte, 0, len(ed25519DERPrefix)+len(pub))
	der = append(der, ed25519DERPrefix...)
	return append(der, pub...)
}

// PublicKeyFromDER strips the DER envelope of an ed25519 public key.
func PublicKeyFromDER(der []byte) ([]byte, error) {
	if !bytes.HasPrefix(der, ed25519DERPrefix) || len(der) != len(ed25519DERPrefix)+ed25519.PublicKeySize {
		return nil, errors.Wrap(errors.ErrInput, "not an ed25519 DER public key")
	}
	return der[len(ed25519DERPrefix):], nil
}

// EncodePrivateKey returns the hex encoded seed of the key.
func EncodePrivateKey(p *PrivateKey) string {
	return hex.EncodeToString(p.key.Seed())
}

// DecodePrivateKey reads a hex string created by EncodePrivateKey.
func DecodePrivateKey(hexKey string) (*PrivateKey, error) {
	seed, err := hex.DecodeString(string(bytes.TrimSpace([]byte(hexKey))))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "private key: %s", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(errors.ErrLength, "private key seed of %d bytes", len(seed))
	}
	return PrivKeyEd25519FromSeed(seed), nil
}

// LoadPrivateKey will load a private key from a file, which was previously
// written by SavePrivateKey.
func LoadPrivateKey(filename string) (*PrivateKey, error) {
	raw, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "key file: %s", err)
	}
	return DecodePrivateKey(string(raw))
}

// SavePrivateKey will encode the private key in hex and write to the named
// file. Refuses to overwrite a file unless force is true.
func SavePrivateKey(key *PrivateKey, filename string, force bool) error {
	if !force {
		if _, err := os.Stat(filename); err == nil {
			return errors.Wrapf(errors.ErrDuplicate, "key file %s already exists", filename)
		}
	}
	return ioutil.WriteFile(filename, []byte(EncodePrivateKey(key)), KeyPerm)
}
