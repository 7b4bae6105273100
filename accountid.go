package vault

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"hash/crc32"

	"github.com/keygate/vault/errors"
)

const (
	// SubaccountLength is the size of a subaccount selector.
	SubaccountLength = 32

	// AccountIdentifierLength is the size of the checksummed account
	// identifier.
	AccountIdentifierLength = 32

	accountHashLength = sha256.Size224
	checksumLength    = AccountIdentifierLength - accountHashLength
)

// accountDomainSeparator is the length prefixed "account-id" label mixed into
// every account hash.
var accountDomainSeparator = []byte("\x0Aaccount-id")

// Subaccount selects one of many holding accounts of the same owner.
type Subaccount [SubaccountLength]byte

// DefaultSubaccount is the all zero selector.
var DefaultSubaccount Subaccount

// NewSubaccount returns the subaccount for the given nonce. The nonce is
// stored big endian in the last four bytes, all other bytes are zero.
func NewSubaccount(nonce uint32) Subaccount {
	var s Subaccount
	binary.BigEndian.PutUint32(s[SubaccountLength-4:], nonce)
	return s
}

// ParseSubaccount reads a 32 byte selector.
func ParseSubaccount(raw []byte) (Subaccount, error) {
	var s Subaccount
	if len(raw) != SubaccountLength {
		return s, errors.Wrapf(errors.ErrLength, "subaccount of %d bytes", len(raw))
	}
	copy(s[:], raw)
	return s, nil
}

// Nonce returns the nonce encoded in the last four bytes.
func (s Subaccount) Nonce() uint32 {
	return binary.BigEndian.Uint32(s[SubaccountLength-4:])
}

// IsDefault returns true for the all zero selector.
func (s Subaccount) IsDefault() bool {
	return s == DefaultSubaccount
}

// Bytes returns a copy of the selector.
func (s Subaccount) Bytes() []byte {
	return append([]byte(nil), s[:]...)
}

func (s Subaccount) String() string {
	return hex.EncodeToString(s[:])
}

// AccountIdentifier is the external address of a holding account, derived
// from the owner principal and a subaccount.
type AccountIdentifier struct {
	hash [accountHashLength]byte
}

// NewAccountIdentifier derives the account of the given owner and
// subaccount.
func NewAccountIdentifier(owner Principal, sub Subaccount) AccountIdentifier {
	h := sha256.New224()
	h.Write(accountDomainSeparator)
	h.Write(owner)
	h.Write(sub[:])

	var id AccountIdentifier
	copy(id.hash[:], h.Sum(nil))
	return id
}

// ParseAccountIdentifier accepts either the 32 byte checksummed form, which
// is validated, or the bare 28 byte hash, which is not.
func ParseAccountIdentifier(raw []byte) (AccountIdentifier, error) {
	var id AccountIdentifier
	switch len(raw) {
	case AccountIdentifierLength:
		copy(id.hash[:], raw[checksumLength:])
		if want := id.checksum(); !bytes.Equal(want[:], raw[:checksumLength]) {
			return id, errors.Wrapf(errors.ErrChecksum,
				"account identifier checksum %x, expected %x", raw[:checksumLength], want)
		}
	case accountHashLength:
		copy(id.hash[:], raw)
	default:
		return id, errors.Wrapf(errors.ErrLength, "account identifier of %d bytes", len(raw))
	}
	return id, nil
}

// ParseAccountIdentifierHex decodes a hex encoded account identifier.
func ParseAccountIdentifierHex(s string) (AccountIdentifier, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return AccountIdentifier{}, errors.Wrapf(errors.ErrInput, "account identifier %q: %s", s, err)
	}
	return ParseAccountIdentifier(raw)
}

func (id AccountIdentifier) checksum() [checksumLength]byte {
	var c [checksumLength]byte
	binary.BigEndian.PutUint32(c[:], crc32.ChecksumIEEE(id.hash[:]))
	return c
}

// Bytes returns the checksummed 32 byte form.
func (id AccountIdentifier) Bytes() []byte {
	c := id.checksum()
	raw := make([]byte, 0, AccountIdentifierLength)
	raw = append(raw, c[:]...)
	return append(raw, id.hash[:]...)
}

// Hash returns the 28 byte hash without the checksum.
func (id AccountIdentifier) Hash() []byte {
	return append([]byte(nil), id.hash[:]...)
}

// Hex returns the lowercase hex encoding of the checksummed form.
func (id AccountIdentifier) Hex() string {
	return hex.EncodeToString(id.Bytes())
}

func (id AccountIdentifier) String() string {
	return id.Hex()
}

// Equals checks if two identifiers address the same account.
func (id AccountIdentifier) Equals(o AccountIdentifier) bool {
	return id.hash == o.hash
}

// MarshalJSON encodes the identifier as a hex string.
func (id AccountIdentifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.Hex())
}

// UnmarshalJSON decodes a hex string, validating the checksum.
func (id *AccountIdentifier) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInput, "account identifier must be a string")
	}
	parsed, err := ParseAccountIdentifierHex(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
