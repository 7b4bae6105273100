package vault

import (
	"bytes"
	"crypto/sha256"
	"encoding/base32"
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
	"strings"

	"github.com/keygate/vault/errors"
)

// MaxPrincipalLength is the longest accepted principal in bytes.
const MaxPrincipalLength = 29

const (
	selfAuthenticatingTag = 0x02
	anonymousTag          = 0x04
)

var principalEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Principal is an opaque identity of a party or an external service. Two
// principals are equal iff their bytes are equal.
type Principal []byte

// SelfAuthenticating returns the principal owned by the holder of the given
// DER encoded public key.
func SelfAuthenticating(derPubKey []byte) Principal {
	h := sha256.Sum224(derPubKey)
	p := make(Principal, 0, len(h)+1)
	p = append(p, h[:]...)
	return append(p, selfAuthenticatingTag)
}

// AnonymousPrincipal returns the principal used for unauthenticated calls.
func AnonymousPrincipal() Principal {
	return Principal{anonymousTag}
}

// IsAnonymous returns true if this is the anonymous principal.
func (p Principal) IsAnonymous() bool {
	return len(p) == 1 && p[0] == anonymousTag
}

// Equals checks if two principals are the same.
func (p Principal) Equals(o Principal) bool {
	return bytes.Equal(p, o)
}

// Validate returns an error if the principal cannot be represented.
func (p Principal) Validate() error {
	if len(p) > MaxPrincipalLength {
		return errors.Wrapf(errors.ErrLength, "principal of %d bytes", len(p))
	}
	return nil
}

// String returns the textual form: lowercase base32 of the big endian CRC32
// of the bytes followed by the bytes, split in groups of five characters.
func (p Principal) String() string {
	raw := make([]byte, 4, 4+len(p))
	binary.BigEndian.PutUint32(raw, crc32.ChecksumIEEE(p))
	raw = append(raw, p...)
	enc := strings.ToLower(principalEncoding.EncodeToString(raw))

	var b strings.Builder
	for i := 0; i < len(enc); i += 5 {
		if i > 0 {
			b.WriteByte('-')
		}
		end := i + 5
		if end > len(enc) {
			end = len(enc)
		}
		b.WriteString(enc[i:end])
	}
	return b.String()
}

// ParsePrincipal decodes the textual form produced by String. The checksum
// is verified and the input must be in its canonical form.
func ParsePrincipal(s string) (Principal, error) {
	raw, err := principalEncoding.DecodeString(strings.ToUpper(strings.Replace(s, "-", "", -1)))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "principal %q: %s", s, err)
	}
	if len(raw) < 4 {
		return nil, errors.Wrapf(errors.ErrLength, "principal %q", s)
	}
	p := Principal(raw[4:])
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if binary.BigEndian.Uint32(raw[:4]) != crc32.ChecksumIEEE(p) {
		return nil, errors.Wrapf(errors.ErrChecksum, "principal %q", s)
	}
	if p.String() != s {
		return nil, errors.Wrapf(errors.ErrInput, "principal %q is not in canonical form", s)
	}
	return p, nil
}

// MustParsePrincipal is like ParsePrincipal but panics on error.
func MustParsePrincipal(s string) Principal {
	p, err := ParsePrincipal(s)
	if err != nil {
		panic(err)
	}
	return p
}

// MarshalJSON encodes the principal using its textual form.
func (p Principal) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes the textual form of a principal.
func (p *Principal) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInput, "principal must be a string")
	}
	parsed, err := ParsePrincipal(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalYAML encodes the principal using its textual form.
func (p Principal) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

// UnmarshalText allows principals to be used as flag values and map keys.
func (p *Principal) UnmarshalText(text []byte) error {
	parsed, err := ParsePrincipal(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ContainsPrincipal returns true if p is an element of the list.
func ContainsPrincipal(list []Principal, p Principal) bool {
	for _, el := range list {
		if el.Equals(p) {
			return true
		}
	}
	return false
}
