package vault

import (
	"strings"

	"github.com/keygate/vault/errors"
)

// TokenStandards lists the token contract standards. All contracts of one
// standard are served by the same adapter.
var TokenStandards = []string{"icrc1", "erc20"}

const pathSeparator = ":"

// TokenPath names an asset in the form <network>:<kind>[:<contract>], for
// example "icp:native" or "icp:icrc1:mxzaz-hqaaa-aaaar-qaada-cai".
type TokenPath string

// ParseTokenPath validates the path and returns it unchanged.
func ParseTokenPath(s string) (TokenPath, error) {
	p := TokenPath(s)
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

// Validate returns an error if the path has no segments, an empty segment or
// more than three segments. A three segment path must name a known token
// standard.
func (p TokenPath) Validate() error {
	if p == "" {
		return errors.Wrap(errors.ErrEmpty, "token path")
	}
	segs := p.Segments()
	if len(segs) > 3 {
		return errors.Wrapf(errors.ErrInput, "token path %q has too many segments", string(p))
	}
	for _, s := range segs {
		if s == "" {
			return errors.Wrapf(errors.ErrInput, "token path %q has an empty segment", string(p))
		}
	}
	if len(segs) == 3 && !isTokenStandard(segs[1]) {
		return errors.Wrapf(errors.ErrInput, "unknown token standard %q", segs[1])
	}
	return nil
}

// Segments returns the colon separated parts of the path.
func (p TokenPath) Segments() []string {
	return strings.Split(string(p), pathSeparator)
}

// Network returns the first segment.
func (p TokenPath) Network() string {
	return p.Segments()[0]
}

// Standard returns the token standard of a contract path, or an empty string.
func (p TokenPath) Standard() string {
	segs := p.Segments()
	if len(segs) != 3 {
		return ""
	}
	return segs[1]
}

// Contract returns the contract identifier of a three segment path.
func (p TokenPath) Contract() (string, error) {
	segs := p.Segments()
	if len(segs) != 3 {
		return "", errors.Wrapf(errors.ErrInput, "token path %q names no contract", string(p))
	}
	return segs[2], nil
}

// Key returns the adapter registry key serving the given kind of operation on
// this asset. The contract segment is dropped, so "icp:icrc1:<id>" with a
// transfer maps to "icp:icrc1:transfer".
func (p TokenPath) Key(kind TxKind) string {
	segs := p.Segments()
	if len(segs) == 3 && isTokenStandard(segs[1]) {
		segs = segs[:2]
	}
	return strings.Join(append(segs, string(kind)), pathSeparator)
}

func (p TokenPath) String() string {
	return string(p)
}

func isTokenStandard(s string) bool {
	for _, std := range TokenStandards {
		if s == std {
			return true
		}
	}
	return false
}
