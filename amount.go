package vault

import (
	"encoding/json"
	"math/big"

	"github.com/keygate/vault/errors"
	"github.com/shopspring/decimal"
)

// Amount is a non-negative quantity of a token expressed in whole units, for
// example "1.5" ether. It is kept in its canonical decimal text form so that
// no precision is lost between the proposal and the ledger call.
type Amount string

// ParseAmount reads a decimal number and returns its canonical form.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", errors.Wrapf(errors.ErrAmount, "%q: %s", s, err)
	}
	if d.IsNegative() {
		return "", errors.Wrapf(errors.ErrAmount, "%q is negative", s)
	}
	return Amount(d.String()), nil
}

// MustParseAmount is like ParseAmount but panics on error.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// AmountFromBaseUnits converts an integer quantity of the smallest unit into
// an Amount, for example wei into ether with decimals 18.
func AmountFromBaseUnits(v *big.Int, decimals int32) Amount {
	return Amount(decimal.NewFromBigInt(v, -decimals).String())
}

// Decimal returns the parsed value.
func (a Amount) Decimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(string(a))
	if err != nil {
		return decimal.Zero, errors.Wrapf(errors.ErrAmount, "%q: %s", string(a), err)
	}
	return d, nil
}

// Validate returns an error if the amount is not a non-negative number.
func (a Amount) Validate() error {
	if a == "" {
		return errors.Wrap(errors.ErrEmpty, "amount")
	}
	d, err := a.Decimal()
	if err != nil {
		return err
	}
	if d.IsNegative() {
		return errors.Wrapf(errors.ErrAmount, "%q is negative", string(a))
	}
	return nil
}

// IsPositive returns true if the amount is greater than zero.
func (a Amount) IsPositive() bool {
	d, err := a.Decimal()
	return err == nil && d.IsPositive()
}

// BaseUnits scales the amount by 10^decimals using integer arithmetic. It
// fails if the result would have a fractional part.
func (a Amount) BaseUnits(decimals int32) (*big.Int, error) {
	d, err := a.Decimal()
	if err != nil {
		return nil, err
	}
	scaled := d.Shift(decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, errors.Wrapf(errors.ErrAmount,
			"%s has more than %d decimal places", string(a), decimals)
	}
	return scaled.BigInt(), nil
}

// UnmarshalJSON accepts both a string and a number.
func (a *Amount) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return errors.Wrap(errors.ErrAmount, "amount must be a string or a number")
		}
		s = n.String()
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
