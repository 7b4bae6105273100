package ledger

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
	"github.com/keygate/vault/vaulttest"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseAccount(t *testing.T) {
	owner := vaulttest.SequencePrincipal(9)

	Convey("Token ledger accounts", t, func() {
		Convey("a bare principal uses the default subaccount", func() {
			acc, err := ParseAccount(owner.String())
			So(err, ShouldBeNil)
			So(acc.Owner.Equals(owner), ShouldBeTrue)
			So(acc.Subaccount.IsDefault(), ShouldBeTrue)
			So(acc.String(), ShouldEqual, owner.String())
		})

		Convey("a hex subaccount follows the dot", func() {
			sub := vault.NewSubaccount(5)
			text := owner.String() + "." + hex.EncodeToString(sub.Bytes())
			acc, err := ParseAccount(text)
			So(err, ShouldBeNil)
			So(acc.Subaccount, ShouldEqual, sub)
			So(acc.String(), ShouldEqual, text)
			So(acc.Identifier().Equals(vault.NewAccountIdentifier(owner, sub)), ShouldBeTrue)
		})

		Convey("malformed input is rejected", func() {
			_, err := ParseAccount("not-a-principal")
			So(err, ShouldNotBeNil)

			_, err = ParseAccount(owner.String() + ".zz")
			So(errors.ErrInput.Is(err), ShouldBeTrue)

			_, err = ParseAccount(owner.String() + "." + strings.Repeat("00", 31))
			So(errors.ErrLength.Is(err), ShouldBeTrue)
		})
	})
}
