package vaulttest

import (
	"strings"
	"testing"

	"github.com/keygate/vault"
)

// AssertStatus fails the test unless the status has the wanted code and its
// message contains msg.
func AssertStatus(t testing.TB, code vault.StatusCode, msg string, got vault.IntentStatus) {
	t.Helper()
	if got.Code != code {
		t.Fatalf("want a %s status, got %s", code, got)
	}
	if !strings.Contains(got.Message, msg) {
		t.Fatalf("want a %s status mentioning %q, got %q", code, msg, got.Message)
	}
}

// AssertPrincipals fails the test unless both lists hold the same principals
// in the same order.
func AssertPrincipals(t testing.TB, want, got []vault.Principal) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("want %d principals, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if !want[i].Equals(got[i]) {
			t.Fatalf("principal #%d: want %s, got %s", i, want[i], got[i])
		}
	}
}
