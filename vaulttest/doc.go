// Package vaulttest provides fixtures shared by the vault tests.
package vaulttest
