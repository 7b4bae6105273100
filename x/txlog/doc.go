// Package txlog is the append-only history of executed transactions.
package txlog
