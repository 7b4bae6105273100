// Package threshold stores the number of approvals a proposal needs before
// it can be executed.
package threshold
