// Package transaction provides the atomic-operation framework the Action
// Layer (spec.md §4.3) and Attack Engine (spec.md §4.5) build their
// multi-step game actions on: a list of Operations executed in order, with
// automatic reverse-order rollback the moment one fails.
package transaction

import "context"

// Operation is a single reversible step within a Transaction. Execute
// performs the step; Rollback undoes it using only state captured during
// Execute (an Operation must snapshot whatever it needs before mutating).
type Operation interface {
	Execute(ctx context.Context) error
	Rollback(ctx context.Context) error
	String() string
}
