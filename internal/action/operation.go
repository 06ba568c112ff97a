package action

import (
	"context"

	"citytycoon-backend/internal/transaction"
)

// step adapts a pair of closures to the transaction.Operation interface, so
// each Action-Layer method can describe its mutations inline instead of
// declaring a named type per operation.
type step struct {
	name     string
	execute  func(ctx context.Context) error
	rollback func(ctx context.Context) error
}

var _ transaction.Operation = (*step)(nil)

func (s *step) Execute(ctx context.Context) error  { return s.execute(ctx) }
func (s *step) Rollback(ctx context.Context) error { return s.rollback(ctx) }
func (s *step) String() string                     { return s.name }

// noRollback is used by steps whose failure mode can never leave partial
// state behind (pure validation checks with no mutation).
func noRollback(ctx context.Context) error { return nil }
