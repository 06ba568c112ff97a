package transaction

import (
	"context"
	"fmt"
	"sync"

	"citytycoon-backend/internal/logger"
)

// Transaction is an ordered list of Operations executed as one atomic unit:
// the first failure rolls back every operation that already succeeded, in
// reverse order.
type Transaction struct {
	operations []Operation
	rolledBack bool
	committed  bool
	mutex      sync.RWMutex
}

func NewTransaction() *Transaction {
	return &Transaction{operations: make([]Operation, 0, 4)}
}

// AddOperation appends an operation. No-op once the transaction has
// finished executing.
func (t *Transaction) AddOperation(op Operation) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if t.committed || t.rolledBack {
		return
	}
	t.operations = append(t.operations, op)
}

// Execute runs every operation in order. On the first failure, it rolls
// back all operations that already succeeded, in reverse order, then
// returns the original error.
func (t *Transaction) Execute(ctx context.Context) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.committed || t.rolledBack {
		return fmt.Errorf("transaction already finished")
	}

	for i, op := range t.operations {
		if err := op.Execute(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				if rollbackErr := t.operations[j].Rollback(ctx); rollbackErr != nil {
					logger.Warn("rollback step failed during transaction unwind")
				}
			}
			t.rolledBack = true
			return fmt.Errorf("operation %d (%s) failed: %w", i, op.String(), err)
		}
	}

	t.committed = true
	return nil
}

// Rollback undoes every executed operation in reverse order. Only valid
// before Execute has committed.
func (t *Transaction) Rollback(ctx context.Context) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.rolledBack {
		return nil
	}
	if t.committed {
		return fmt.Errorf("cannot rollback committed transaction")
	}

	var rollbackErrors []error
	for i := len(t.operations) - 1; i >= 0; i-- {
		if err := t.operations[i].Rollback(ctx); err != nil {
			rollbackErrors = append(rollbackErrors, err)
		}
	}
	t.rolledBack = true

	if len(rollbackErrors) > 0 {
		return fmt.Errorf("rollback completed with errors: %v", rollbackErrors)
	}
	return nil
}

func (t *Transaction) IsCommitted() bool {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.committed
}

func (t *Transaction) IsRolledBack() bool {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.rolledBack
}
