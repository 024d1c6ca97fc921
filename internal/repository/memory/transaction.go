package memory

import (
	"context"
	"sync"

	"github.com/cmlabs-edu/eduops-backend/internal/pkg/database"
	"github.com/google/uuid"
)

type journalKey struct{}

// journal collects compensating actions for writes made inside a transaction.
type journal struct {
	mu   sync.Mutex
	undo []func()
}

func (j *journal) add(fn func()) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.undo = append(j.undo, fn)
}

func (j *journal) rollback() {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	j.undo = nil
}

type transactor struct{}

// NewTransactor returns a Transactor for the in-memory repositories. A failed
// unit of work replays the recorded undo actions in reverse order.
func NewTransactor() database.Transactor {
	return transactor{}
}

func (transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(journalKey{}).(*journal); ok {
		return fn(ctx)
	}

	j := &journal{}
	if err := fn(context.WithValue(ctx, journalKey{}, j)); err != nil {
		j.rollback()
		return err
	}
	return nil
}

// onRollback registers fn when ctx carries a transaction.
func onRollback(ctx context.Context, fn func()) {
	if j, ok := ctx.Value(journalKey{}).(*journal); ok {
		j.add(fn)
	}
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
