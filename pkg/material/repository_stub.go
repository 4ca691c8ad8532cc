package material

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type cellKey struct {
	planId uuid.UUID
	kind   Kind
	day    int
	shift  int
}

type RepositoryStub struct {
	mu    sync.RWMutex
	cells map[cellKey]int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{cells: make(map[cellKey]int)}
}

func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	snapshot := make(map[cellKey]int, len(r.cells))
	for k, v := range r.cells {
		snapshot[k] = v
	}
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.cells = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *RepositoryStub) GetInflow(ctx context.Context, planId uuid.UUID) (Inflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var cells []Cell
	for key, quantity := range r.cells {
		if key.planId != planId {
			continue
		}
		q := quantity
		cells = append(cells, Cell{Kind: key.kind, Day: key.day, Shift: key.shift, Quantity: &q})
	}
	return inflowFromCells(planId, cells), nil
}

func (r *RepositoryStub) SetCell(ctx context.Context, planId uuid.UUID, cell Cell) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cellKey{planId: planId, kind: cell.Kind, day: cell.Day, shift: cell.Shift}
	if cell.Quantity == nil {
		delete(r.cells, key)
		return nil
	}
	r.cells[key] = *cell.Quantity
	return nil
}

func (r *RepositoryStub) DeleteFromDay(ctx context.Context, planId uuid.UUID, day int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for key := range r.cells {
		if key.planId == planId && key.day >= day {
			delete(r.cells, key)
			deleted++
		}
	}
	return deleted, nil
}

func (r *RepositoryStub) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cells = make(map[cellKey]int)
}
