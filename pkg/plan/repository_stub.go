package plan

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/prodplan/prodplan/pkg/schedule"
)

type RepositoryStub struct {
	mu    sync.RWMutex
	plans map[uuid.UUID]Plan
	// FailReplaceSlots makes ReplaceSlots fail, for exercising rollbacks.
	FailReplaceSlots error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{plans: make(map[uuid.UUID]Plan)}
}

func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	snapshot := make(map[uuid.UUID]Plan, len(r.plans))
	for k, v := range r.plans {
		snapshot[k] = v
	}
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.plans = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *RepositoryStub) ListPlans(ctx context.Context) ([]Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plans := make([]Plan, 0, len(r.plans))
	for _, plan := range r.plans {
		plan.Slots = nil
		plans = append(plans, plan)
	}
	slices.SortFunc(plans, func(a, b Plan) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return plans, nil
}

func (r *RepositoryStub) GetPlan(ctx context.Context, planId uuid.UUID) (Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plan, ok := r.plans[planId]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	plan.Slots = slices.Clone(plan.Slots)
	return plan, nil
}

func (r *RepositoryStub) CreatePlan(ctx context.Context, plan Plan) (Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	plan.Slots = nil
	r.plans[plan.Id] = plan
	return plan, nil
}

func (r *RepositoryStub) UpdatePlan(ctx context.Context, plan Plan) (Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.plans[plan.Id]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	plan.CreatedAt = stored.CreatedAt
	plan.Slots = stored.Slots
	r.plans[plan.Id] = plan
	return plan, nil
}

func (r *RepositoryStub) ReplaceSlots(ctx context.Context, planId uuid.UUID, slots []schedule.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailReplaceSlots != nil {
		return r.FailReplaceSlots
	}
	plan, ok := r.plans[planId]
	if !ok {
		return ErrPlanNotFound
	}
	plan.Slots = slices.Clone(slots)
	r.plans[planId] = plan
	return nil
}

func (r *RepositoryStub) DeletePlan(ctx context.Context, planId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plans[planId]; !ok {
		return ErrPlanNotFound
	}
	delete(r.plans, planId)
	return nil
}

func (r *RepositoryStub) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans = make(map[uuid.UUID]Plan)
	r.FailReplaceSlots = nil
}
