package plan

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/prodplan/prodplan/internal/config"
	"github.com/prodplan/prodplan/internal/event_bus"
	"github.com/prodplan/prodplan/internal/utils"
	"github.com/prodplan/prodplan/pkg/ledger"
	"github.com/prodplan/prodplan/pkg/material"
	"github.com/prodplan/prodplan/pkg/schedule"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidPlan = errors.New("invalid plan")

// InflowReader supplies the material inflow matrices of a plan, normalized to its horizon.
type InflowReader interface {
	GetInflow(ctx context.Context, planId uuid.UUID) (material.Inflow, error)
}

type Service interface {
	ListPlans(ctx context.Context) ([]Plan, error)
	GetPlan(ctx context.Context, planId uuid.UUID) (Plan, error)
	// CreatePlan generates the schedule of a new plan from the given deliveries and stores both.
	CreatePlan(ctx context.Context, plan Plan, demand schedule.Demand) (Plan, error)
	// UpdatePlan stores new names, capacity and horizon and regenerates the schedule from the
	// stored deliveries. Status, actual output and notes of surviving slots are kept.
	UpdatePlan(ctx context.Context, plan Plan) (Plan, error)
	DeletePlan(ctx context.Context, planId uuid.UUID) error
	EditSlot(ctx context.Context, planId uuid.UUID, edit schedule.Edit) (Plan, error)
	GetLedger(ctx context.Context, planId uuid.UUID) (ledger.Ledger, error)
}

type ServiceImpl struct {
	repo      Repository
	inflow    InflowReader
	eventBus  *event_bus.EventBus
	clock     utils.Clock
	generator *schedule.Generator
	defaults  config.Planning
}

func NewService(repo Repository, inflow InflowReader, eventBus *event_bus.EventBus, clock utils.Clock, planning config.Planning) Service {
	generator := schedule.NewGenerator(schedule.Config{
		HorizonDays:      planning.HorizonDays,
		OvertimeEvery:    planning.OvertimeEvery,
		OvertimeLeadDays: planning.OvertimeLeadDays,
	})
	return &ServiceImpl{
		repo:      repo,
		inflow:    inflow,
		eventBus:  eventBus,
		clock:     clock,
		generator: generator,
		defaults:  planning,
	}
}

func (s *ServiceImpl) ListPlans(ctx context.Context) ([]Plan, error) {
	return s.repo.ListPlans(ctx)
}

func (s *ServiceImpl) GetPlan(ctx context.Context, planId uuid.UUID) (Plan, error) {
	return s.repo.GetPlan(ctx, planId)
}

func (s *ServiceImpl) CreatePlan(ctx context.Context, plan Plan, demand schedule.Demand) (Plan, error) {
	plan, err := s.withDefaults(plan)
	if err != nil {
		return Plan{}, err
	}
	now := s.clock.Now()
	plan.Id = uuid.New()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	plan = plan.withResult(s.generator.WithHorizon(plan.HorizonDays).Generate(plan.Capacity, demand))

	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		if _, err := repo.CreatePlan(ctx, plan); err != nil {
			return err
		}
		return repo.ReplaceSlots(ctx, plan.Id, plan.Slots)
	})
	if err != nil {
		return Plan{}, fmt.Errorf("failed to create plan: %w", err)
	}
	log.Infof("Created plan %s with %d slots over %d days", plan.Id, len(plan.Slots), plan.HorizonDays)
	return plan, nil
}

func (s *ServiceImpl) UpdatePlan(ctx context.Context, plan Plan) (Plan, error) {
	var updated Plan
	var previousHorizon int
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		stored, err := repo.GetPlan(ctx, plan.Id)
		if err != nil {
			return err
		}
		previousHorizon = stored.HorizonDays
		if plan.HorizonDays <= 0 {
			plan.HorizonDays = stored.HorizonDays
		}
		plan, err = s.withDefaults(plan)
		if err != nil {
			return err
		}

		plan.CreatedAt = stored.CreatedAt
		plan.UpdatedAt = s.clock.Now()
		plan = plan.withResult(s.generator.WithHorizon(plan.HorizonDays).Regenerate(plan.Capacity, stored.Slots))

		if _, err := repo.UpdatePlan(ctx, plan); err != nil {
			return err
		}
		updated = plan
		return repo.ReplaceSlots(ctx, plan.Id, plan.Slots)
	})
	if err != nil {
		return Plan{}, fmt.Errorf("failed to update plan: %w", err)
	}

	if updated.HorizonDays != previousHorizon {
		// The plan is already committed. A failed subscriber leaves stale inflow cells beyond
		// the horizon, which reads ignore and the next horizon change removes.
		err = s.eventBus.Publish(event_bus.NewEvent(
			ctx,
			event_bus.PlanHorizonChangedType,
			event_bus.PlanHorizonChanged{
				PlanId:          updated.Id,
				PreviousHorizon: previousHorizon,
				HorizonDays:     updated.HorizonDays,
			},
		))
		if err != nil {
			log.Errorf("failed to publish horizon change of plan %s: %v", updated.Id, err)
		}
	}
	return updated, nil
}

func (s *ServiceImpl) DeletePlan(ctx context.Context, planId uuid.UUID) error {
	return s.repo.DeletePlan(ctx, planId)
}

func (s *ServiceImpl) EditSlot(ctx context.Context, planId uuid.UUID, edit schedule.Edit) (Plan, error) {
	var updated Plan
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		plan, err := repo.GetPlan(ctx, planId)
		if err != nil {
			return err
		}
		result, err := s.generator.WithHorizon(plan.HorizonDays).Recalculate(plan.Capacity, plan.Slots, edit)
		if err != nil {
			return err
		}
		plan = plan.withResult(result)
		plan.UpdatedAt = s.clock.Now()

		if _, err := repo.UpdatePlan(ctx, plan); err != nil {
			return err
		}
		updated = plan
		return repo.ReplaceSlots(ctx, plan.Id, plan.Slots)
	})
	if err != nil {
		return Plan{}, fmt.Errorf("failed to edit slot %s: %w", edit.SlotId, err)
	}
	log.Debugf("Applied %s edit on slot %s of plan %s", edit.Field, edit.SlotId, planId)
	return updated, nil
}

func (s *ServiceImpl) GetLedger(ctx context.Context, planId uuid.UUID) (ledger.Ledger, error) {
	plan, err := s.repo.GetPlan(ctx, planId)
	if err != nil {
		return ledger.Ledger{}, err
	}
	inflow, err := s.inflow.GetInflow(ctx, planId)
	if err != nil {
		return ledger.Ledger{}, fmt.Errorf("failed to load material inflow: %w", err)
	}
	return ledger.Build(ledger.Input{
		InitialStock:     plan.Capacity.InitialStock,
		Days:             plan.HorizonDays,
		Slots:            plan.Slots,
		InMaterial:       inflow.InMaterial,
		AktualInMaterial: inflow.AktualInMaterial,
	}), nil
}

func (s *ServiceImpl) withDefaults(plan Plan) (Plan, error) {
	if plan.Name == "" {
		return Plan{}, fmt.Errorf("%w: name is required", ErrInvalidPlan)
	}
	if plan.HorizonDays <= 0 {
		plan.HorizonDays = s.generator.HorizonDays()
	}
	if plan.Capacity.ShiftDurationHours <= 0 {
		plan.Capacity.ShiftDurationHours = s.defaults.ShiftDurationHours
	}
	plan.Capacity.ManpowerCount = max(plan.Capacity.ManpowerCount, 1)
	return plan, nil
}

// MaterialHorizon reads plan horizons for the material service.
func MaterialHorizon(repo Repository) material.HorizonReader {
	return func(ctx context.Context, planId uuid.UUID) (int, error) {
		plan, err := repo.GetPlan(ctx, planId)
		if errors.Is(err, ErrPlanNotFound) {
			return 0, fmt.Errorf("%w: %s", material.ErrPlanNotFound, planId)
		}
		if err != nil {
			return 0, err
		}
		return plan.HorizonDays, nil
	}
}
