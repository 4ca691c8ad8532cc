package material

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/prodplan/prodplan/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

// HorizonReader returns the number of planned days of a plan, or ErrPlanNotFound.
type HorizonReader func(ctx context.Context, planId uuid.UUID) (int, error)

type Service interface {
	// GetInflow returns both inflow matrices with exactly as many rows as the plan has days.
	GetInflow(ctx context.Context, planId uuid.UUID) (Inflow, error)
	SetCell(ctx context.Context, planId uuid.UUID, cell Cell) (Inflow, error)
}

type ServiceImpl struct {
	repo    Repository
	horizon HorizonReader
}

func NewService(repo Repository, horizon HorizonReader, eventBus *event_bus.EventBus) Service {
	service := &ServiceImpl{repo: repo, horizon: horizon}
	event_bus.SubscribeTyped[event_bus.PlanHorizonChanged](
		eventBus,
		event_bus.PlanHorizonChangedType,
		func(e event_bus.EventT[event_bus.PlanHorizonChanged]) error {
			log.Debugf("received plan horizon changed event: %+v", e.Data)
			deleted, err := service.handleHorizonChanged(e.Context(), e.Data)
			if err != nil {
				log.Errorf("failed to trim material inflow: %v", err)
				return err
			}
			log.Debugf("deleted material cells beyond the horizon: %d", deleted)
			return nil
		},
	)
	return service
}

func (s *ServiceImpl) GetInflow(ctx context.Context, planId uuid.UUID) (Inflow, error) {
	days, err := s.horizon(ctx, planId)
	if err != nil {
		return Inflow{}, err
	}
	inflow, err := s.repo.GetInflow(ctx, planId)
	if err != nil {
		return Inflow{}, fmt.Errorf("failed to load material inflow: %w", err)
	}
	return inflow.Normalize(days), nil
}

func (s *ServiceImpl) SetCell(ctx context.Context, planId uuid.UUID, cell Cell) (Inflow, error) {
	days, err := s.horizon(ctx, planId)
	if err != nil {
		return Inflow{}, err
	}
	if err := cell.Validate(days); err != nil {
		return Inflow{}, err
	}

	var inflow Inflow
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		if err := repo.SetCell(ctx, planId, cell); err != nil {
			return err
		}
		stored, getErr := repo.GetInflow(ctx, planId)
		inflow = stored
		return getErr
	})
	if err != nil {
		return Inflow{}, fmt.Errorf("failed to store material cell: %w", err)
	}
	return inflow.Normalize(days), nil
}

func (s *ServiceImpl) handleHorizonChanged(ctx context.Context, event event_bus.PlanHorizonChanged) (int, error) {
	if event.HorizonDays >= event.PreviousHorizon {
		return 0, nil
	}
	return s.repo.DeleteFromDay(ctx, event.PlanId, event.HorizonDays)
}
