package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prodplan/prodplan/internal/config"
	"github.com/prodplan/prodplan/internal/event_bus"
	"github.com/prodplan/prodplan/internal/utils"
	"github.com/prodplan/prodplan/pkg/material"
	"github.com/prodplan/prodplan/pkg/plan"
	"github.com/prodplan/prodplan/pkg/report"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Clock    utils.Clock

	PlanRepo    plan.Repository
	PlanService plan.Service
	PlanHandler *plan.Handler

	MaterialRepo    material.Repository
	MaterialService material.Service
	MaterialHandler *material.Handler

	CsvRenderer *report.CsvRendererImpl
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) *Dependencies {
	return buildDependencies(plan.NewRepo(db), material.NewRepo(db), cfg)
}

func buildDependencies(planRepo plan.Repository, materialRepo material.Repository, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}
	deps.CsvRenderer = report.NewCsvRenderer()

	deps.PlanRepo = planRepo
	deps.MaterialRepo = materialRepo
	deps.MaterialService = material.NewService(deps.MaterialRepo, plan.MaterialHorizon(deps.PlanRepo), deps.EventBus)
	deps.MaterialHandler = material.NewHandler(deps.MaterialService)

	deps.PlanService = plan.NewService(deps.PlanRepo, deps.MaterialService, deps.EventBus, deps.Clock, cfg.Planning)
	deps.PlanHandler = plan.NewHandler(deps.PlanService, deps.CsvRenderer)

	return deps
}
