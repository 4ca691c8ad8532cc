package event_bus

import "github.com/google/uuid"

const PlanHorizonChangedType EventType = "plan.horizon.changed"

// PlanHorizonChanged is published after a plan was stored with a different number of days.
type PlanHorizonChanged struct {
	PlanId          uuid.UUID
	PreviousHorizon int
	HorizonDays     int
}
