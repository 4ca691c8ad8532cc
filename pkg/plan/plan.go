package plan

import (
	"time"

	"github.com/google/uuid"
	"github.com/prodplan/prodplan/pkg/capacity"
	"github.com/prodplan/prodplan/pkg/schedule"
)

// Plan is a saved production schedule for one part and customer.
type Plan struct {
	Id           uuid.UUID
	Name         string
	PartName     string
	CustomerName string
	Capacity     capacity.Parameters
	HorizonDays  int
	Slots        []schedule.Slot
	// RemainingStock and PendingShortfall are the figures of the last generation run.
	RemainingStock   int
	PendingShortfall int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Summary struct {
	TotalDemand  int
	TotalPlanned int
	// RequiredHours is the time needed for the total demand, rounded up for display.
	RequiredHours    float64
	ShiftCapacity    int
	Sufficient       bool
	RemainingStock   int
	PendingShortfall int
}

func (p Plan) Summary() Summary {
	totalDemand, totalPlanned := 0, 0
	for _, slot := range p.Slots {
		totalDemand += slot.Delivery
		totalPlanned += slot.Pcs
	}
	return Summary{
		TotalDemand:      totalDemand,
		TotalPlanned:     totalPlanned,
		RequiredHours:    p.Capacity.RequiredHours(totalDemand),
		ShiftCapacity:    p.Capacity.ShiftCapacity(),
		Sufficient:       p.Capacity.Sufficient(totalDemand),
		RemainingStock:   p.RemainingStock,
		PendingShortfall: p.PendingShortfall,
	}
}

func (p Plan) withResult(result schedule.Result) Plan {
	p.Slots = result.Slots
	p.RemainingStock = result.RemainingStock
	p.PendingShortfall = result.PendingShortfall
	return p
}
