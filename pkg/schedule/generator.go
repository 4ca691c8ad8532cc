package schedule

import (
	"github.com/prodplan/prodplan/pkg/capacity"
	log "github.com/sirupsen/logrus"
)

// Demand maps a day (1-based) to the shift-1 delivery requirement of that day.
type Demand map[int]int

type Config struct {
	HorizonDays int
	// OvertimeEvery is the interval in days at which accumulated shortfall is flushed into overtime.
	OvertimeEvery int
	// OvertimeLeadDays is how many days after the flushing day the overtime slot is dated.
	OvertimeLeadDays int
}

func DefaultConfig() Config {
	return Config{
		HorizonDays:      30,
		OvertimeEvery:    3,
		OvertimeLeadDays: 2,
	}
}

type Result struct {
	Slots          []Slot
	RemainingStock int
	// PendingShortfall is the unmet demand accumulated since the last overtime flush.
	PendingShortfall int
}

type Generator struct {
	cfg Config
}

func NewGenerator(cfg Config) *Generator {
	return &Generator{cfg: cfg}
}

func (g *Generator) HorizonDays() int {
	return g.cfg.HorizonDays
}

// WithHorizon returns a generator that plans over the given number of days.
func (g *Generator) WithHorizon(days int) *Generator {
	cfg := g.cfg
	cfg.HorizonDays = days
	return &Generator{cfg: cfg}
}

// Generate simulates the horizon day by day, splitting each day's production across two shifts
// and inserting overtime slots for the accumulated shortfall.
func (g *Generator) Generate(params capacity.Parameters, demand Demand) Result {
	return g.simulate(params, demand, nil)
}

// override forces the allocation of one slot and carries the resulting delta into
// shift 1 of the following day.
type override struct {
	slotId string
	day    int
	value  int
	delta  int
}

func (g *Generator) simulate(params capacity.Parameters, demand Demand, ov *override) Result {
	horizon := g.cfg.HorizonDays
	shiftCapacity := params.ShiftCapacity()
	remaining := params.InitialStock
	shortfall := 0

	slots := make([]Slot, 0, horizon*2+horizon/max(g.cfg.OvertimeEvery, 1))
	for day := 1; day <= horizon; day++ {
		demandToday := demand[day]

		production := max(min(demandToday, remaining), 0)

		shift1 := max(min(production/2, shiftCapacity, remaining), 0)
		if ov.matches(RegularSlotId(day, ShiftOne)) {
			shift1 = ov.value
		}
		remaining -= shift1

		shift2 := max(min(production-shift1, shiftCapacity, remaining), 0)
		if ov.matches(RegularSlotId(day, ShiftTwo)) {
			shift2 = ov.value
		}
		remaining -= shift2

		if shortfallToday := demandToday - (shift1 + shift2); shortfallToday > 0 {
			shortfall += shortfallToday
		}

		// single hop: the following days keep their own stock bookkeeping
		if ov != nil && ov.day+1 == day {
			shift1 = max(shift1+ov.delta, 0)
		}

		if g.cfg.OvertimeEvery > 0 && day%g.cfg.OvertimeEvery == 0 && shortfall > 0 {
			overtimeDay := day + g.cfg.OvertimeLeadDays
			if overtimeDay <= horizon {
				slot := g.overtimeSlot(params, day, overtimeDay, shortfall)
				if ov.matches(slot.Id) {
					slot.OvertimePcs = ov.value
					slot.Pcs = ov.value
					slot.OvertimeHours = capacity.HoursFromPieces(ov.value, params.TimePerPiece)
				}
				remaining -= slot.OvertimePcs
				slots = append(slots, slot)
			} else {
				log.Debugf("dropping overtime of %d pcs triggered on day %d: day %d is beyond the %d day horizon",
					shortfall, day, overtimeDay, horizon)
			}
			shortfall = 0
		}

		slots = append(slots,
			g.regularSlot(params, day, ShiftOne, demandToday, shift1),
			g.regularSlot(params, day, ShiftTwo, 0, shift2),
		)
	}

	Sort(slots)
	return Result{
		Slots:            slots,
		RemainingStock:   remaining,
		PendingShortfall: shortfall,
	}
}

func (g *Generator) regularSlot(params capacity.Parameters, day int, shift Shift, delivery int, pcs int) Slot {
	return Slot{
		Id:            RegularSlotId(day, shift),
		Day:           day,
		Shift:         shift,
		Delivery:      delivery,
		Pcs:           pcs,
		PlanningPcs:   pcs,
		PlanningHours: capacity.HoursFromPieces(pcs, params.TimePerPiece),
		Status:        StatusNormal,
	}
}

func (g *Generator) overtimeSlot(params capacity.Parameters, triggerDay int, day int, pcs int) Slot {
	return Slot{
		Id:            OvertimeSlotId(triggerDay),
		Day:           day,
		Shift:         ShiftOvertime,
		Pcs:           pcs,
		OvertimePcs:   pcs,
		OvertimeHours: capacity.HoursFromPieces(pcs, params.TimePerPiece),
		Status:        StatusNormal,
		TriggerDay:    triggerDay,
	}
}

func (o *override) matches(slotId string) bool {
	return o != nil && o.slotId == slotId
}
