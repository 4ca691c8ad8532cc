package schedule

import (
	"cmp"
	"fmt"
	"slices"
)

type Shift string

const (
	ShiftOne      Shift = "1"
	ShiftTwo      Shift = "2"
	ShiftOvertime Shift = "OT"
)

// Index returns the 0-based column of the shift within a day. Overtime shares the second column.
func (s Shift) Index() int {
	if s == ShiftOne {
		return 0
	}
	return 1
}

type Status string

const (
	StatusNormal    Status = "normal"
	StatusDisrupted Status = "disrupted"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNormal, StatusDisrupted, StatusCompleted:
		return true
	default:
		return false
	}
}

// Slot is one unit of scheduled work: a regular shift of a day or an inserted overtime task.
type Slot struct {
	Id    string
	Day   int
	Shift Shift
	// Delivery is the customer requirement of the day. Only shift 1 carries it.
	Delivery int
	// Pcs is the output allocated to the slot by the generator.
	Pcs           int
	PlanningPcs   int
	PlanningHours float64
	OvertimePcs   int
	OvertimeHours float64
	// ActualPcs is the realized output entered by the user.
	ActualPcs int
	Status    Status
	Notes     string
	// Adjustment is the delta applied by the most recent edit of this slot. Display only.
	Adjustment int
	// TriggerDay is the day whose accumulated shortfall produced an overtime slot.
	TriggerDay int
}

func (s Slot) IsOvertime() bool {
	return s.Shift == ShiftOvertime
}

// Index is the position of the slot in a ledger series: (day-1)*2 + shift column.
func (s Slot) Index() int {
	return (s.Day-1)*2 + s.Shift.Index()
}

func RegularSlotId(day int, shift Shift) string {
	return fmt.Sprintf("%d-%s", day, shift)
}

func OvertimeSlotId(triggerDay int) string {
	return fmt.Sprintf("ot-%d", triggerDay)
}

// Sort orders slots by day, then by shift label. "OT" sorts after "1" and "2".
func Sort(slots []Slot) {
	slices.SortStableFunc(slots, func(a, b Slot) int {
		if c := cmp.Compare(a.Day, b.Day); c != 0 {
			return c
		}
		return cmp.Compare(a.Shift, b.Shift)
	})
}

// FindSlot returns the slot with the given id.
func FindSlot(slots []Slot, id string) (Slot, bool) {
	for _, slot := range slots {
		if slot.Id == id {
			return slot, true
		}
	}
	return Slot{}, false
}

// DemandFromSlots collects the shift-1 deliveries of a schedule, keyed by day.
func DemandFromSlots(slots []Slot) Demand {
	demand := make(Demand)
	for _, slot := range slots {
		if slot.Shift == ShiftOne && slot.Delivery != 0 {
			demand[slot.Day] = slot.Delivery
		}
	}
	return demand
}
