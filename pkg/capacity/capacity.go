package capacity

import (
	"math"

	"github.com/shopspring/decimal"
)

const DefaultShiftDurationHours = 7.0

const secondsPerHour = 3600.0

// Parameters are fixed for one planning run.
type Parameters struct {
	// TimePerPiece is the cycle time of one piece in seconds.
	TimePerPiece float64
	// ManpowerCount is the number of operators on the shift. Values below 1 count as 1.
	ManpowerCount      int
	ShiftDurationHours float64
	// PlanningHours and OvertimeHours are the hour budgets available for regular and overtime work.
	PlanningHours float64
	OvertimeHours float64
	// InitialStock is the number of pieces available before day 1.
	InitialStock int
}

// ShiftCapacity returns the maximum output of a single shift. A zero, negative or
// non-finite cycle time yields 0 instead of an error.
func ShiftCapacity(timePerPiece float64, manpowerCount int, shiftDurationHours float64) int {
	if !validTimePerPiece(timePerPiece) {
		return 0
	}
	if manpowerCount < 1 {
		manpowerCount = 1
	}
	perPiece := timePerPiece / float64(manpowerCount)
	return floorPieces(shiftDurationHours * secondsPerHour / perPiece)
}

// PiecesFromHours converts an hour budget into whole pieces, always rounding down.
func PiecesFromHours(hours float64, timePerPiece float64) int {
	if !validTimePerPiece(timePerPiece) {
		return 0
	}
	return floorPieces(hours * secondsPerHour / timePerPiece)
}

// HoursFromPieces back-derives the hour budget for a manually entered piece count.
// The result is not rounded.
func HoursFromPieces(pieces int, timePerPiece float64) float64 {
	if !validTimePerPiece(timePerPiece) {
		return 0
	}
	return float64(pieces) * timePerPiece / secondsPerHour
}

// DisplayHours rounds hours up to one decimal place. It is the opposite direction of
// PiecesFromHours, which floors; capacity checks rely on the two never being swapped.
func DisplayHours(hours float64) float64 {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return 0
	}
	return decimal.NewFromFloat(hours).RoundCeil(1).InexactFloat64()
}

func (p Parameters) ShiftCapacity() int {
	duration := p.ShiftDurationHours
	if duration == 0 {
		duration = DefaultShiftDurationHours
	}
	return ShiftCapacity(p.TimePerPiece, p.ManpowerCount, duration)
}

func (p Parameters) PlanningPieces() int {
	return PiecesFromHours(p.PlanningHours, p.TimePerPiece)
}

func (p Parameters) OvertimePieces() int {
	return PiecesFromHours(p.OvertimeHours, p.TimePerPiece)
}

// RequiredHours is the display-rounded number of hours needed to produce pieces.
func (p Parameters) RequiredHours(pieces int) float64 {
	return DisplayHours(HoursFromPieces(pieces, p.TimePerPiece))
}

// Sufficient reports whether the planning and overtime budgets cover pieces.
func (p Parameters) Sufficient(pieces int) bool {
	return p.RequiredHours(pieces) <= p.PlanningHours+p.OvertimeHours
}

func validTimePerPiece(timePerPiece float64) bool {
	return timePerPiece > 0 && !math.IsInf(timePerPiece, 0) && !math.IsNaN(timePerPiece)
}

func floorPieces(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Floor(v))
}
