package ledger

import (
	"fmt"

	"github.com/prodplan/prodplan/pkg/schedule"
)

// Variant selects how a stock series consumes production figures.
type Variant int

const (
	// VariantTheoretical moves stock by realized output against delivery demand.
	VariantTheoretical Variant = iota
	// VariantPlanned always consumes planning plus overtime figures.
	VariantPlanned
	// VariantActual consumes realized output, falling back to planned figures
	// when no output was recorded.
	VariantActual
)

func (v Variant) String() string {
	switch v {
	case VariantTheoretical:
		return "theoretical"
	case VariantPlanned:
		return "planned"
	case VariantActual:
		return "actual"
	default:
		return "unknown"
	}
}

func ParseVariant(s string) (Variant, error) {
	switch s {
	case "theoretical":
		return VariantTheoretical, nil
	case "planned", "rencana":
		return VariantPlanned, nil
	case "actual", "aktual":
		return VariantActual, nil
	default:
		return 0, fmt.Errorf("unknown ledger variant: %q", s)
	}
}

type Input struct {
	InitialStock int
	Days         int
	Slots        []schedule.Slot
	// InMaterial is the planned material inflow, AktualInMaterial the recorded one.
	InMaterial       Matrix
	AktualInMaterial Matrix
}

// Ledger holds every series a period view can select from.
type Ledger struct {
	Days int
	// InMaterialStock and AktualInMaterialStock apply the actual-output rule to the planned
	// and the recorded inflow.
	InMaterialStock       []int
	AktualInMaterialStock []int
	// Theoretical ignores material inflow and planned figures.
	Theoretical []int
	// Rencana consumes planned figures only, against the planned inflow.
	Rencana               []int
	TotalInMaterial       int
	TotalAktualInMaterial int
}

// position aggregates the production figures of every slot that lands on one series index.
type position struct {
	output   int
	planned  int
	overtime int
	demand   int
}

func positions(slots []schedule.Slot, days int) []position {
	result := make([]position, days*2)
	for _, slot := range slots {
		if slot.Day < 1 || slot.Day > days {
			continue
		}
		p := &result[slot.Index()]
		p.output += slot.ActualPcs
		p.planned += slot.PlanningPcs
		p.overtime += slot.OvertimePcs
		p.demand += slot.Delivery
	}
	return result
}

// Series computes one cascading stock series. Each value is the previous value (or the
// initial stock at index 0) plus what flows in minus what is consumed at that index.
func Series(in Input, variant Variant, inflow Matrix) []int {
	days := max(in.Days, 0)
	figures := positions(in.Slots, days)
	series := make([]int, len(figures))

	previous := in.InitialStock
	for i, p := range figures {
		var value int
		switch variant {
		case VariantTheoretical:
			value = previous + p.output - p.demand
		case VariantPlanned:
			value = previous + inflow.At(i) - (p.planned + p.overtime)
		default:
			if p.output == 0 {
				value = previous + inflow.At(i) - (p.planned + p.overtime)
			} else {
				value = previous + inflow.At(i) - p.output
			}
		}
		series[i] = value
		previous = value
	}
	return series
}

func Build(in Input) Ledger {
	inMaterial := Normalize(in.InMaterial, in.Days)
	aktualInMaterial := Normalize(in.AktualInMaterial, in.Days)
	return Ledger{
		Days:                  max(in.Days, 0),
		InMaterialStock:       Series(in, VariantActual, inMaterial),
		AktualInMaterialStock: Series(in, VariantActual, aktualInMaterial),
		Theoretical:           Series(in, VariantTheoretical, nil),
		Rencana:               Series(in, VariantPlanned, inMaterial),
		TotalInMaterial:       inMaterial.Total(),
		TotalAktualInMaterial: aktualInMaterial.Total(),
	}
}
