package ledger

import (
	"testing"

	"github.com/prodplan/prodplan/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qty(v int) *int {
	return &v
}

func TestSeries_ZeroOutputUsesPlannedFigures(t *testing.T) {
	in := Input{
		InitialStock: 0,
		Days:         1,
		Slots: []schedule.Slot{
			{Id: "1-1", Day: 1, Shift: schedule.ShiftOne, PlanningPcs: 20, OvertimePcs: 5},
		},
	}
	inflow := Matrix{{qty(10), nil}}

	series := Series(in, VariantActual, inflow)

	require.Len(t, series, 2)
	assert.Equal(t, -15, series[0])
	assert.Equal(t, -15, series[1])
}

func TestSeries_RecordedOutputReplacesPlannedFigures(t *testing.T) {
	in := Input{
		InitialStock: 100,
		Days:         1,
		Slots: []schedule.Slot{
			{Id: "1-1", Day: 1, Shift: schedule.ShiftOne, PlanningPcs: 20, OvertimePcs: 5, ActualPcs: 12},
			{Id: "1-2", Day: 1, Shift: schedule.ShiftTwo, PlanningPcs: 30},
		},
	}
	inflow := Matrix{{qty(10), qty(4)}}

	assert.Equal(t, []int{98, 72}, Series(in, VariantActual, inflow))
	assert.Equal(t, []int{85, 59}, Series(in, VariantPlanned, inflow), "planned figures ignore recorded output")
}

func TestSeries_Theoretical(t *testing.T) {
	in := Input{
		InitialStock: 50,
		Days:         2,
		Slots: []schedule.Slot{
			{Id: "1-1", Day: 1, Shift: schedule.ShiftOne, Delivery: 30, ActualPcs: 10, PlanningPcs: 99},
			{Id: "1-2", Day: 1, Shift: schedule.ShiftTwo, ActualPcs: 15},
			{Id: "2-1", Day: 2, Shift: schedule.ShiftOne, Delivery: 40},
		},
	}

	series := Series(in, VariantTheoretical, Matrix{{qty(1000), qty(1000)}})

	assert.Equal(t, []int{30, 45, 5, 5}, series)
}

func TestSeries_CascadeProperty(t *testing.T) {
	var slots []schedule.Slot
	inflow := NewMatrix(10)
	for day := 1; day <= 10; day++ {
		for _, shift := range []schedule.Shift{schedule.ShiftOne, schedule.ShiftTwo} {
			slot := schedule.Slot{
				Id:          schedule.RegularSlotId(day, shift),
				Day:         day,
				Shift:       shift,
				PlanningPcs: 10 + day,
			}
			if day%3 == 0 {
				slot.ActualPcs = 7 * day
			}
			slots = append(slots, slot)
		}
		if day%2 == 0 {
			inflow[day-1][0] = qty(25)
		}
	}
	slots = append(slots, schedule.Slot{Id: "ot-3", Day: 5, Shift: schedule.ShiftOvertime, OvertimePcs: 9})
	in := Input{InitialStock: 40, Days: 10, Slots: slots}

	series := Series(in, VariantActual, inflow)
	figures := positions(slots, 10)

	for i := range series {
		previous := in.InitialStock
		if i > 0 {
			previous = series[i-1]
		}
		consumption := figures[i].output
		if consumption == 0 {
			consumption = figures[i].planned + figures[i].overtime
		}
		assert.Equal(t, previous+inflow.At(i)-consumption, series[i], "index %d", i)
	}
}

func TestSeries_OvertimeFoldsIntoSecondShift(t *testing.T) {
	in := Input{
		Days: 3,
		Slots: []schedule.Slot{
			{Id: "ot-1", Day: 3, Shift: schedule.ShiftOvertime, OvertimePcs: 8},
			{Id: "9-1", Day: 9, Shift: schedule.ShiftOne, PlanningPcs: 500},
		},
	}

	series := Series(in, VariantPlanned, nil)

	assert.Equal(t, []int{0, 0, 0, 0, 0, -8}, series)
}

func TestBuild(t *testing.T) {
	in := Input{
		InitialStock: 10,
		Days:         2,
		Slots: []schedule.Slot{
			{Id: "1-1", Day: 1, Shift: schedule.ShiftOne, Delivery: 5, PlanningPcs: 4, ActualPcs: 6},
			{Id: "1-2", Day: 1, Shift: schedule.ShiftTwo, PlanningPcs: 3},
		},
		InMaterial:       Matrix{{qty(2), nil}, {nil, qty(1)}, {qty(100), qty(100)}},
		AktualInMaterial: Matrix{{nil, qty(5)}},
	}

	l := Build(in)

	assert.Equal(t, 2, l.Days)
	assert.Equal(t, []int{6, 3, 3, 4}, l.InMaterialStock)
	assert.Equal(t, []int{4, 6, 6, 6}, l.AktualInMaterialStock)
	assert.Equal(t, []int{11, 11, 11, 11}, l.Theoretical)
	assert.Equal(t, []int{8, 5, 5, 6}, l.Rencana)
	assert.Equal(t, 3, l.TotalInMaterial, "rows beyond the period are not counted")
	assert.Equal(t, 5, l.TotalAktualInMaterial)
}

func TestParseVariant(t *testing.T) {
	for input, want := range map[string]Variant{
		"theoretical": VariantTheoretical,
		"planned":     VariantPlanned,
		"rencana":     VariantPlanned,
		"actual":      VariantActual,
		"aktual":      VariantActual,
	} {
		got, err := ParseVariant(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		if input == want.String() {
			assert.Equal(t, input, got.String())
		}
	}

	_, err := ParseVariant("forecast")
	assert.Error(t, err)
}
