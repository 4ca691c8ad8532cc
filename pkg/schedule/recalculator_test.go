package schedule

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseSchedule(t *testing.T, demand Demand) (*Generator, []Slot) {
	t.Helper()
	generator := NewGenerator(Config{HorizonDays: 5, OvertimeEvery: 3, OvertimeLeadDays: 2})
	return generator, generator.Generate(withStock(roomyParams, 1000), demand).Slots
}

func TestGenerator_Recalculate_PlanningPcs(t *testing.T) {
	t.Run("forces the edited slot and carries the delta into the next day", func(t *testing.T) {
		generator, previous := baseSchedule(t, Demand{1: 100, 2: 100, 3: 100})

		result, err := generator.Recalculate(withStock(roomyParams, 1000), previous, Edit{SlotId: "1-1", Field: FieldPlanningPcs, Value: 70})

		require.NoError(t, err)
		edited := slotById(t, result.Slots, "1-1")
		assert.Equal(t, 70, edited.Pcs)
		assert.Equal(t, 70, edited.PlanningPcs)
		assert.Equal(t, 20, edited.Adjustment)
		assert.InDelta(t, 70*60.0/3600, edited.PlanningHours, 1e-9)
		assert.Equal(t, 30, slotById(t, result.Slots, "1-2").Pcs)
		assert.Equal(t, 70, slotById(t, result.Slots, "2-1").Pcs)
		assert.Equal(t, 50, slotById(t, result.Slots, "2-2").Pcs)
		assert.Equal(t, 50, slotById(t, result.Slots, "3-1").Pcs, "only one day ahead is adjusted")
		assert.Equal(t, 0, slotById(t, result.Slots, "2-1").Adjustment)
		assert.Equal(t, 700, result.RemainingStock, "the propagated delta does not touch stock bookkeeping")
	})

	t.Run("editing shift 2 adjusts shift 1 of the next day", func(t *testing.T) {
		generator, previous := baseSchedule(t, Demand{1: 100, 2: 100})

		result, err := generator.Recalculate(withStock(roomyParams, 1000), previous, Edit{SlotId: "1-2", Field: FieldPlanningPcs, Value: 80.0})

		require.NoError(t, err)
		assert.Equal(t, 50, slotById(t, result.Slots, "1-1").Pcs)
		assert.Equal(t, 80, slotById(t, result.Slots, "1-2").Pcs)
		assert.Equal(t, 80, slotById(t, result.Slots, "2-1").Pcs)
		assert.Equal(t, 30, slotById(t, result.Slots, "1-2").Adjustment)
	})

	t.Run("clamps the propagated value at zero", func(t *testing.T) {
		generator, previous := baseSchedule(t, Demand{1: 100, 2: 40})

		result, err := generator.Recalculate(withStock(roomyParams, 1000), previous, Edit{SlotId: "1-1", Field: FieldPlanningPcs, Value: 0})

		require.NoError(t, err)
		assert.Equal(t, -50, slotById(t, result.Slots, "1-1").Adjustment)
		assert.Equal(t, 100, slotById(t, result.Slots, "1-2").Pcs)
		assert.Equal(t, 0, slotById(t, result.Slots, "2-1").Pcs)
		assert.Equal(t, 20, slotById(t, result.Slots, "2-2").Pcs)
	})

	t.Run("negative input is clamped to zero pieces", func(t *testing.T) {
		generator, previous := baseSchedule(t, Demand{1: 100})

		result, err := generator.Recalculate(withStock(roomyParams, 1000), previous, Edit{SlotId: "1-1", Field: FieldPlanningPcs, Value: -30})

		require.NoError(t, err)
		assert.Equal(t, 0, slotById(t, result.Slots, "1-1").PlanningPcs)
	})

	t.Run("editing the last day has no next day to adjust", func(t *testing.T) {
		generator, previous := baseSchedule(t, Demand{5: 100})

		result, err := generator.Recalculate(withStock(roomyParams, 1000), previous, Edit{SlotId: "5-1", Field: FieldPlanningPcs, Value: 10})

		require.NoError(t, err)
		assert.Len(t, result.Slots, len(previous))
		assert.Equal(t, 10, slotById(t, result.Slots, "5-1").Pcs)
		assert.Equal(t, 90, slotById(t, result.Slots, "5-2").Pcs)
	})

	t.Run("hour edits are converted to pieces by flooring", func(t *testing.T) {
		generator, previous := baseSchedule(t, Demand{1: 100})

		result, err := generator.Recalculate(withStock(roomyParams, 1000), previous, Edit{SlotId: "1-1", Field: FieldPlanningHours, Value: 1.01})

		require.NoError(t, err)
		edited := slotById(t, result.Slots, "1-1")
		assert.Equal(t, 60, edited.PlanningPcs)
		assert.Equal(t, 1.01, edited.PlanningHours)
		assert.Equal(t, 10, edited.Adjustment)
	})

	t.Run("planning pieces cannot be set on overtime", func(t *testing.T) {
		generator := NewGenerator(DefaultConfig())
		previous := generator.Generate(withStock(roomyParams, 100), Demand{1: 150}).Slots

		_, err := generator.Recalculate(withStock(roomyParams, 100), previous, Edit{SlotId: "ot-3", Field: FieldPlanningPcs, Value: 10})

		assert.ErrorIs(t, err, ErrFieldNotEditable)
	})
}

func TestGenerator_Recalculate_Overtime(t *testing.T) {
	generator := NewGenerator(DefaultConfig())
	params := withStock(roomyParams, 100)
	previous := generator.Generate(params, Demand{1: 150}).Slots

	t.Run("forces overtime pieces", func(t *testing.T) {
		result, err := generator.Recalculate(params, previous, Edit{SlotId: "ot-3", Field: FieldOvertimePcs, Value: 30})

		require.NoError(t, err)
		overtime := slotById(t, result.Slots, "ot-3")
		assert.Equal(t, 30, overtime.OvertimePcs)
		assert.Equal(t, -20, overtime.Adjustment)
		assert.Equal(t, 0, slotById(t, result.Slots, "6-1").Pcs)
		assert.Equal(t, -30, result.RemainingStock)
	})

	t.Run("overtime fields are rejected on regular slots", func(t *testing.T) {
		_, err := generator.Recalculate(params, previous, Edit{SlotId: "1-1", Field: FieldOvertimeHours, Value: 1})

		assert.ErrorIs(t, err, ErrFieldNotEditable)
	})
}

func TestGenerator_Recalculate_CarriesUserEntries(t *testing.T) {
	generator, previous := baseSchedule(t, Demand{1: 100, 2: 100})
	for i := range previous {
		if previous[i].Id == "2-2" {
			previous[i].ActualPcs = 45
			previous[i].Status = StatusDisrupted
			previous[i].Notes = "press down for an hour"
		}
		if previous[i].Id == "1-1" {
			previous[i].ActualPcs = 48
			previous[i].Adjustment = 12
		}
	}

	result, err := generator.Recalculate(withStock(roomyParams, 1000), previous, Edit{SlotId: "3-1", Field: FieldPlanningPcs, Value: 5})

	require.NoError(t, err)
	kept := slotById(t, result.Slots, "2-2")
	assert.Equal(t, 45, kept.ActualPcs)
	assert.Equal(t, StatusDisrupted, kept.Status)
	assert.Equal(t, "press down for an hour", kept.Notes)
	assert.Equal(t, 48, slotById(t, result.Slots, "1-1").ActualPcs)
	assert.Equal(t, 0, slotById(t, result.Slots, "1-1").Adjustment, "adjustments only annotate the latest edit")
}

func TestGenerator_Recalculate_UserFields(t *testing.T) {
	generator, previous := baseSchedule(t, Demand{1: 100, 2: 100})
	params := withStock(roomyParams, 1000)

	t.Run("actual pieces", func(t *testing.T) {
		result, err := generator.Recalculate(params, previous, Edit{SlotId: "1-2", Field: FieldActualPcs, Value: "42"})

		require.NoError(t, err)
		assert.Equal(t, 42, slotById(t, result.Slots, "1-2").ActualPcs)
		assert.Equal(t, 0, slotById(t, result.Slots, "1-2").Adjustment)
	})

	t.Run("status", func(t *testing.T) {
		result, err := generator.Recalculate(params, previous, Edit{SlotId: "1-2", Field: FieldStatus, Value: "completed"})

		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, slotById(t, result.Slots, "1-2").Status)
	})

	t.Run("notes", func(t *testing.T) {
		result, err := generator.Recalculate(params, previous, Edit{SlotId: "2-1", Field: FieldNotes, Value: "material late"})

		require.NoError(t, err)
		assert.Equal(t, "material late", slotById(t, result.Slots, "2-1").Notes)
	})

	t.Run("delivery changes the demand of the day", func(t *testing.T) {
		result, err := generator.Recalculate(params, previous, Edit{SlotId: "2-1", Field: FieldDelivery, Value: 60})

		require.NoError(t, err)
		assert.Equal(t, 60, slotById(t, result.Slots, "2-1").Delivery)
		assert.Equal(t, 30, slotById(t, result.Slots, "2-1").Pcs)
		assert.Equal(t, 30, slotById(t, result.Slots, "2-2").Pcs)
	})

	t.Run("delivery belongs to shift 1", func(t *testing.T) {
		_, err := generator.Recalculate(params, previous, Edit{SlotId: "2-2", Field: FieldDelivery, Value: 60})

		assert.ErrorIs(t, err, ErrFieldNotEditable)
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := generator.Recalculate(params, previous, Edit{SlotId: "1-1", Field: FieldStatus, Value: "broken"})

		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("invalid value type", func(t *testing.T) {
		_, err := generator.Recalculate(params, previous, Edit{SlotId: "1-1", Field: FieldPlanningPcs, Value: true})

		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := generator.Recalculate(params, previous, Edit{SlotId: "1-1", Field: "colour", Value: 1})

		assert.ErrorIs(t, err, ErrUnknownField)
	})

	t.Run("unknown slot", func(t *testing.T) {
		_, err := generator.Recalculate(params, previous, Edit{SlotId: "99-1", Field: FieldNotes, Value: "x"})

		assert.ErrorIs(t, err, ErrSlotNotFound)
	})
}

func TestGenerator_Recalculate_Idempotent(t *testing.T) {
	generator, previous := baseSchedule(t, Demand{1: 100, 2: 100, 3: 100})
	snapshot := slices.Clone(previous)
	edit := Edit{SlotId: "2-1", Field: FieldPlanningPcs, Value: 65}

	first, err := generator.Recalculate(withStock(roomyParams, 1000), previous, edit)
	require.NoError(t, err)
	second, err := generator.Recalculate(withStock(roomyParams, 1000), previous, edit)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, previous, "the previous schedule is not modified")
}

func TestGenerator_Recalculate_RepeatedEdit(t *testing.T) {
	t.Run("committing the same planning edit twice keeps the schedule", func(t *testing.T) {
		generator, previous := baseSchedule(t, Demand{1: 100, 2: 100, 3: 100})
		params := withStock(roomyParams, 1000)
		edit := Edit{SlotId: "1-1", Field: FieldPlanningPcs, Value: 70}

		first, err := generator.Recalculate(params, previous, edit)
		require.NoError(t, err)
		second, err := generator.Recalculate(params, first.Slots, edit)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 70, slotById(t, second.Slots, "2-1").Pcs)
		assert.Equal(t, 20, slotById(t, second.Slots, "1-1").Adjustment)
	})

	t.Run("repeating an hours edit keeps the schedule", func(t *testing.T) {
		generator, previous := baseSchedule(t, Demand{1: 100, 2: 100})
		params := withStock(roomyParams, 1000)
		edit := Edit{SlotId: "1-2", Field: FieldPlanningHours, Value: 1.5}

		first, err := generator.Recalculate(params, previous, edit)
		require.NoError(t, err)
		second, err := generator.Recalculate(params, first.Slots, edit)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 90, slotById(t, second.Slots, "1-2").PlanningPcs)
		assert.Equal(t, 90, slotById(t, second.Slots, "2-1").Pcs)
	})

	t.Run("committing the same overtime edit twice keeps the schedule", func(t *testing.T) {
		generator, previous := baseSchedule(t, Demand{1: 100, 2: 100, 3: 1000})
		params := withStock(roomyParams, 1000)
		require.Len(t, overtimeSlots(previous), 1)
		edit := Edit{SlotId: overtimeSlots(previous)[0].Id, Field: FieldOvertimePcs, Value: 100}

		first, err := generator.Recalculate(params, previous, edit)
		require.NoError(t, err)
		second, err := generator.Recalculate(params, first.Slots, edit)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("a new value after a repeat moves the delta again", func(t *testing.T) {
		generator, previous := baseSchedule(t, Demand{1: 100, 2: 100})
		params := withStock(roomyParams, 1000)

		first, err := generator.Recalculate(params, previous, Edit{SlotId: "1-1", Field: FieldPlanningPcs, Value: 70})
		require.NoError(t, err)
		second, err := generator.Recalculate(params, first.Slots, Edit{SlotId: "1-1", Field: FieldPlanningPcs, Value: 60})
		require.NoError(t, err)

		assert.Equal(t, -10, slotById(t, second.Slots, "1-1").Adjustment)
		assert.Equal(t, 40, slotById(t, second.Slots, "2-1").Pcs)
	})
}

func TestGenerator_Regenerate(t *testing.T) {
	generator, previous := baseSchedule(t, Demand{1: 100})
	for i := range previous {
		if previous[i].Id == "1-1" {
			previous[i].ActualPcs = 51
		}
	}
	params := withStock(roomyParams, 1000)
	params.TimePerPiece = 600 // 42 pcs per shift

	result := generator.Regenerate(params, previous)

	assert.Equal(t, 42, slotById(t, result.Slots, "1-1").Pcs)
	assert.Equal(t, 42, slotById(t, result.Slots, "1-2").Pcs)
	assert.Equal(t, 51, slotById(t, result.Slots, "1-1").ActualPcs)
	assert.Equal(t, 100, slotById(t, result.Slots, "1-1").Delivery)
}
