package schedule

import (
	"fmt"

	"github.com/prodplan/prodplan/pkg/capacity"
	log "github.com/sirupsen/logrus"
)

// Recalculate applies an edit to one slot of previous and regenerates the whole horizon.
//
// Piece edits force the allocation of the edited slot and add the resulting delta to shift 1
// of the next day only. Repeating the value the slot already holds re-applies its standing
// adjustment, so committing the same edit twice yields the same schedule. Status, actual output
// and notes of slots that keep their identity are carried over from previous. previous is never
// modified.
func (g *Generator) Recalculate(params capacity.Parameters, previous []Slot, edit Edit) (Result, error) {
	target, ok := FindSlot(previous, edit.SlotId)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrSlotNotFound, edit.SlotId)
	}

	demand := DemandFromSlots(previous)
	var ov *override
	var apply func(slot *Slot)

	switch edit.Field {
	case FieldPlanningPcs, FieldPlanningHours:
		if target.IsOvertime() {
			return Result{}, fmt.Errorf("%w: %s on %s", ErrFieldNotEditable, edit.Field, target.Id)
		}
		pcs, hours, err := piecesAndHours(edit, FieldPlanningPcs, params.TimePerPiece)
		if err != nil {
			return Result{}, err
		}
		ov = &override{slotId: target.Id, day: target.Day, value: pcs, delta: editDelta(pcs, target.PlanningPcs, target.Adjustment)}
		apply = func(slot *Slot) { slot.PlanningHours = hours }

	case FieldOvertimePcs, FieldOvertimeHours:
		if !target.IsOvertime() {
			return Result{}, fmt.Errorf("%w: %s on %s", ErrFieldNotEditable, edit.Field, target.Id)
		}
		pcs, hours, err := piecesAndHours(edit, FieldOvertimePcs, params.TimePerPiece)
		if err != nil {
			return Result{}, err
		}
		ov = &override{slotId: target.Id, day: target.Day, value: pcs, delta: editDelta(pcs, target.OvertimePcs, target.Adjustment)}
		apply = func(slot *Slot) { slot.OvertimeHours = hours }

	case FieldDelivery:
		if target.Shift != ShiftOne {
			return Result{}, fmt.Errorf("%w: %s on %s", ErrFieldNotEditable, edit.Field, target.Id)
		}
		pcs, err := edit.pieces()
		if err != nil {
			return Result{}, err
		}
		demand[target.Day] = pcs

	case FieldActualPcs:
		pcs, err := edit.pieces()
		if err != nil {
			return Result{}, err
		}
		apply = func(slot *Slot) { slot.ActualPcs = pcs }

	case FieldStatus:
		text, err := edit.text()
		if err != nil {
			return Result{}, err
		}
		status := Status(text)
		if !status.Valid() {
			return Result{}, fmt.Errorf("%w: %q", ErrInvalidStatus, text)
		}
		apply = func(slot *Slot) { slot.Status = status }

	case FieldNotes:
		text, err := edit.text()
		if err != nil {
			return Result{}, err
		}
		apply = func(slot *Slot) { slot.Notes = text }

	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownField, edit.Field)
	}

	result := g.simulate(params, demand, ov)
	carryForward(result.Slots, previous)

	found := false
	for i := range result.Slots {
		slot := &result.Slots[i]
		if slot.Id != edit.SlotId {
			continue
		}
		found = true
		if ov != nil {
			slot.Adjustment = ov.delta
		}
		if apply != nil {
			apply(slot)
		}
	}
	if !found {
		log.Debugf("edited slot %s is not part of the regenerated schedule", edit.SlotId)
	}
	return result, nil
}

// Regenerate rebuilds the horizon from the deliveries recorded in previous, keeping the
// user-entered status, actual output and notes of every slot that still exists.
func (g *Generator) Regenerate(params capacity.Parameters, previous []Slot) Result {
	result := g.simulate(params, DemandFromSlots(previous), nil)
	carryForward(result.Slots, previous)
	return result
}

// editDelta is the change a piece edit carries into the next day. An edit to the value the slot
// already holds is a repeat of the edit that produced it.
func editDelta(pcs, current, adjustment int) int {
	if pcs == current {
		return adjustment
	}
	return pcs - current
}

func carryForward(slots []Slot, previous []Slot) {
	byId := make(map[string]Slot, len(previous))
	for _, slot := range previous {
		byId[slot.Id] = slot
	}
	for i := range slots {
		old, ok := byId[slots[i].Id]
		if !ok {
			continue
		}
		if old.Status != "" {
			slots[i].Status = old.Status
		}
		slots[i].ActualPcs = old.ActualPcs
		slots[i].Notes = old.Notes
	}
}

// piecesAndHours reads a piece or hour edit. Hours become pieces by flooring; pieces
// back-derive their hours without rounding.
func piecesAndHours(edit Edit, piecesField Field, timePerPiece float64) (int, float64, error) {
	if edit.Field == piecesField {
		pcs, err := edit.pieces()
		if err != nil {
			return 0, 0, err
		}
		return pcs, capacity.HoursFromPieces(pcs, timePerPiece), nil
	}
	hours, err := edit.hours()
	if err != nil {
		return 0, 0, err
	}
	return capacity.PiecesFromHours(hours, timePerPiece), hours, nil
}
