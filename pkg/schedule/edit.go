package schedule

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var ErrSlotNotFound = errors.New("slot not found")
var ErrUnknownField = errors.New("unknown slot field")
var ErrFieldNotEditable = errors.New("field is not editable on this slot")
var ErrInvalidValue = errors.New("invalid value for slot field")
var ErrInvalidStatus = errors.New("invalid slot status")

type Field string

const (
	FieldPlanningPcs   Field = "planningPcs"
	FieldPlanningHours Field = "planningHours"
	FieldOvertimePcs   Field = "overtimePcs"
	FieldOvertimeHours Field = "overtimeHours"
	FieldDelivery      Field = "delivery"
	FieldActualPcs     Field = "actualPcs"
	FieldStatus        Field = "status"
	FieldNotes         Field = "notes"
)

// Edit is a single committed change to one slot.
// Value holds a number (int or float64, as decoded from JSON) or a string.
type Edit struct {
	SlotId string
	Field  Field
	Value  any
}

// numeric returns the edit value as a float. Numeric strings are accepted.
func (e Edit) numeric() (float64, error) {
	var v float64
	switch value := e.Value.(type) {
	case int:
		v = float64(value)
	case int64:
		v = float64(value)
	case float64:
		v = value
	case string:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q", ErrInvalidValue, e.Field, value)
		}
		v = parsed
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: %s has type %T", ErrInvalidValue, e.Field, e.Value)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s is not finite", ErrInvalidValue, e.Field)
	}
	return v, nil
}

// pieces returns the edit value as a non-negative piece count.
func (e Edit) pieces() (int, error) {
	v, err := e.numeric()
	if err != nil {
		return 0, err
	}
	return max(int(math.Floor(v)), 0), nil
}

func (e Edit) hours() (float64, error) {
	v, err := e.numeric()
	if err != nil {
		return 0, err
	}
	return max(v, 0), nil
}

func (e Edit) text() (string, error) {
	switch value := e.Value.(type) {
	case string:
		return value, nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("%w: %s has type %T", ErrInvalidValue, e.Field, e.Value)
	}
}
