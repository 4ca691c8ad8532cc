package material

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/prodplan/prodplan/pkg/ledger"
)

var ErrInvalidCell = errors.New("invalid material cell")
var ErrPlanNotFound = errors.New("plan not found")

// Kind distinguishes the planned inflow from the recorded one.
type Kind string

const (
	KindPlanned Kind = "in"
	KindActual  Kind = "aktual"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindPlanned, KindActual:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidCell, s)
	}
}

// Cell addresses one inflow quantity. Day is 0-based, Shift is 0 or 1.
// A nil Quantity clears the cell.
type Cell struct {
	Kind     Kind
	Day      int
	Shift    int
	Quantity *int
}

func (c Cell) Validate(days int) error {
	if _, err := ParseKind(string(c.Kind)); err != nil {
		return err
	}
	if c.Day < 0 || c.Day >= days {
		return fmt.Errorf("%w: day %d outside of %d planned days", ErrInvalidCell, c.Day, days)
	}
	if c.Shift != 0 && c.Shift != 1 {
		return fmt.Errorf("%w: shift %d", ErrInvalidCell, c.Shift)
	}
	if c.Quantity != nil && *c.Quantity < 0 {
		return fmt.Errorf("%w: negative quantity %d", ErrInvalidCell, *c.Quantity)
	}
	return nil
}

type Inflow struct {
	PlanId           uuid.UUID
	InMaterial       ledger.Matrix
	AktualInMaterial ledger.Matrix
}

// Normalize returns the inflow with both matrices cut or padded to days rows.
func (i Inflow) Normalize(days int) Inflow {
	return Inflow{
		PlanId:           i.PlanId,
		InMaterial:       ledger.Normalize(i.InMaterial, days),
		AktualInMaterial: ledger.Normalize(i.AktualInMaterial, days),
	}
}

// inflowFromCells builds both matrices from stored cells. Each matrix is as long as its last
// stored day. Cells outside the two shift columns are skipped.
func inflowFromCells(planId uuid.UUID, cells []Cell) Inflow {
	inDays, aktualDays := 0, 0
	for _, cell := range cells {
		if cell.Kind == KindActual {
			aktualDays = max(aktualDays, cell.Day+1)
		} else {
			inDays = max(inDays, cell.Day+1)
		}
	}

	inflow := Inflow{
		PlanId:           planId,
		InMaterial:       ledger.NewMatrix(inDays),
		AktualInMaterial: ledger.NewMatrix(aktualDays),
	}
	for _, cell := range cells {
		if cell.Day < 0 || cell.Shift < 0 || cell.Shift > 1 || cell.Quantity == nil {
			continue
		}
		quantity := *cell.Quantity
		if cell.Kind == KindActual {
			inflow.AktualInMaterial[cell.Day][cell.Shift] = &quantity
		} else {
			inflow.InMaterial[cell.Day][cell.Shift] = &quantity
		}
	}
	return inflow
}
