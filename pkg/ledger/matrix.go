package ledger

// Matrix holds nullable material inflow quantities, one row per day (0-based) and one
// column per shift. A nil cell means nothing arrives and counts as 0.
type Matrix [][2]*int

func NewMatrix(days int) Matrix {
	return make(Matrix, max(days, 0))
}

// Normalize returns a copy of m with exactly days rows. Missing rows are empty,
// rows beyond days are discarded.
func Normalize(m Matrix, days int) Matrix {
	normalized := NewMatrix(days)
	copy(normalized, m)
	for day := range normalized {
		for shift := range normalized[day] {
			if v := normalized[day][shift]; v != nil {
				value := *v
				normalized[day][shift] = &value
			}
		}
	}
	return normalized
}

// At returns the inflow at series index day*2+shift, or 0 when the cell is empty or out of range.
func (m Matrix) At(index int) int {
	if index < 0 {
		return 0
	}
	day, shift := index/2, index%2
	if day >= len(m) || m[day][shift] == nil {
		return 0
	}
	return *m[day][shift]
}

func (m Matrix) Total() int {
	total := 0
	for day := range m {
		for shift := range m[day] {
			if v := m[day][shift]; v != nil {
				total += *v
			}
		}
	}
	return total
}
