package utils

import "time"

// Clock supplies plan creation and modification timestamps.
type Clock interface {
	Now() time.Time
}

// timestampPrecision is the resolution of a postgres timestamptz column.
const timestampPrecision = time.Microsecond

type SystemClock struct{}

// Now returns the current UTC time at storage precision, so a plan returned after a write
// equals the plan read back.
func (s SystemClock) Now() time.Time {
	return time.Now().UTC().Truncate(timestampPrecision)
}

type MockClock struct {
	FixedNow time.Time
}

func (m *MockClock) Now() time.Time {
	return m.FixedNow
}

// Advance moves the mock clock forward by d.
func (m *MockClock) Advance(d time.Duration) {
	m.FixedNow = m.FixedNow.Add(d)
}
