package diagnose

import (
	"time"

	"github.com/google/uuid"
)

// RunIDGenerator generates identifiers for diagnosis runs.
// Implemented by UUIDv7Generator (production) and testutil.FixedRunID
// (tests).
type RunIDGenerator interface {
	Generate() string
}

// Clock is the time source for stage timings.
// Implemented by SystemClock (production) and testutil.StepClock (tests).
type Clock interface {
	Now() time.Time
}

// UUIDv7Generator generates time-sortable UUIDv7 run identifiers.
//
// UUIDv7 embeds a timestamp in the most significant bits, so run IDs sort
// by start time in logs and metric labels.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}
