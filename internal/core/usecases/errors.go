package usecases

import (
	"errors"
	"fmt"
)

// ErrAlreadyRunning signals that another node holds the pipeline lock.
// Callers exit cleanly without touching data.
var ErrAlreadyRunning = errors.New("pipeline already running elsewhere")

// SourceExhaustedError is returned when every fallback URL for a source
// failed. It retains the last underlying cause.
type SourceExhaustedError struct {
	Source   string
	Attempts int
	Last     error
}

func (e *SourceExhaustedError) Error() string {
	return fmt.Sprintf("source %s exhausted after %d attempts: %v", e.Source, e.Attempts, e.Last)
}

func (e *SourceExhaustedError) Unwrap() error { return e.Last }
