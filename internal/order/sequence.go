package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	allocateAttempts = 3
	allocateBackoff  = 10 * time.Millisecond
)

// CounterStore owns the daily sequence counter. IncrementDailyCounter must
// atomically fetch-or-create the row for the given date, bump it by one and
// return the new value; two concurrent callers must never see the same value.
// Transient aborts are reported as ErrConcurrencyConflict.
type CounterStore interface {
	IncrementDailyCounter(ctx context.Context, date time.Time) (int, error)
}

// SequenceAllocator issues unique, human-readable order numbers of the form
// YYYYMMDD-NNNN. Sequences restart at 1 each day; past 9999 the numeric part
// simply grows wider.
type SequenceAllocator struct {
	store CounterStore
}

func NewSequenceAllocator(store CounterStore) *SequenceAllocator {
	return &SequenceAllocator{store: store}
}

// AllocateOrderNumber returns the next order number for the given day,
// retrying the atomic increment a bounded number of times when it aborts
// under contention. A number once returned is never handed out again, even
// if the order it was allocated for is never persisted: gaps are acceptable,
// duplicates are not.
func (a *SequenceAllocator) AllocateOrderNumber(ctx context.Context, today time.Time) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= allocateAttempts; attempt++ {
		seq, err := a.store.IncrementDailyCounter(ctx, today)
		if err == nil {
			return FormatOrderNumber(today, seq), nil
		}

		if !errors.Is(err, ErrConcurrencyConflict) {
			return "", fmt.Errorf("allocator: failed to increment daily counter: %w", err)
		}

		lastErr = err
		log.Warn().Int("attempt", attempt).Msg("allocator: counter increment aborted, retrying")

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * allocateBackoff):
		}
	}

	return "", fmt.Errorf("allocator: retries exhausted: %w", lastErr)
}

// FormatOrderNumber renders a date and sequence as an order number,
// zero-padding the sequence to four digits.
func FormatOrderNumber(date time.Time, seq int) string {
	return fmt.Sprintf("%s-%04d", date.Format("20060102"), seq)
}
