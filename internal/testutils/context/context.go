package context

import (
	"context"
	"testing"
	"time"
)

// margin left before the test deadline for clean-up.
const margin = time.Second

// WithTest returns a context for t.
//
// It is canceled when t ends, or 1 second before the deadline of t, whichever comes first.
func WithTest(t *testing.T) context.Context {
	t.Helper()
	if deadline, ok := t.Deadline(); ok {
		ctx, cancel := context.WithDeadline(context.Background(), deadline.Add(-margin))
		t.Cleanup(cancel)
		return ctx
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
