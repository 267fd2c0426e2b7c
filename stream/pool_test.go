package stream

import (
	"testing"

	"github.com/pkg/errors"
)

func TestPoolRunsEveryItemToCompletion(t *testing.T) {
	values := []interface{}{"a", "b", "c"}
	p := NewPool(nil, values)

	p.Run(2, func(it *Item) (StepResult, error) {
		return StepDone, nil
	})

	finished, errored := p.Snapshot()
	if len(finished) != 3 {
		t.Fatalf("got %d finished, want 3", len(finished))
	}
	if len(errored) != 0 {
		t.Fatalf("got %d errored, want 0", len(errored))
	}
}

func TestPoolReportsTerminalErrors(t *testing.T) {
	boom := errors.New("boom")
	p := NewPool(nil, []interface{}{"only"})

	p.Run(1, func(it *Item) (StepResult, error) {
		return StepDone, boom
	})

	finished, errored := p.Snapshot()
	if len(finished) != 0 {
		t.Fatalf("got %d finished, want 0", len(finished))
	}
	if len(errored) != 1 || errored[0].Err() != boom {
		t.Fatalf("got errored=%v, want [boom]", errored)
	}
}

func TestPoolReschedulesAStalledItemOnceThenErrors(t *testing.T) {
	p := NewPool(nil, []interface{}{"flaky"})

	attempts := 0
	p.Run(1, func(it *Item) (StepResult, error) {
		attempts++
		return StepStalled, nil
	})

	if attempts != MaxRescheduleAttempts+1 {
		t.Fatalf("got %d attempts, want %d", attempts, MaxRescheduleAttempts+1)
	}
	finished, errored := p.Snapshot()
	if len(finished) != 0 {
		t.Fatalf("got %d finished, want 0", len(finished))
	}
	if len(errored) != 1 {
		t.Fatalf("got %d errored, want 1", len(errored))
	}
}
