package fault

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFutureSettlesOnce(t *testing.T) {
	lane := NewLane()
	f := NewFuture(lane)
	var got []any
	f.Then(func(v any) { got = append(got, v) })

	if f.State() != Pending {
		t.Errorf("State() = %s, want pending", f.State())
	}
	if err := f.Resolve(1); err != nil {
		t.Fatal(err)
	}
	if err := f.Resolve(2); !errors.Is(err, ErrAlreadySettled) {
		t.Errorf("second Resolve error = %v, want ErrAlreadySettled", err)
	}
	if err := f.Reject(errors.New("x")); !errors.Is(err, ErrAlreadySettled) {
		t.Errorf("Reject after Resolve error = %v, want ErrAlreadySettled", err)
	}

	lane.Drain()
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("Then saw %v, want [1]", got)
	}
	if v, err := f.Result(); v != 1 || err != nil {
		t.Errorf("Result() = %v, %v", v, err)
	}
}

func TestFutureCatchAfterReject(t *testing.T) {
	lane := NewLane()
	f := NewFuture(lane)
	_ = f.Reject(nil)

	var got error
	f.Catch(func(err error) { got = err })
	f.Then(func(any) { t.Error("Then must not run on rejection") })
	lane.Drain()

	if !errors.Is(got, ErrNilFailure) {
		t.Errorf("Catch saw %v, want ErrNilFailure", got)
	}
	if f.State() != Rejected || f.State().String() != "rejected" {
		t.Errorf("State() = %s", f.State())
	}
}

func TestFutureWithoutLaneRunsInline(t *testing.T) {
	f := NewFuture(nil)
	ran := false
	f.Catch(func(error) { ran = true })
	_ = f.Reject(errors.New("x"))
	if !ran {
		t.Error("continuation should run at settlement without a lane")
	}
}

func TestFutureMarkWiredOnce(t *testing.T) {
	f := NewFuture(nil)
	if !f.markWired() {
		t.Error("first markWired should return true")
	}
	if f.markWired() {
		t.Error("second markWired should return false")
	}
}

func TestLaneDrainOrderAndNested(t *testing.T) {
	lane := NewLane()
	var order []int
	lane.Post(func() {
		order = append(order, 1)
		lane.Post(func() { order = append(order, 3) })
	})
	lane.Post(func() { order = append(order, 2) })
	lane.Post(nil)

	if lane.Pending() != 2 {
		t.Errorf("Pending() = %d, want 2", lane.Pending())
	}
	if n := lane.Drain(); n != 3 {
		t.Errorf("Drain() = %d, want 3", n)
	}
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("order = %v, want [1 2 3]", order)
	}
}

func TestLaneRun(t *testing.T) {
	lane := NewLane()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lane.Run(ctx) }()

	ran := make(chan struct{})
	lane.Post(func() { close(ran) })

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not execute posted task")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
