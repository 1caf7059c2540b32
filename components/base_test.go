package components

import "testing"

func TestBase_ReadyImmediately(t *testing.T) {
	b := NewBase()
	if !b.IsReady() {
		t.Error("NewBase should be ready immediately")
	}

	var called bool
	b.OnReady(func() { called = true })
	if !called {
		t.Error("OnReady should fire synchronously when already ready")
	}
}

func TestBase_OnReady_QueuesUntilSetReady(t *testing.T) {
	b := NewBase()
	b.ready = false

	var calls int
	b.OnReady(func() { calls++ })
	b.OnReady(func() { calls++ })

	if calls != 0 {
		t.Fatalf("got %d calls before SetReady, want 0", calls)
	}

	b.SetReady()
	if calls != 2 {
		t.Errorf("got %d calls after SetReady, want 2", calls)
	}

	b.SetReady()
	if calls != 2 {
		t.Error("a second SetReady should not re-fire pending callbacks")
	}
}

func TestBase_StartShutdownIdempotency(t *testing.T) {
	b := NewBase()

	var err error
	b.Start(func(e error) { err = e })
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !b.IsStarted() {
		t.Error("expected IsStarted true after Start")
	}

	b.Start(func(e error) { err = e })
	if err != nil {
		t.Fatalf("second Start should be a no-op, got: %v", err)
	}

	b.Shutdown(func(e error) { err = e })
	if err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if b.IsStarted() {
		t.Error("expected IsStarted false after Shutdown")
	}

	b.Shutdown(func(e error) { err = e })
	if err != nil {
		t.Fatalf("second Shutdown should be a no-op, got: %v", err)
	}
}

func TestBase_NodeID(t *testing.T) {
	b := NewBase()
	b.SetNodeID("n1")
	if b.NodeID() != "n1" {
		t.Errorf("got %q, want n1", b.NodeID())
	}
}

func TestBase_LoadTracksActivation(t *testing.T) {
	b := NewBase()

	var activations, deactivations []int
	b.OnActivate(func(load int) { activations = append(activations, load) })
	b.OnDeactivate(func(load int) { deactivations = append(deactivations, load) })

	b.beginWork()
	if b.Load() != 1 {
		t.Fatalf("got load %d, want 1", b.Load())
	}
	b.beginWork()
	if b.Load() != 2 {
		t.Fatalf("got load %d, want 2", b.Load())
	}
	if len(activations) != 1 {
		t.Errorf("expected OnActivate to fire once on the 0->1 transition, got %d", len(activations))
	}

	b.endWork()
	if len(deactivations) != 0 {
		t.Error("OnDeactivate should not fire until load returns to zero")
	}
	b.endWork()
	if b.Load() != 0 {
		t.Fatalf("got load %d, want 0", b.Load())
	}
	if len(deactivations) != 1 {
		t.Errorf("expected OnDeactivate to fire once on the 1->0 transition, got %d", len(deactivations))
	}
}
