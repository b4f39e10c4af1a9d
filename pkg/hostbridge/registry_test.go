package hostbridge

import (
	"sync"
	"testing"
)

type recordingTarget struct {
	mu     sync.Mutex
	pastes []string
	drops  []string
}

func (t *recordingTarget) HandlePastePayload(data, filename string) {
	t.mu.Lock()
	t.pastes = append(t.pastes, filename)
	t.mu.Unlock()
}

func (t *recordingTarget) HandleDropPayload(data, filename string) {
	t.mu.Lock()
	t.drops = append(t.drops, filename)
	t.mu.Unlock()
}

func TestDispatchRoutesByInstance(t *testing.T) {
	r := NewRegistry()
	a := &recordingTarget{}
	b := &recordingTarget{}
	r.Register("a", a)
	r.Register("b", b)

	if !r.DispatchPaste("a", "aGk=", "a.png") {
		t.Fatal("expected dispatch to a to succeed")
	}
	if !r.DispatchDrop("b", "aGk=", "b.png") {
		t.Fatal("expected dispatch to b to succeed")
	}

	if len(a.pastes) != 1 || a.pastes[0] != "a.png" {
		t.Errorf("a pastes = %v", a.pastes)
	}
	if len(a.drops) != 0 {
		t.Errorf("a should receive no drops, got %v", a.drops)
	}
	if len(b.drops) != 1 || b.drops[0] != "b.png" {
		t.Errorf("b drops = %v", b.drops)
	}
}

func TestDispatchToUnknownInstanceIsNoOp(t *testing.T) {
	r := NewRegistry()

	// A payload can arrive before the instance finishes registering.
	// That must not panic and must report non-delivery.
	if r.DispatchPaste("ghost", "aGk=", "x.png") {
		t.Error("expected false for unknown instance")
	}
	if r.DispatchDrop("ghost", "aGk=", "x.png") {
		t.Error("expected false for unknown instance")
	}
}

func TestDeregisterStopsDelivery(t *testing.T) {
	r := NewRegistry()
	target := &recordingTarget{}
	r.Register("w", target)
	r.Deregister("w")

	if r.DispatchPaste("w", "aGk=", "x.png") {
		t.Error("expected false after deregister")
	}
	if len(target.pastes) != 0 {
		t.Errorf("expected no deliveries, got %v", target.pastes)
	}

	// Deregistering twice is harmless.
	r.Deregister("w")
	if r.Has("w") {
		t.Error("expected w to be gone")
	}
}

func TestRegisterReplacesTarget(t *testing.T) {
	r := NewRegistry()
	old := &recordingTarget{}
	replacement := &recordingTarget{}
	r.Register("w", old)
	r.Register("w", replacement)

	r.DispatchDrop("w", "aGk=", "p.jpg")
	if len(old.drops) != 0 {
		t.Errorf("old target should not receive, got %v", old.drops)
	}
	if len(replacement.drops) != 1 {
		t.Errorf("replacement should receive, got %v", replacement.drops)
	}
}

func TestConcurrentRegisterDispatch(t *testing.T) {
	r := NewRegistry()
	target := &recordingTarget{}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			r.Register("w", target)
			r.Deregister("w")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			r.DispatchPaste("w", "aGk=", "x.png")
		}
	}()
	wg.Wait()
}
