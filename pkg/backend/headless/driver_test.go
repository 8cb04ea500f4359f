package headless

import (
	"testing"
	"time"
)

func TestStopBeforeRunReturnsImmediately(t *testing.T) {
	d := New()
	d.Stop()

	done := make(chan error, 1)
	go func() { done <- d.Run() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run ignored the stop issued before the loop started")
	}
}

func TestPendingStopConsumedByOneRun(t *testing.T) {
	d := New()
	d.Stop()
	if err := d.Run(); err != nil {
		t.Fatal(err)
	}

	// The next run is a fresh loop: it must accept tasks and keep
	// running until its own Stop.
	done := make(chan error, 1)
	go func() { done <- d.Run() }()

	ran := make(chan struct{})
	deadline := time.After(2 * time.Second)
	for !d.Post(func() { close(ran) }) {
		select {
		case <-deadline:
			t.Fatal("loop never started accepting tasks")
		case err := <-done:
			t.Fatalf("Run returned early: %v", err)
		default:
			time.Sleep(time.Millisecond)
		}
	}
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("posted task never ran")
	}

	d.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit after Stop")
	}
}
