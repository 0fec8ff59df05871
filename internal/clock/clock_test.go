package clock

import (
	"testing"
	"time"
)

func TestFakeAdvanceFiresDueTimers(t *testing.T) {
	c := NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	var fired []string
	c.AfterFunc(10*time.Second, func() { fired = append(fired, "late") })
	c.AfterFunc(5*time.Second, func() { fired = append(fired, "early") })

	c.Advance(4 * time.Second)
	if len(fired) != 0 {
		t.Fatalf("fired = %v after 4s, want none", fired)
	}

	c.Advance(6 * time.Second)
	if len(fired) != 2 || fired[0] != "early" || fired[1] != "late" {
		t.Fatalf("fired = %v, want [early late]", fired)
	}
	if c.Pending() != 0 {
		t.Fatalf("Pending() = %d, want 0", c.Pending())
	}
}

func TestFakeStopPreventsFire(t *testing.T) {
	c := NewFake(time.Unix(0, 0))

	called := false
	timer := c.AfterFunc(time.Second, func() { called = true })
	if !timer.Stop() {
		t.Fatal("Stop() = false on pending timer")
	}
	if timer.Stop() {
		t.Fatal("second Stop() = true, want false")
	}

	c.Advance(time.Minute)
	if called {
		t.Fatal("stopped timer fired")
	}
}
