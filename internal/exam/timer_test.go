package exam

import "testing"

func TestPhaseTimerClampsAndFiresOnce(t *testing.T) {
	tm := NewPhaseTimer(2)

	if tm.Tick() {
		t.Fatal("expired after 1 of 2 seconds")
	}
	if got := tm.Remaining(); got != 1 {
		t.Fatalf("Remaining = %d, want 1", got)
	}
	if !tm.Tick() {
		t.Fatal("expected expiry on second tick")
	}
	if tm.Tick() {
		t.Fatal("expiry fired twice")
	}
	if got := tm.Remaining(); got != 0 {
		t.Fatalf("Remaining = %d, want clamp at 0", got)
	}
	if !tm.Expired() {
		t.Error("Expired = false after firing")
	}
}

func TestTotalTimerGoesNegative(t *testing.T) {
	tm := NewTotalTimer(1)

	if !tm.Tick() {
		t.Fatal("expected expiry at zero")
	}
	tm.Tick()
	tm.Tick()
	if got := tm.Remaining(); got != -2 {
		t.Fatalf("Remaining = %d, want -2 overtime", got)
	}
}

func TestTimerReset(t *testing.T) {
	tm := NewPhaseTimer(1)
	tm.Tick()
	if !tm.Expired() {
		t.Fatal("setup: timer should have expired")
	}

	tm.Reset(3)
	if tm.Expired() {
		t.Error("Expired survives Reset")
	}
	if got := tm.Remaining(); got != 3 {
		t.Errorf("Remaining = %d, want 3", got)
	}
	if tm.Tick() {
		t.Error("fired immediately after Reset(3)")
	}
}
