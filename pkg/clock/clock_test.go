package clock

import (
	"testing"
	"time"
)

func TestFakeSleepAdvancesTime(t *testing.T) {
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	fake := NewFake(start)

	fake.Sleep(5 * time.Second)
	if got := fake.Now(); !got.Equal(start.Add(5 * time.Second)) {
		t.Errorf("Expected time to advance by 5s, got %v", got)
	}

	fake.Sleep(2 * time.Second)
	sleeps := fake.Sleeps()
	if len(sleeps) != 2 {
		t.Fatalf("Expected 2 recorded sleeps, got %d", len(sleeps))
	}
	if fake.TotalSlept() != 7*time.Second {
		t.Errorf("Expected total slept of 7s, got %v", fake.TotalSlept())
	}
}

func TestFakeNegativeSleepClamped(t *testing.T) {
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	fake := NewFake(start)

	fake.Sleep(-time.Second)
	if !fake.Now().Equal(start) {
		t.Error("Expected negative sleep to leave time unchanged")
	}
	if got := fake.Sleeps()[0]; got != 0 {
		t.Errorf("Expected negative sleep recorded as 0, got %v", got)
	}
}

func TestFakeAdvanceDoesNotRecord(t *testing.T) {
	fake := NewFake(time.Unix(0, 0))
	fake.Advance(time.Minute)

	if len(fake.Sleeps()) != 0 {
		t.Error("Expected Advance not to record a sleep")
	}
	if !fake.Now().Equal(time.Unix(60, 0)) {
		t.Errorf("Expected time to be advanced by a minute, got %v", fake.Now())
	}
}

func TestSystemSleepReturnsImmediatelyForZero(t *testing.T) {
	sys := NewSystem()
	before := time.Now()
	sys.Sleep(0)
	sys.Sleep(-time.Hour)
	if time.Since(before) > time.Second {
		t.Error("Expected non-positive sleeps to return immediately")
	}
}
