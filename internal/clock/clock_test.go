package clock

import (
	"testing"
	"time"
)

func TestFakeClockAdvance(t *testing.T) {
	start := time.Date(2026, 10, 14, 12, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	c := NewFakeClock(start)
	if c.Now().Location() != time.UTC {
		t.Fatalf("expected UTC clock, got %s", c.Now().Location())
	}

	c.Advance(90 * time.Minute)
	want := start.UTC().Add(90 * time.Minute)
	if !c.Now().Equal(want) {
		t.Fatalf("expected %s, got %s", want, c.Now())
	}
}

func TestSystemClockIsUTC(t *testing.T) {
	var c Clock = SystemClock{}
	if c.Now().Location() != time.UTC {
		t.Fatalf("expected UTC, got %s", c.Now().Location())
	}
}
