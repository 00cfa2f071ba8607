package timeutil

import (
	"testing"
	"time"
)

func TestUTCShortToLocal(t *testing.T) {
	loc := time.FixedZone("EET", 2*60*60)
	if got := UTCShortToLocal("12:30", loc); got != "14:30" {
		t.Fatalf("12:30 UTC in +02:00 = %s, want 14:30", got)
	}
}

func TestUTCShortToLocalMalformedPassesThrough(t *testing.T) {
	loc := time.FixedZone("EET", 2*60*60)
	if got := UTCShortToLocal("soon", loc); got != "soon" {
		t.Fatalf("malformed input changed: %s", got)
	}
}

func TestHalfHourSlots(t *testing.T) {
	from := time.Date(2020, 4, 1, 22, 0, 0, 0, time.UTC)
	slots := HalfHourSlots(from)

	if slots[0] != from.Add(30*time.Minute) {
		t.Fatalf("first slot = %v", slots[0])
	}
	for i := 1; i < len(slots); i++ {
		if slots[i].Sub(slots[i-1]) != 30*time.Minute {
			t.Fatalf("slots not evenly spaced at %d", i)
		}
	}
	last := slots[len(slots)-1]
	if last.Day() == from.Day() {
		t.Fatalf("slots should stop after crossing midnight, last = %v", last)
	}
}
