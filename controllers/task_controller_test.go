package controllers

import (
	"testing"
	"time"
)

func TestStartOfDayUsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("EAT", 3*60*60)
	now := time.Date(2026, time.August, 30, 1, 30, 0, 0, loc)

	got := startOfDay(now)
	want := time.Date(2026, time.August, 30, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	// At 01:30 east of UTC a 24h truncation lands in the previous local day,
	// which would let the cap roll over mid-morning.
	if truncated := now.Truncate(24 * time.Hour); truncated.Equal(want) {
		t.Errorf("truncation unexpectedly matches local midnight; helper is redundant")
	}
}

func TestStartOfDayStableAcrossTheDay(t *testing.T) {
	loc := time.FixedZone("EAT", 3*60*60)
	morning := time.Date(2026, time.August, 30, 0, 0, 1, 0, loc)
	evening := time.Date(2026, time.August, 30, 23, 59, 59, 0, loc)

	if !startOfDay(morning).Equal(startOfDay(evening)) {
		t.Errorf("the cap window must start at the same instant for the whole day")
	}
}
