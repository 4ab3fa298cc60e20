package helper

import (
	"testing"
	"time"
)

func TestWorkDateUsesClinicDay(t *testing.T) {
	// 16:30 UTC is 01:30 next day in Seoul
	utc := time.Date(2026, 8, 31, 16, 30, 0, 0, time.UTC)
	if got := WorkDate(utc); got != "2026-09-01" {
		t.Errorf("WorkDate(%v) = %q, want %q", utc, got, "2026-09-01")
	}

	// 10:00 UTC is 19:00 same day in Seoul
	utc = time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	if got := WorkDate(utc); got != "2026-08-31" {
		t.Errorf("WorkDate(%v) = %q, want %q", utc, got, "2026-08-31")
	}
}
