package news

import (
	"testing"
	"time"
)

func TestParseDateRFC822(t *testing.T) {
	got := ParseDate("Mon, 02 Jan 2006 15:04:05 -0700")

	expected := time.Date(2006, 1, 2, 15, 4, 5, 0, time.FixedZone("", -7*3600))
	if !got.Equal(expected) {
		t.Errorf("Expected %v, got: %v", expected, got)
	}
}

func TestParseDateRFC822Named(t *testing.T) {
	got := ParseDate("Mon, 02 Jan 2006 15:04:05 GMT")

	if got.Year() != 2006 || got.Month() != time.January || got.Day() != 2 {
		t.Errorf("Expected 2006-01-02, got: %v", got)
	}
}

func TestParseDateSingleDigitDay(t *testing.T) {
	got := ParseDate("Mon, 2 Jan 2006 15:04:05 -0700")

	if got.Day() != 2 || got.Hour() != 15 {
		t.Errorf("Expected day 2 hour 15, got: %v", got)
	}
}

func TestParseDateISO8601(t *testing.T) {
	got := ParseDate("2023-07-03T10:00:00Z")

	expected := time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)
	if !got.Equal(expected) {
		t.Errorf("Expected %v, got: %v", expected, got)
	}
}

func TestParseDateBareDate(t *testing.T) {
	got := ParseDate("2023-07-03")

	if got.Year() != 2023 || got.Month() != time.July || got.Day() != 3 {
		t.Errorf("Expected 2023-07-03, got: %v", got)
	}
}

func TestParseDateFallbackToNow(t *testing.T) {
	before := time.Now()
	got := ParseDate("not-a-date")
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("Expected fallback near now, got: %v", got)
	}
}

func TestParseDateEmpty(t *testing.T) {
	before := time.Now()
	got := ParseDate("  ")
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("Expected fallback near now for empty input, got: %v", got)
	}
}
