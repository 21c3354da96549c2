package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeDateOnly(t *testing.T) {
	got, ok := ParseTime("2024-03-01")
	if !ok || !got.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected %v %v", got, ok)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got := ParseTimeDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestAlignFromTo(t *testing.T) {
	from := time.Date(2024, 5, 17, 13, 47, 12, 0, time.UTC)
	f, _ := AlignFromTo(from, from, "15m")
	if !f.Equal(time.Date(2024, 5, 17, 13, 45, 0, 0, time.UTC)) {
		t.Fatalf("15m: %v", f)
	}
	f, _ = AlignFromTo(from, from, "1d")
	if !f.Equal(time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("1d: %v", f)
	}
	f, _ = AlignFromTo(from, from, "1mo")
	if !f.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("1mo: %v", f)
	}
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)
	if got := PeriodStart("5y", now); got.Year() != 2019 {
		t.Fatalf("5y: %v", got)
	}
	if got := PeriodStart("max", now); !got.IsZero() {
		t.Fatalf("max should be zero time")
	}
	if got := PeriodStart("bogus", now); got.Year() != 2023 {
		t.Fatalf("fallback: %v", got)
	}
}
