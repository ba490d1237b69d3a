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
	if got.Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeLayouts(t *testing.T) {
	want := time.Date(2016, 5, 1, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2016-05-01", "05/01/2016", "2016/05/01", "2016-05-01 00:00:00", " 2016-05-01 "} {
		got, ok := ParseTime(s)
		if !ok {
			t.Fatalf("%q: expected ok", s)
		}
		if !got.Equal(want) {
			t.Fatalf("%q: got %v want %v", s, got, want)
		}
	}
	if _, ok := ParseTime("yesterday"); ok {
		t.Fatalf("expected failure for free text")
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

func TestDayRange(t *testing.T) {
	start := time.Date(2016, 5, 30, 15, 4, 5, 0, time.UTC)
	days := DayRange(start, 4)
	if len(days) != 4 {
		t.Fatalf("expected 4 days, got %d", len(days))
	}
	if days[0].Format(time.DateOnly) != "2016-05-30" || days[3].Format(time.DateOnly) != "2016-06-02" {
		t.Fatalf("unexpected range %v", days)
	}
	if !IsDaily(days) {
		t.Fatalf("range should be daily")
	}
}

func TestIsDailyRejectsGapsAndReversal(t *testing.T) {
	d := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if IsDaily([]time.Time{d, d.AddDate(0, 0, 2)}) {
		t.Fatalf("gap accepted")
	}
	if IsDaily([]time.Time{d, d.AddDate(0, 0, -1)}) {
		t.Fatalf("reversal accepted")
	}
	if !IsDaily(nil) || !IsDaily([]time.Time{d}) {
		t.Fatalf("trivial sequences are daily")
	}
}
