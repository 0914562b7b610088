package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/tesserahq/chrona"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		expression string
		wantErr    bool
	}{
		{"daily at ten", "0 10 * * *", false},
		{"every five minutes", "*/5 * * * *", false},
		{"weekly monday", "0 9 * * 1", false},
		{"empty", "", true},
		{"garbage", "not a cron", true},
		{"too many fields", "0 10 * * * *", true},
		{"out of range minute", "61 * * * *", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.expression)
			if tt.wantErr {
				var schedErr *chrona.InvalidScheduleError
				if !errors.As(err, &schedErr) {
					t.Fatalf("expected *chrona.InvalidScheduleError, got %v", err)
				}
				if schedErr.Expression != tt.expression {
					t.Fatalf("error expression = %q, want %q", schedErr.Expression, tt.expression)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate(%q) = %v, want nil", tt.expression, err)
			}
		})
	}
}

func TestNewEvaluatorInvalidExpression(t *testing.T) {
	t.Parallel()

	_, err := NewEvaluator("bogus", "UTC", nil)
	var schedErr *chrona.InvalidScheduleError
	if !errors.As(err, &schedErr) {
		t.Fatalf("expected *chrona.InvalidScheduleError, got %v", err)
	}
}

func TestLoadLocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		timezone string
		want     string
	}{
		{"empty falls back to UTC", "", "UTC"},
		{"explicit UTC", "UTC", "UTC"},
		{"known IANA name", "America/New_York", "America/New_York"},
		{"unknown falls back to UTC", "Mars/Olympus_Mons", "UTC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := LoadLocation(tt.timezone, nil)
			if loc.String() != tt.want {
				t.Fatalf("LoadLocation(%q) = %q, want %q", tt.timezone, loc, tt.want)
			}
		})
	}
}

func TestInstantsDailySchedule(t *testing.T) {
	t.Parallel()

	ev, err := NewEvaluator("0 10 * * *", "UTC", nil)
	if err != nil {
		t.Fatal(err)
	}

	// Anchor at noon: the 10:00 fire on the anchor day is included, the
	// fire three days earlier falls before the noon floor and is not.
	anchor := time.Date(2023, 10, 10, 12, 0, 0, 0, time.UTC)
	got := ev.Instants(anchor, 3)

	want := []time.Time{
		time.Date(2023, 10, 8, 10, 0, 0, 0, time.UTC),
		time.Date(2023, 10, 9, 10, 0, 0, 0, time.UTC),
		time.Date(2023, 10, 10, 10, 0, 0, 0, time.UTC),
	}
	if len(got) != len(want) {
		t.Fatalf("got %d instants, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("instant[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestInstantsFloorInclusive(t *testing.T) {
	t.Parallel()

	ev, err := NewEvaluator("0 10 * * *", "UTC", nil)
	if err != nil {
		t.Fatal(err)
	}

	// Anchor exactly at a fire time: both the floor fire and the anchor
	// fire are part of the sequence.
	anchor := time.Date(2023, 10, 10, 10, 0, 0, 0, time.UTC)
	got := ev.Instants(anchor, 1)

	if len(got) != 2 {
		t.Fatalf("got %d instants, want 2: %v", len(got), got)
	}
	if !got[0].Equal(time.Date(2023, 10, 9, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("floor instant = %v", got[0])
	}
	if !got[1].Equal(anchor) {
		t.Fatalf("anchor instant = %v", got[1])
	}
}

func TestInstantsProperties(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		expression string
		timezone   string
		anchor     time.Time
		lookback   int
	}{
		{"hourly", "0 * * * *", "UTC", time.Date(2023, 10, 10, 12, 30, 0, 0, time.UTC), 2},
		{"daily in new york", "0 10 * * *", "America/New_York", time.Date(2023, 6, 15, 23, 0, 0, 0, time.UTC), 7},
		{"weekly", "0 9 * * 1", "UTC", time.Date(2023, 10, 10, 12, 0, 0, 0, time.UTC), 30},
		{"across dst spring forward", "30 2 * * *", "America/New_York", time.Date(2023, 3, 15, 12, 0, 0, 0, time.UTC), 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := NewEvaluator(tt.expression, tt.timezone, nil)
			if err != nil {
				t.Fatal(err)
			}

			got := ev.Instants(tt.anchor, tt.lookback)
			floor := tt.anchor.In(ev.Location()).AddDate(0, 0, -tt.lookback)

			for i, instant := range got {
				if instant.Before(floor) {
					t.Fatalf("instant %v precedes floor %v", instant, floor)
				}
				if instant.After(tt.anchor) {
					t.Fatalf("instant %v exceeds anchor %v", instant, tt.anchor)
				}
				if i > 0 && !got[i-1].Before(instant) {
					t.Fatalf("instants not strictly ascending: %v then %v", got[i-1], instant)
				}
			}

			// Same inputs, same output.
			again := ev.Instants(tt.anchor, tt.lookback)
			if len(again) != len(got) {
				t.Fatalf("second evaluation returned %d instants, want %d", len(again), len(got))
			}
			for i := range got {
				if !again[i].Equal(got[i]) {
					t.Fatalf("second evaluation diverged at %d: %v vs %v", i, again[i], got[i])
				}
			}
		})
	}
}

func TestInstantsEmptyWindow(t *testing.T) {
	t.Parallel()

	// Fires only on Feb 1; a one-day lookback in October never hits it.
	ev, err := NewEvaluator("0 10 1 2 *", "UTC", nil)
	if err != nil {
		t.Fatal(err)
	}

	got := ev.Instants(time.Date(2023, 10, 10, 12, 0, 0, 0, time.UTC), 1)
	if len(got) != 0 {
		t.Fatalf("expected no instants, got %v", got)
	}
}

func TestPrev(t *testing.T) {
	t.Parallel()

	ev, err := NewEvaluator("0 10 * * *", "UTC", nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		at   time.Time
		want time.Time
	}{
		{
			name: "after today's fire",
			at:   time.Date(2023, 10, 10, 12, 0, 0, 0, time.UTC),
			want: time.Date(2023, 10, 10, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "exactly at a fire",
			at:   time.Date(2023, 10, 10, 10, 0, 0, 0, time.UTC),
			want: time.Date(2023, 10, 10, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "before today's fire",
			at:   time.Date(2023, 10, 10, 9, 0, 0, 0, time.UTC),
			want: time.Date(2023, 10, 9, 10, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ev.Prev(tt.at)
			if !got.Equal(tt.want) {
				t.Fatalf("Prev(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestPrevSparseSchedule(t *testing.T) {
	t.Parallel()

	// Leap-day schedule: the previous fire sits years back, well past the
	// early probe spans.
	ev, err := NewEvaluator("0 10 29 2 *", "UTC", nil)
	if err != nil {
		t.Fatal(err)
	}

	got := ev.Prev(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))
	want := time.Date(2020, 2, 29, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("Prev = %v, want %v", got, want)
	}

	// February 31st never fires; Prev gives up at the scan horizon.
	never, err := NewEvaluator("0 0 31 2 *", "UTC", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := never.Prev(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)); !got.IsZero() {
		t.Fatalf("Prev on never-firing schedule = %v, want zero time", got)
	}
}

func TestWindow(t *testing.T) {
	t.Parallel()

	ev, err := NewEvaluator("0 10 * * *", "UTC", nil)
	if err != nil {
		t.Fatal(err)
	}

	instant := time.Date(2023, 10, 10, 10, 0, 0, 0, time.UTC)
	win := ev.Window(instant)

	wantFrom := time.Date(2023, 10, 9, 10, 0, 0, 0, time.UTC)
	if !win.From.Equal(wantFrom) {
		t.Fatalf("From = %v, want %v", win.From, wantFrom)
	}
	if !win.To.Equal(instant) {
		t.Fatalf("To = %v, want %v", win.To, instant)
	}
	if win.From.Location() != time.UTC || win.To.Location() != time.UTC {
		t.Fatal("window bounds must be UTC-normalized")
	}
}

func TestWindowTimezone(t *testing.T) {
	t.Parallel()

	// Daily 10:00 New York. The window between consecutive fires is 24h
	// outside DST transitions, regardless of the UTC offset.
	ev, err := NewEvaluator("0 10 * * *", "America/New_York", nil)
	if err != nil {
		t.Fatal(err)
	}

	// 10:00 EDT == 14:00 UTC.
	instant := time.Date(2023, 6, 15, 14, 0, 0, 0, time.UTC)
	win := ev.Window(instant)

	if got := win.To.Sub(win.From); got != 24*time.Hour {
		t.Fatalf("window span = %v, want 24h", got)
	}
	if !win.To.Equal(instant) {
		t.Fatalf("To = %v, want %v", win.To, instant)
	}
}
