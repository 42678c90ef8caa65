package timeline

import (
	"reflect"
	"testing"
	"time"
)

func Test_GridRange(t *testing.T) {
	tests := []struct {
		name     string
		anchor   time.Time
		wantFrom time.Time
		wantTo   time.Time
	}{
		{
			// January 2026 starts on a Thursday and ends on a Saturday
			name:     "padded at the front only",
			anchor:   time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC),
			wantFrom: time.Date(2025, time.December, 28, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			// February 2026 runs Sunday through Saturday exactly
			name:     "no padding needed",
			anchor:   time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
			wantFrom: time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			// June 2026 starts on a Monday and ends on a Tuesday
			name:     "padded on both sides",
			anchor:   time.Date(2026, time.June, 30, 23, 59, 0, 0, time.UTC),
			wantFrom: time.Date(2026, time.May, 31, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2026, time.July, 5, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := GridRange(tt.anchor, time.UTC)
			if !from.Equal(tt.wantFrom) {
				t.Errorf("GridRange() from = %v, want %v", from, tt.wantFrom)
			}
			if !to.Equal(tt.wantTo) {
				t.Errorf("GridRange() to = %v, want %v", to, tt.wantTo)
			}
			if from.Weekday() != time.Sunday {
				t.Errorf("GridRange() from falls on %v, want Sunday", from.Weekday())
			}
			if days := int(to.Sub(from).Hours() / 24); days%7 != 0 {
				t.Errorf("GridRange() spans %d days, want whole weeks", days)
			}
		})
	}
}

func Test_ProjectMonth(t *testing.T) {
	anchor := time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)
	entries := []Entry{
		// padding day from the previous month still belongs to the grid
		{ID: "pad", Kind: KindLiveSession, ScheduledAt: time.Date(2025, time.December, 28, 9, 0, 0, 0, time.UTC)},
		{ID: "a", Kind: KindLiveSession, ScheduledAt: time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC)},
		{ID: "b", Kind: KindExam, ScheduledAt: time.Date(2026, time.January, 15, 18, 0, 0, 0, time.UTC)},
		{ID: "out", Kind: KindExam, ScheduledAt: time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)},
	}

	buckets := ProjectMonth(entries, anchor, time.UTC)

	if len(buckets) != 35 {
		t.Fatalf("ProjectMonth() returned %d buckets, want 35", len(buckets))
	}

	placed := make(map[string]int)
	for i, bucket := range buckets {
		if want := buckets[0].Date.AddDate(0, 0, i); !bucket.Date.Equal(want) {
			t.Fatalf("bucket %d date = %v, want %v", i, bucket.Date, want)
		}
		for _, entry := range bucket.Entries {
			placed[entry.ID]++
		}
	}

	// every in-range entry lands exactly once; out-of-range ones don't
	want := map[string]int{"pad": 1, "a": 1, "b": 1}
	if !reflect.DeepEqual(placed, want) {
		t.Errorf("ProjectMonth() placement = %v, want %v", placed, want)
	}

	jan15 := buckets[18] // Dec 28 + 18 days
	if len(jan15.Entries) != 2 || jan15.Entries[0].ID != "a" || jan15.Entries[1].ID != "b" {
		t.Errorf("ProjectMonth() Jan 15 bucket = %v, want [a b] in input order", jan15.Entries)
	}
}

func Test_ProjectMonth_localDateAttribution(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	anchor := time.Date(2026, time.January, 15, 0, 0, 0, 0, loc)

	// 23:00 UTC on the 14th is already the 15th at UTC+9
	entries := []Entry{
		{ID: "late", Kind: KindLiveSession, ScheduledAt: time.Date(2026, time.January, 14, 23, 0, 0, 0, time.UTC)},
	}

	buckets := ProjectMonth(entries, anchor, loc)
	for _, bucket := range buckets {
		if len(bucket.Entries) == 0 {
			continue
		}
		if y, m, d := bucket.Date.Date(); y != 2026 || m != time.January || d != 15 {
			t.Errorf("entry attributed to %v, want the viewer-local 15th", bucket.Date)
		}
		return
	}
	t.Error("ProjectMonth() dropped the entry")
}

func Test_ProjectMonth_pure(t *testing.T) {
	anchor := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	entries := []Entry{
		{ID: "a", Kind: KindLiveSession, ScheduledAt: time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC)},
	}

	first := ProjectMonth(entries, anchor, time.UTC)
	second := ProjectMonth(entries, anchor, time.UTC)
	if !reflect.DeepEqual(first, second) {
		t.Error("ProjectMonth() must be deterministic for equal input")
	}
	if entries[0].ID != "a" {
		t.Error("ProjectMonth() mutated its input")
	}
}
