package timeline

import "time"

// GridRange returns the [from, to) range of the full calendar grid for the
// month containing `anchor`: the visible month padded with adjacent-month
// days to complete Sunday-first weeks.
func GridRange(anchor time.Time, loc *time.Location) (from, to time.Time) {
	anchor = anchor.In(loc)
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)

	from = first.AddDate(0, 0, -int(first.Weekday()))
	to = last.AddDate(0, 0, int(time.Saturday-last.Weekday())+1)
	return from, to
}

// ProjectMonth derives the day buckets for the month grid containing
// `anchor`. Pure: same entries and month yield equal output, entries are
// never mutated and no entry in the grid's range is duplicated or dropped.
func ProjectMonth(entries []Entry, anchor time.Time, loc *time.Location) []DayBucket {
	from, to := GridRange(anchor, loc)

	days := int(to.Sub(from).Hours() / 24)
	buckets := make([]DayBucket, 0, days)
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		bucket := DayBucket{Date: day, Entries: []Entry{}}
		for _, entry := range entries {
			if sameDate(entry.ScheduledAt.In(loc), day) {
				bucket.Entries = append(bucket.Entries, entry)
			}
		}
		buckets = append(buckets, bucket)
	}
	return buckets
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
