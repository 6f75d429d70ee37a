package attendance

import (
	"sort"
	"time"
)

const sliceLength = 15 * time.Minute

const (
	LabelLateNight       = "late_night"
	LabelWeekend         = "weekend"
	LabelWeekdayOvertime = "weekday_overtime"

	RateLateNight       = 1.50
	RateWeekend         = 1.35
	RateWeekdayOvertime = 1.25
)

type RateSegment struct {
	Rate    float64 `json:"rate"`
	Minutes int     `json:"minutes"`
	Label   string  `json:"label"`
}

type Daily struct {
	Date     string     `json:"date"`
	ClockIn  *time.Time `json:"clockIn"`
	ClockOut *time.Time `json:"clockOut"`
}

type MonthlyEntry struct {
	Date           string        `json:"date"`
	ClockIn        *time.Time    `json:"clockIn"`
	ClockOut       *time.Time    `json:"clockOut"`
	WorkingMinutes int           `json:"workingMinutes"`
	RateSegments   []RateSegment `json:"rateSegments"`
	IsCorrected    bool          `json:"isCorrected"`
}

type Monthly struct {
	UserID  int64          `json:"userId"`
	Year    int            `json:"year"`
	Month   int            `json:"month"`
	Records []MonthlyEntry `json:"records"`
	Total   int            `json:"totalWorkingMinutes"`
}

// classify picks the premium for a slice by its local start time. Late night wins over weekend.
func classify(start time.Time) (float64, string) {
	hour := start.Hour()
	switch {
	case hour >= 22 || hour < 5:
		return RateLateNight, LabelLateNight
	case start.Weekday() == time.Saturday || start.Weekday() == time.Sunday:
		return RateWeekend, LabelWeekend
	default:
		return RateWeekdayOvertime, LabelWeekdayOvertime
	}
}

// ComputeRateSegments cuts [in, out) into 15 minute slices in loc, classifies each slice by its
// start and sums the slices per rate. The result is ordered by rate ascending.
// Punches are truncated to the minute so the segments always add up to WorkingMinutes.
func ComputeRateSegments(in, out time.Time, loc *time.Location) []RateSegment {
	in, out = in.Truncate(time.Minute), out.Truncate(time.Minute)
	if !out.After(in) {
		return []RateSegment{}
	}

	type bucket struct {
		label string
		total time.Duration
	}
	buckets := make(map[float64]*bucket)

	for cursor := in.In(loc); cursor.Before(out); {
		next := cursor.Add(sliceLength)
		if next.After(out) {
			next = out.In(loc)
		}
		rate, label := classify(cursor)
		b, ok := buckets[rate]
		if !ok {
			b = &bucket{label: label}
			buckets[rate] = b
		}
		b.total += next.Sub(cursor)
		cursor = next
	}

	segments := make([]RateSegment, 0, len(buckets))
	for rate, b := range buckets {
		segments = append(segments, RateSegment{Rate: rate, Minutes: int(b.total / time.Minute), Label: b.label})
	}
	sort.Slice(segments, func(i, j int) bool { return segments[i].Rate < segments[j].Rate })
	return segments
}

// WorkingMinutes is zero unless both punches exist.
func WorkingMinutes(in, out *time.Time) int {
	if in == nil || out == nil {
		return 0
	}
	start, end := in.Truncate(time.Minute), out.Truncate(time.Minute)
	if !end.After(start) {
		return 0
	}
	return int(end.Sub(start) / time.Minute)
}

// WorkDate is the storage key for a local calendar day: UTC midnight of that date.
func WorkDate(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
