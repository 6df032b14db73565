package conversation

import (
	"testing"
	"time"
)

func localDate(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.Local)
}

func TestPlan_AdjacencyDayBoundaries(t *testing.T) {
	base := localDate(2026, time.August, 28, 10)
	msgs := []Message{
		{ID: "a", Time: base},
		{ID: "b", Time: base},
		{ID: "c", Time: base.Add(25 * time.Hour)},
	}

	entries := Plan(msgs, base.Add(26*time.Hour))

	var starts []int
	for i, e := range entries {
		if e.StartsDay {
			starts = append(starts, i)
		}
	}
	if len(starts) != 2 || starts[0] != 0 || starts[1] != 2 {
		t.Fatalf("day starts at %v, want [0 2]", starts)
	}
	if entries[1].DayLabel != "" {
		t.Fatalf("non-boundary entry carries label %q", entries[1].DayLabel)
	}
}

func TestPlan_NonMonotonicTimesSplitGroups(t *testing.T) {
	day1 := localDate(2026, time.August, 27, 9)
	day2 := localDate(2026, time.August, 28, 9)
	msgs := []Message{
		{ID: "a", Time: day1},
		{ID: "b", Time: day2},
		{ID: "c", Time: day1}, // back to the earlier date: still a new group
	}

	entries := Plan(msgs, day2)
	count := 0
	for _, e := range entries {
		if e.StartsDay {
			count++
		}
	}
	if count != 3 {
		t.Fatalf("got %d groups for 2 distinct dates out of order, want 3", count)
	}
}

func TestPlan_EmptyConversation(t *testing.T) {
	if got := Plan(nil, time.Now()); len(got) != 0 {
		t.Fatalf("Plan(nil) = %v, want empty", got)
	}
}

func TestDayLabel(t *testing.T) {
	now := localDate(2026, time.August, 30, 15) // a Sunday

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{name: "same day", t: localDate(2026, time.August, 30, 1), want: "Today"},
		{name: "previous day", t: localDate(2026, time.August, 29, 23), want: "Yesterday"},
		{name: "within week", t: localDate(2026, time.August, 26, 12), want: "Wednesday"},
		{name: "within year", t: localDate(2026, time.March, 3, 12), want: "Tuesday, March 3"},
		{name: "previous year", t: localDate(2024, time.December, 25, 12), want: "December 25, 2024"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DayLabel(tc.t, now); got != tc.want {
				t.Fatalf("DayLabel(%v) = %q, want %q", tc.t, got, tc.want)
			}
		})
	}
}
