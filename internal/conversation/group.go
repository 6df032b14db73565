package conversation

import (
	"fmt"
	"time"
)

// Entry is one message in the rendering plan, annotated with its day-group
// boundary.
type Entry struct {
	Message

	// StartsDay marks the first message of a day group. Groups are cut by
	// adjacency: a message opens a group iff its local calendar date
	// differs from its predecessor's. A non-monotonic feed can therefore
	// produce more groups than distinct dates; that is intentional.
	StartsDay bool

	// DayLabel is the human label for the group this message opens; empty
	// unless StartsDay.
	DayLabel string
}

// Plan annotates the message sequence with day-group markers. Order is
// preserved exactly; nothing is re-sorted.
func Plan(msgs []Message, now time.Time) []Entry {
	entries := make([]Entry, 0, len(msgs))
	for i, m := range msgs {
		e := Entry{Message: m}
		if i == 0 || !sameLocalDate(m.Time, msgs[i-1].Time) {
			e.StartsDay = true
			e.DayLabel = DayLabel(m.Time, now)
		}
		entries = append(entries, e)
	}
	return entries
}

func sameLocalDate(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

// DayLabel renders a group date relative to now: "Today", "Yesterday", the
// bare weekday within the last seven days, "Monday, January 2" within the
// current year, and "January 2, 2006" beyond that.
func DayLabel(t, now time.Time) string {
	t = t.Local()
	now = now.Local()

	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch days := int(today.Sub(day).Hours() / 24); {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days > 1 && days < 7:
		return t.Weekday().String()
	}
	if t.Year() == now.Year() {
		return fmt.Sprintf("%s, %s %d", t.Weekday(), t.Month(), t.Day())
	}
	return fmt.Sprintf("%s %d, %d", t.Month(), t.Day(), t.Year())
}
