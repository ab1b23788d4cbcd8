// Package schedule lays recurring service stops out on the current week.
package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"run-planner/internal/planner/model"
)

const adhocLabel = "ADHOC"

// Aggregate expands stops into the six weekly buckets (Mon..Fri, Adhoc) of the
// week containing ref. Dates and event instants use ref's location.
//
// Within a bucket occurrences are sorted by stop time, address type, location id
// and address-book id, then adjacent occurrences sharing time and address are
// grouped into one entry.
func Aggregate(stops []model.ServiceStop, ref time.Time) []model.WeeklyBucket {
	today := int(ref.Weekday())
	midnight := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())

	buckets := make([]model.WeeklyBucket, model.Slots)
	days := make([]time.Time, model.Slots)
	occ := make([][]model.Occurrence, model.Slots)
	for i := range buckets {
		day := i + 1
		// adhoc occurrences land on the day after Friday
		days[i] = midnight.AddDate(0, 0, day-today)
		buckets[i] = model.WeeklyBucket{Day: day, Label: model.SlotNames[i], Date: LongDate(days[i])}
	}
	buckets[model.SlotAdhoc].Date = adhocLabel

	for _, s := range stops {
		for i, on := range s.Frequency {
			if !on {
				continue
			}
			st := s.StopTimes[i]
			start := at(days[i], st.Clock)
			occ[i] = append(occ[i], model.Occurrence{
				Stop:         s,
				EventStart:   start,
				EventEnd:     start.Add(st.Duration),
				StopTime:     st.Clock,
				StopDuration: st.Duration.Milliseconds(),
				AddressType:  s.AddressKind().Label(),
			})
		}
	}

	for i := range buckets {
		sortOccurrences(occ[i])
		buckets[i].Stops = group(occ[i])
	}
	return buckets
}

func sortOccurrences(list []model.Occurrence) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if c := strings.Compare(a.StopTime, b.StopTime); c != 0 {
			return c < 0
		}
		if c := strings.Compare(a.Stop.AddressKind().String(), b.Stop.AddressKind().String()); c != 0 {
			return c < 0
		}
		if c := strings.Compare(locationID(a.Stop), locationID(b.Stop)); c != 0 {
			return c < 0
		}
		return bookID(a.Stop) < bookID(b.Stop)
	})
}

// group merges runs of adjacent occurrences with equal time, type and
// type-specific address key. Equal keys that are not adjacent stay apart.
func group(list []model.Occurrence) []model.Entry {
	out := make([]model.Entry, 0, len(list))
	for _, o := range list {
		if n := len(out); n > 0 && sameVisit(out[n-1][len(out[n-1])-1], o) {
			out[n-1] = append(out[n-1], o)
			continue
		}
		out = append(out, model.Entry{o})
	}
	return out
}

func sameVisit(a, b model.Occurrence) bool {
	ka, kb := a.Stop.AddressKind(), b.Stop.AddressKind()
	return a.StopTime == b.StopTime && ka == kb && addressKey(a.Stop) == addressKey(b.Stop)
}

func addressKey(s model.ServiceStop) string {
	if s.Address == nil {
		return ""
	}
	return s.Address.Key()
}

func locationID(s model.ServiceStop) string {
	if r, ok := s.Address.(model.LocationRef); ok {
		return r.ID
	}
	return ""
}

func bookID(s model.ServiceStop) string {
	if r, ok := s.Address.(model.BookRef); ok {
		return r.ID
	}
	return ""
}

// at places an "HH:MM" clock on day. A malformed clock yields midnight.
func at(day time.Time, clock string) time.Time {
	h, m, ok := strings.Cut(clock, ":")
	hh, err1 := strconv.Atoi(h)
	mm, err2 := strconv.Atoi(m)
	if !ok || err1 != nil || err2 != nil {
		return day
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hh, mm, 0, 0, day.Location())
}

// LongDate renders "Monday, 2nd of June, 2025".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%s, %s of %s, %d", t.Weekday(), ordinal(t.Day()), t.Month(), t.Year())
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return strconv.Itoa(n) + suffix
}
