// Package alerts derives birthday, anniversary and overdue-confession
// alerts from the full member and log record set. Scan is a pure function
// recomputed on demand and on a fixed interval; alerts are advisory and
// never persisted.
package alerts

import (
	"fmt"
	"sort"
	"time"

	"github.com/kenisa/raai/internal/store"
)

// Kind classifies an alert.
type Kind string

const (
	Birthday    Kind = "birthday"
	Anniversary Kind = "anniversary"
	Overdue     Kind = "overdue"
)

// OverdueAfterDays is the window after the last confession (or the
// confession-start date, when no log exists) before a member is flagged.
const OverdueAfterDays = 60

// Alert is a derived notification. ID is a deterministic composite of
// kind and source record id, so repeated scans over unchanged data produce
// identical id sets and consumers can de-duplicate by id.
type Alert struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Scan walks the full record set against today's calendar date.
//
// Deceased and archived members are skipped entirely. A member with no log
// and no confession-start date is never flagged overdue: that is
// insufficient information, not absence of concern (kept as shipped,
// pending product clarification).
func Scan(members []*store.Member, logs []*store.Log, today time.Time) []*Alert {
	// Latest log date per member. ISO dates order lexically.
	latest := make(map[int64]string, len(members))
	for _, l := range logs {
		if l.Date > latest[l.MemberID] {
			latest[l.MemberID] = l.Date
		}
	}

	cutoff := today.AddDate(0, 0, -OverdueAfterDays)
	var out []*Alert

	for _, m := range members {
		if m.IsDeceased || m.IsArchived {
			continue
		}
		name := m.FirstName + " " + m.FamilyName

		if d, ok := parseDate(m.BirthDate); ok && sameMonthDay(d, today) {
			out = append(out, &Alert{
				ID:        fmt.Sprintf("%s:%d", Birthday, m.ID),
				Kind:      Birthday,
				Message:   fmt.Sprintf("%s has a birthday today", name),
				Timestamp: today,
			})
		}
		for i, c := range m.Children {
			if d, ok := parseDate(c.BirthDate); ok && sameMonthDay(d, today) {
				out = append(out, &Alert{
					ID:        fmt.Sprintf("%s:%d:%d", Birthday, m.ID, i),
					Kind:      Birthday,
					Message:   fmt.Sprintf("%s (child of %s) has a birthday today", c.Name, name),
					Timestamp: today,
				})
			}
		}

		if m.SocialStatus == "married" {
			if d, ok := parseDate(m.MarriageDate); ok && sameMonthDay(d, today) {
				out = append(out, &Alert{
					ID:        fmt.Sprintf("%s:%d", Anniversary, m.ID),
					Kind:      Anniversary,
					Message:   fmt.Sprintf("%s celebrates a wedding anniversary today", name),
					Timestamp: today,
				})
			}
		}

		last := latest[m.ID]
		if last == "" {
			last = m.ConfessionStart
		}
		if d, ok := parseDate(last); ok && d.Before(cutoff) {
			out = append(out, &Alert{
				ID:        fmt.Sprintf("%s:%d", Overdue, m.ID),
				Kind:      Overdue,
				Message:   fmt.Sprintf("%s has not been to confession since %s", name, last),
				Timestamp: d,
			})
		}
	}

	// Newest first; ties keep discovery order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// parseDate reads a stored YYYY-MM-DD value. Blank or malformed dates are
// skipped rather than flagged; the record editor owns date validity.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// sameMonthDay compares calendar month/day only, ignoring the year.
// Both sides are plain date extractions, so local-midnight boundaries
// cannot skew the comparison.
func sameMonthDay(a, b time.Time) bool {
	return a.Month() == b.Month() && a.Day() == b.Day()
}
