package core

import (
	"fmt"
	"strings"
	"time"
)

// minutesPerWeek is the length of a week in minutes, anchored at Monday 00:00.
const minutesPerWeek = 7 * 24 * 60

// Boundary is a point within the week, expressed in the window's timezone.
type Boundary struct {
	Weekday time.Weekday
	Hour    int
	Minute  int
}

// weekMinute returns the boundary's offset in minutes from Monday 00:00.
func (b Boundary) weekMinute() int {
	// time.Weekday has Sunday=0; shift so the week starts on Monday.
	day := (int(b.Weekday) + 6) % 7
	return day*24*60 + b.Hour*60 + b.Minute
}

// ParseBoundary parses a "Friday 18:00" style boundary string.
func ParseBoundary(s string) (Boundary, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Boundary{}, fmt.Errorf("core: invalid boundary %q, want \"<weekday> <hh:mm>\"", s)
	}

	var wd time.Weekday
	found := false
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), fields[0]) {
			wd = d
			found = true
			break
		}
	}
	if !found {
		return Boundary{}, fmt.Errorf("core: invalid weekday %q in boundary %q", fields[0], s)
	}

	var hour, minute int
	if _, err := fmt.Sscanf(fields[1], "%d:%d", &hour, &minute); err != nil {
		return Boundary{}, fmt.Errorf("core: invalid time %q in boundary %q", fields[1], s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return Boundary{}, fmt.Errorf("core: time %q out of range in boundary %q", fields[1], s)
	}

	return Boundary{Weekday: wd, Hour: hour, Minute: minute}, nil
}

// Window is the weekly recurring interval during which constrained-mode
// matching is open. The interval is inclusive of From and exclusive of
// Until, evaluated in a single fixed timezone. From and Until may wrap
// around the week boundary.
type Window struct {
	Location *time.Location
	From     Boundary
	Until    Boundary
}

// DefaultWindow returns the product default: Friday 18:00 through Monday
// 00:00, Western Indonesia time.
func DefaultWindow() Window {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		loc = time.FixedZone("WIB", 7*60*60)
	}
	return Window{
		Location: loc,
		From:     Boundary{Weekday: time.Friday, Hour: 18},
		Until:    Boundary{Weekday: time.Monday},
	}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	loc := w.Location
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)

	day := (int(lt.Weekday()) + 6) % 7
	m := day*24*60 + lt.Hour()*60 + lt.Minute()

	from := w.From.weekMinute()
	until := w.Until.weekMinute()

	switch {
	case from < until:
		return m >= from && m < until
	case from > until:
		// Wraps around the week boundary.
		return m >= from || m < until
	default:
		// Degenerate zero-length window is never open.
		return false
	}
}
