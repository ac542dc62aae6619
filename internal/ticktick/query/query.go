package query

import (
	"sort"
	"strings"
	"time"

	"github.com/teemow/ticktick-mcp/internal/ticktick"
)

// DaysInWeek is the span of DueThisWeek, starting today.
const DaysInWeek = 7

// Filter selects tasks relative to a reference time.
type Filter func(t ticktick.Task) bool

// Clock fixes "now" and the user location for date comparisons.
type Clock struct {
	Now      time.Time
	Location *time.Location
}

// NewClock returns a Clock for now in loc. A nil loc means time.Local.
func NewClock(now time.Time, loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return Clock{Now: now.In(loc), Location: loc}
}

// today is midnight of the current calendar day in the user location.
func (c Clock) today() time.Time {
	y, m, d := c.Now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.Location)
}

// dueDay returns the calendar day of t's due date, or ok=false.
func (c Clock) dueDay(t ticktick.Task) (time.Time, bool) {
	due, ok := t.Due(c.Location)
	if !ok {
		return time.Time{}, false
	}
	y, m, d := due.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.Location), true
}

// dueOn matches tasks due today+offset days.
func (c Clock) dueOn(offset int) Filter {
	target := c.today().AddDate(0, 0, offset)
	return func(t ticktick.Task) bool {
		day, ok := c.dueDay(t)
		return ok && day.Equal(target)
	}
}

// DueToday matches tasks due on the current calendar date.
func (c Clock) DueToday() Filter { return c.dueOn(0) }

// DueTomorrow matches tasks due on the next calendar date.
func (c Clock) DueTomorrow() Filter { return c.dueOn(1) }

// DueInDays matches tasks due exactly days from today. days must not be negative.
func (c Clock) DueInDays(days int) (Filter, error) {
	if days < 0 {
		return nil, ticktick.NewValidationError("days", "must be zero or positive, got %d", days)
	}
	return c.dueOn(days), nil
}

// DueThisWeek matches tasks due in [today, today+7 days).
func (c Clock) DueThisWeek() Filter {
	start := c.today()
	end := start.AddDate(0, 0, DaysInWeek)
	return func(t ticktick.Task) bool {
		day, ok := c.dueDay(t)
		return ok && !day.Before(start) && day.Before(end)
	}
}

// Overdue matches open tasks whose due date is before today.
func (c Clock) Overdue() Filter {
	start := c.today()
	return func(t ticktick.Task) bool {
		if t.Completed() {
			return false
		}
		day, ok := c.dueDay(t)
		return ok && day.Before(start)
	}
}

// Engaged matches high priority or overdue tasks.
func (c Clock) Engaged() Filter {
	overdue := c.Overdue()
	return func(t ticktick.Task) bool {
		return t.Priority == ticktick.PriorityHigh || overdue(t)
	}
}

// Next matches medium priority tasks and tasks due tomorrow.
func (c Clock) Next() Filter {
	tomorrow := c.DueTomorrow()
	return func(t ticktick.Task) bool {
		return t.Priority == ticktick.PriorityMedium || tomorrow(t)
	}
}

// ByPriority matches tasks with exactly priority p.
func ByPriority(p int) (Filter, error) {
	if !ticktick.ValidPriority(p) {
		return nil, ticktick.NewValidationError("priority", "must be one of 0, 1, 3, 5, got %d", p)
	}
	return func(t ticktick.Task) bool { return t.Priority == p }, nil
}

// Search matches tasks whose title, content, description or checklist item
// titles contain term, ignoring case.
func Search(term string) (Filter, error) {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return nil, ticktick.NewValidationError("search_term", "must not be empty")
	}
	return func(t ticktick.Task) bool {
		if containsFold(t.Title, needle) || containsFold(t.Content, needle) || containsFold(t.Desc, needle) {
			return true
		}
		for _, item := range t.Items {
			if containsFold(item.Title, needle) {
				return true
			}
		}
		return false
	}, nil
}

func containsFold(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}

// Apply returns the tasks matching f, stable-sorted by due date with undated
// tasks last.
func (c Clock) Apply(tasks []ticktick.Task, f Filter) []ticktick.Task {
	out := make([]ticktick.Task, 0, len(tasks))
	for _, t := range tasks {
		if f(t) {
			out = append(out, t)
		}
	}
	c.SortByDue(out)
	return out
}

// SortByDue stable-sorts tasks by due date, undated last.
func (c Clock) SortByDue(tasks []ticktick.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		di, oki := tasks[i].Due(c.Location)
		dj, okj := tasks[j].Due(c.Location)
		switch {
		case oki && okj:
			return di.Before(dj)
		case oki:
			return true
		default:
			return false
		}
	})
}
