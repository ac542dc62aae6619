// Package query filters fetched TickTick tasks by due date, priority and text.
//
// Date filters compare calendar days in the user location against a fixed
// Clock:
//
//	clock := query.NewClock(time.Now(), loc)
//	overdue := clock.Apply(tasks, clock.Overdue())
//
// Tasks without a parsable due date never match a date filter.
package query
