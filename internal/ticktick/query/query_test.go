package query

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/ticktick-mcp/internal/ticktick"
)

var testLoc = time.FixedZone("UTC+7", 7*3600)

// testClock is Wednesday 2025-06-11 10:00 in UTC+7.
func testClock() Clock {
	return NewClock(time.Date(2025, 6, 11, 10, 0, 0, 0, testLoc), testLoc)
}

// due formats a due date offset days from the test clock's today at 09:00 local.
func due(days int) string {
	return time.Date(2025, 6, 11+days, 9, 0, 0, 0, testLoc).Format(ticktick.DateLayout)
}

func ids(tasks []ticktick.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestDueToday(t *testing.T) {
	c := testClock()
	tasks := []ticktick.Task{
		{ID: "yesterday", DueDate: due(-1)},
		{ID: "today", DueDate: due(0)},
		{ID: "tomorrow", DueDate: due(1)},
		{ID: "undated"},
	}

	assert.Equal(t, []string{"today"}, ids(c.Apply(tasks, c.DueToday())))
}

func TestDueToday_UsesUserLocation(t *testing.T) {
	c := testClock()
	// 23:30 UTC on 2025-06-10 is 06:30 on 2025-06-11 in UTC+7.
	tasks := []ticktick.Task{{ID: "late-utc", DueDate: "2025-06-10T23:30:00+0000"}}

	assert.Equal(t, []string{"late-utc"}, ids(c.Apply(tasks, c.DueToday())))
}

func TestDueTomorrowAndInDays(t *testing.T) {
	c := testClock()
	tasks := []ticktick.Task{
		{ID: "d0", DueDate: due(0)},
		{ID: "d1", DueDate: due(1)},
		{ID: "d3", DueDate: due(3)},
	}

	assert.Equal(t, []string{"d1"}, ids(c.Apply(tasks, c.DueTomorrow())))

	f, err := c.DueInDays(3)
	require.NoError(t, err)
	assert.Equal(t, []string{"d3"}, ids(c.Apply(tasks, f)))

	f, err = c.DueInDays(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"d0"}, ids(c.Apply(tasks, f)))

	_, err = c.DueInDays(-1)
	var ve *ticktick.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "days", ve.Field)
}

func TestDueThisWeek(t *testing.T) {
	c := testClock()
	tasks := []ticktick.Task{
		{ID: "d-1", DueDate: due(-1)},
		{ID: "d6", DueDate: due(6)},
		{ID: "d0", DueDate: due(0)},
		{ID: "d7", DueDate: due(7)},
	}

	assert.Equal(t, []string{"d0", "d6"}, ids(c.Apply(tasks, c.DueThisWeek())))
}

func TestOverdue(t *testing.T) {
	c := testClock()
	tasks := []ticktick.Task{
		{ID: "done-yesterday", DueDate: due(-1), Status: ticktick.StatusCompleted},
		{ID: "open-yesterday", DueDate: due(-1)},
		{ID: "open-today", DueDate: due(0)},
		{ID: "undated"},
	}

	assert.Equal(t, []string{"open-yesterday"}, ids(c.Apply(tasks, c.Overdue())))
}

func TestEngaged(t *testing.T) {
	c := testClock()
	tasks := []ticktick.Task{
		{ID: "low-overdue", Priority: ticktick.PriorityLow, DueDate: due(-1)},
		{ID: "low-later", Priority: ticktick.PriorityLow, DueDate: due(3)},
		{ID: "high-undated", Priority: ticktick.PriorityHigh},
	}

	assert.Equal(t, []string{"low-overdue", "high-undated"}, ids(c.Apply(tasks, c.Engaged())))
}

func TestNext(t *testing.T) {
	c := testClock()
	tasks := []ticktick.Task{
		{ID: "medium", Priority: ticktick.PriorityMedium, DueDate: due(5)},
		{ID: "low-tomorrow", Priority: ticktick.PriorityLow, DueDate: due(1)},
		{ID: "low-today", Priority: ticktick.PriorityLow, DueDate: due(0)},
		{ID: "high-later", Priority: ticktick.PriorityHigh, DueDate: due(2)},
	}

	assert.Equal(t, []string{"low-tomorrow", "medium"}, ids(c.Apply(tasks, c.Next())))
}

func TestByPriority(t *testing.T) {
	c := testClock()
	tasks := []ticktick.Task{
		{ID: "none", Priority: ticktick.PriorityNone},
		{ID: "high", Priority: ticktick.PriorityHigh},
	}

	f, err := ByPriority(ticktick.PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, []string{"high"}, ids(c.Apply(tasks, f)))

	for _, bad := range []int{-1, 2, 4, 6} {
		_, err := ByPriority(bad)
		var ve *ticktick.ValidationError
		assert.True(t, errors.As(err, &ve), "priority %d", bad)
	}
}

func TestSearch(t *testing.T) {
	c := testClock()
	tasks := []ticktick.Task{
		{ID: "title", Title: "Buy MILK"},
		{ID: "content", Content: "remember the milk"},
		{ID: "desc", Desc: "Milkshake"},
		{ID: "item", Items: []ticktick.ChecklistItem{{Title: "oat milk"}}},
		{ID: "miss", Title: "Walk the dog"},
	}

	f, err := Search("milk")
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "content", "desc", "item"}, ids(c.Apply(tasks, f)))

	_, err = Search("  ")
	assert.Error(t, err)
}

func TestSortByDue(t *testing.T) {
	c := testClock()
	tasks := []ticktick.Task{
		{ID: "undated-a"},
		{ID: "d2", DueDate: due(2)},
		{ID: "undated-b"},
		{ID: "d0", DueDate: due(0)},
		{ID: "d2-second", DueDate: due(2)},
	}

	c.SortByDue(tasks)
	assert.Equal(t, []string{"d0", "d2", "d2-second", "undated-a", "undated-b"}, ids(tasks))
}
