package ticktick

import (
	"strings"
	"time"
)

// Task priorities as defined by the open API.
const (
	PriorityNone   = 0
	PriorityLow    = 1
	PriorityMedium = 3
	PriorityHigh   = 5
)

// Task statuses.
const (
	StatusOpen      = 0
	StatusCompleted = 2
)

// Default values used when creating a project.
const (
	DefaultProjectColor    = "#F18181"
	DefaultProjectViewMode = "list"
	DefaultProjectKind     = "TASK"
)

// ValidPriority reports whether p is one of the four accepted priorities.
func ValidPriority(p int) bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// PriorityName returns the display name for p.
func PriorityName(p int) string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	default:
		return "None"
	}
}

// Project is a TickTick project (list).
type Project struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color,omitempty"`
	SortOrder  int64  `json:"sortOrder,omitempty"`
	Closed     bool   `json:"closed,omitempty"`
	GroupID    string `json:"groupId,omitempty"`
	ViewMode   string `json:"viewMode,omitempty"`
	Permission string `json:"permission,omitempty"`
	Kind       string `json:"kind,omitempty"`
}

// Column is a kanban column of a project.
type Column struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
	SortOrder int64  `json:"sortOrder,omitempty"`
}

// ProjectData is a project together with its open tasks.
type ProjectData struct {
	Project Project  `json:"project"`
	Tasks   []Task   `json:"tasks"`
	Columns []Column `json:"columns,omitempty"`
}

// ChecklistItem is an entry of a task's checklist.
type ChecklistItem struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Status        int    `json:"status"`
	CompletedTime string `json:"completedTime,omitempty"`
	IsAllDay      bool   `json:"isAllDay,omitempty"`
	SortOrder     int64  `json:"sortOrder"`
	StartDate     string `json:"startDate,omitempty"`
	TimeZone      string `json:"timeZone,omitempty"`
}

// Task is a TickTick task. Dates are kept in the provider's wire format.
type Task struct {
	ID            string          `json:"id"`
	ProjectID     string          `json:"projectId"`
	ParentID      string          `json:"parentId,omitempty"`
	Title         string          `json:"title"`
	Content       string          `json:"content,omitempty"`
	Desc          string          `json:"desc,omitempty"`
	IsAllDay      bool            `json:"isAllDay,omitempty"`
	StartDate     string          `json:"startDate,omitempty"`
	DueDate       string          `json:"dueDate,omitempty"`
	TimeZone      string          `json:"timeZone,omitempty"`
	Reminders     []string        `json:"reminders,omitempty"`
	RepeatFlag    string          `json:"repeatFlag,omitempty"`
	Priority      int             `json:"priority"`
	Status        int             `json:"status"`
	CompletedTime string          `json:"completedTime,omitempty"`
	SortOrder     int64           `json:"sortOrder"`
	Items         []ChecklistItem `json:"items,omitempty"`
	Tags          []string        `json:"tags,omitempty"`
}

// Completed reports whether the task is done.
func (t Task) Completed() bool { return t.Status == StatusCompleted }

// Due returns the task's due time in loc. ok is false when the task has no
// parsable due date.
func (t Task) Due(loc *time.Location) (due time.Time, ok bool) {
	if strings.TrimSpace(t.DueDate) == "" {
		return time.Time{}, false
	}
	d, err := ParseDate(t.DueDate, loc)
	if err != nil {
		return time.Time{}, false
	}
	return d.In(loc), true
}

// TaskSpec is the input for creating a task.
type TaskSpec struct {
	Title     string `json:"title" validate:"required"`
	ProjectID string `json:"projectId" validate:"required"`
	Content   string `json:"content,omitempty"`
	Desc      string `json:"desc,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	DueDate   string `json:"dueDate,omitempty"`
	TimeZone  string `json:"timeZone,omitempty"`
	Priority  int    `json:"priority" validate:"oneof=0 1 3 5"`
	IsAllDay  bool   `json:"isAllDay"`
	ParentID  string `json:"parentId,omitempty"`
	SortOrder *int64 `json:"sortOrder,omitempty"`
}

// TaskUpdate is the input for updating a task. Zero fields are left untouched.
type TaskUpdate struct {
	ID        string `json:"id" validate:"required"`
	ProjectID string `json:"projectId" validate:"required"`
	Title     string `json:"title,omitempty"`
	Content   string `json:"content,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	DueDate   string `json:"dueDate,omitempty"`
	Priority  *int   `json:"priority,omitempty" validate:"omitempty,oneof=0 1 3 5"`
	IsAllDay  *bool  `json:"isAllDay,omitempty"`
}

// ProjectSpec is the input for creating or updating a project. Empty fields
// take the defaults on create and are left untouched on update.
type ProjectSpec struct {
	Name     string `json:"name,omitempty"`
	Color    string `json:"color,omitempty"`
	ViewMode string `json:"viewMode,omitempty" validate:"omitempty,oneof=list kanban timeline"`
	Kind     string `json:"kind,omitempty" validate:"omitempty,oneof=TASK NOTE"`
}

// SubtaskSpec is the input for one subtask of a parent task.
type SubtaskSpec struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content,omitempty"`
	Priority int    `json:"priority" validate:"oneof=0 1 3 5"`
}

// BatchResult is the outcome of creating one task of a batch.
type BatchResult struct {
	Index int
	Spec  TaskSpec
	Task  *Task
	Err   error
}
