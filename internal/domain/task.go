package domain

import (
	"slices"
	"strings"
	"time"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

var validStatuses = []TaskStatus{StatusTodo, StatusInProgress, StatusCompleted}

type Task struct {
	ID           string
	Title        string
	Status       TaskStatus
	StartDate    *time.Time
	EndDate      *time.Time
	DurationDays *int
	StartAfter   *time.Time
	StartBefore  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type TaskInput struct {
	ID           string
	Title        string
	Status       TaskStatus
	StartDate    *time.Time
	EndDate      *time.Time
	DurationDays *int
	StartAfter   *time.Time
	StartBefore  *time.Time
}

func NewTask(in TaskInput, now time.Time) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)

	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if in.Title == "" {
		return Task{}, ErrInvalidTitle
	}
	if in.Status == "" {
		in.Status = StatusTodo
	}
	if !slices.Contains(validStatuses, in.Status) {
		return Task{}, ErrInvalidStatus
	}
	if in.DurationDays != nil && *in.DurationDays < 0 {
		return Task{}, ErrInvalidDuration
	}

	return Task{
		ID:           in.ID,
		Title:        in.Title,
		Status:       in.Status,
		StartDate:    normalizeDate(in.StartDate),
		EndDate:      normalizeDate(in.EndDate),
		DurationDays: in.DurationDays,
		StartAfter:   normalizeDate(in.StartAfter),
		StartBefore:  normalizeDate(in.StartBefore),
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}, nil
}

func (t *Task) UpdateDetails(title string, durationDays *int, startAfter, startBefore *time.Time, now time.Time) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrInvalidTitle
	}
	if durationDays != nil && *durationDays < 0 {
		return ErrInvalidDuration
	}
	t.Title = title
	t.DurationDays = durationDays
	t.StartAfter = normalizeDate(startAfter)
	t.StartBefore = normalizeDate(startBefore)
	t.UpdatedAt = now.UTC()
	return nil
}

func (t *Task) SetStatus(status TaskStatus, now time.Time) error {
	if !slices.Contains(validStatuses, status) {
		return ErrInvalidStatus
	}
	t.Status = status
	t.UpdatedAt = now.UTC()
	return nil
}

func (t *Task) Complete(now time.Time) {
	t.Status = StatusCompleted
	t.UpdatedAt = now.UTC()
}

// SetScheduledDates overwrites the persisted schedule window. Only the
// reconciliation pass calls this.
func (t *Task) SetScheduledDates(start, end time.Time, now time.Time) {
	s := dayUTC(start)
	e := dayUTC(end)
	t.StartDate = &s
	t.EndDate = &e
	t.UpdatedAt = now.UTC()
}

// normalizeDate truncates to a date-only value anchored at midnight UTC.
func normalizeDate(ts *time.Time) *time.Time {
	if ts == nil {
		return nil
	}
	day := dayUTC(*ts)
	return &day
}

func dayUTC(ts time.Time) time.Time {
	u := ts.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
