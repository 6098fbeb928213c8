package schedule

import (
	"errors"
	"time"
)

type Mode string

const (
	ModeFull    Mode = "full"
	ModeCascade Mode = "cascade"
)

// ErrMissingAnchor reports caller misuse: cascade mode without an anchor task.
var ErrMissingAnchor = errors.New("cascade mode requires an anchor task id")

type WarningType string

const (
	WarnNoDuration          WarningType = "no_duration"
	WarnStartBeforeViolated WarningType = "start_before_violated"
	WarnAlreadyCompleted    WarningType = "already_completed"
)

// Warning is informational only; it never blocks scheduling.
type Warning struct {
	TaskID  string
	Type    WarningType
	Message string
}

// Item is the computed schedule for one task. Previous dates are carried
// through from the input unchanged so callers can diff against stored state.
type Item struct {
	TaskID         string
	PreviousStart  *time.Time
	PreviousEnd    *time.Time
	ScheduledStart time.Time
	ScheduledEnd   time.Time
	LatestStart    time.Time
	LatestFinish   time.Time
	TotalFloat     int
	IsCritical     bool
}

// Result is the full output of one schedule run. A non-empty CycleNodes means
// the run was aborted: Items and CriticalPath are empty and must not be used.
type Result struct {
	Items        []Item
	CriticalPath []string
	Warnings     []Warning
	CycleNodes   []string
}

// node holds the per-run derived dates for one task. lfKnown stands in for an
// optional latest-finish so the backward fold needs no sentinel date.
type node struct {
	duration int
	es       time.Time
	ef       time.Time
	ls       time.Time
	lf       time.Time
	lfKnown  bool
}
