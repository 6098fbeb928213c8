package domain

import (
	"strings"
	"time"
)

type Milestone struct {
	ID        string
	Name      string
	DueDate   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewMilestone(id, name string, dueDate *time.Time, now time.Time) (Milestone, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return Milestone{}, ErrInvalidID
	}
	if name == "" {
		return Milestone{}, ErrInvalidName
	}
	return Milestone{
		ID:        id,
		Name:      name,
		DueDate:   normalizeDate(dueDate),
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}, nil
}

// MilestoneContribution marks a task whose completion feeds a milestone.
type MilestoneContribution struct {
	MilestoneID string
	TaskID      string
}

// MilestoneRequirement marks a task that must wait on a milestone.
type MilestoneRequirement struct {
	TaskID      string
	MilestoneID string
}

func NewMilestoneContribution(milestoneID, taskID string) (MilestoneContribution, error) {
	milestoneID = strings.TrimSpace(milestoneID)
	taskID = strings.TrimSpace(taskID)
	if milestoneID == "" || taskID == "" {
		return MilestoneContribution{}, ErrInvalidID
	}
	return MilestoneContribution{MilestoneID: milestoneID, TaskID: taskID}, nil
}

func NewMilestoneRequirement(taskID, milestoneID string) (MilestoneRequirement, error) {
	taskID = strings.TrimSpace(taskID)
	milestoneID = strings.TrimSpace(milestoneID)
	if taskID == "" || milestoneID == "" {
		return MilestoneRequirement{}, ErrInvalidID
	}
	return MilestoneRequirement{TaskID: taskID, MilestoneID: milestoneID}, nil
}
