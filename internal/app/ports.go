package app

import (
	"context"
	"time"

	"github.com/hylla/tidsplan/internal/domain"
)

// Repository represents repository data used by this package.
type Repository interface {
	CreateTask(context.Context, domain.Task) error
	UpdateTask(context.Context, domain.Task) error
	GetTask(context.Context, string) (domain.Task, error)
	ListTasks(context.Context) ([]domain.Task, error)
	DeleteTask(context.Context, string) error
	UpdateTaskScheduleDates(ctx context.Context, id string, start, end time.Time, updatedAt time.Time) error

	CreateDependency(context.Context, domain.Dependency) error
	ListDependencies(context.Context) ([]domain.Dependency, error)
	DeleteDependency(context.Context, string) error

	CreateMilestone(context.Context, domain.Milestone) error
	GetMilestone(context.Context, string) (domain.Milestone, error)
	ListMilestones(context.Context) ([]domain.Milestone, error)

	AddMilestoneContribution(context.Context, domain.MilestoneContribution) error
	ListMilestoneContributions(context.Context) ([]domain.MilestoneContribution, error)
	AddMilestoneRequirement(context.Context, domain.MilestoneRequirement) error
	ListMilestoneRequirements(context.Context) ([]domain.MilestoneRequirement, error)
}
