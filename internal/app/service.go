package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	charmLog "github.com/charmbracelet/log"
	"github.com/hylla/tidsplan/internal/domain"
	"github.com/hylla/tidsplan/internal/schedule"
)

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service represents service data used by this package.
type Service struct {
	repo   Repository
	idGen  IDGenerator
	clock  Clock
	logger *charmLog.Logger
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock, logger *charmLog.Logger) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = charmLog.New(io.Discard)
	}
	return &Service{
		repo:   repo,
		idGen:  idGen,
		clock:  clock,
		logger: logger,
	}
}

// CreateTask creates a task, generating an ID when the input omits one.
func (s *Service) CreateTask(ctx context.Context, in domain.TaskInput) (domain.Task, error) {
	if in.ID == "" {
		in.ID = s.idGen()
	}
	task, err := domain.NewTask(in, s.clock())
	if err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// GetTask gets the requested task.
func (s *Service) GetTask(ctx context.Context, id string) (domain.Task, error) {
	return s.repo.GetTask(ctx, id)
}

// ListTasks lists all tasks.
func (s *Service) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return s.repo.ListTasks(ctx)
}

// UpdateTaskDetails updates the editable fields of a task.
func (s *Service) UpdateTaskDetails(ctx context.Context, id, title string, durationDays *int, startAfter, startBefore *time.Time) (domain.Task, error) {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	if err := task.UpdateDetails(title, durationDays, startAfter, startBefore, s.clock()); err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return domain.Task{}, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// CompleteTask marks a task completed.
func (s *Service) CompleteTask(ctx context.Context, id string) (domain.Task, error) {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	task.Complete(s.clock())
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return domain.Task{}, fmt.Errorf("complete task: %w", err)
	}
	return task, nil
}

// DeleteTask deletes the requested task.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	return s.repo.DeleteTask(ctx, id)
}

// CreateDependency creates a typed edge between two existing tasks. An edge
// whose addition would close a cycle is rejected with ErrWouldCycle, which is
// what lets the reconciliation pass treat a detected cycle as a no-op.
func (s *Service) CreateDependency(ctx context.Context, predecessorID, successorID string, depType domain.DependencyType, leadLagDays int) (domain.Dependency, error) {
	dep, err := domain.NewDependency(s.idGen(), predecessorID, successorID, depType, leadLagDays, s.clock())
	if err != nil {
		return domain.Dependency{}, err
	}
	if _, err := s.repo.GetTask(ctx, dep.PredecessorID); err != nil {
		return domain.Dependency{}, fmt.Errorf("predecessor: %w", err)
	}
	if _, err := s.repo.GetTask(ctx, dep.SuccessorID); err != nil {
		return domain.Dependency{}, fmt.Errorf("successor: %w", err)
	}

	existing, err := s.repo.ListDependencies(ctx)
	if err != nil {
		return domain.Dependency{}, fmt.Errorf("list dependencies: %w", err)
	}
	if reaches(existing, dep.SuccessorID, dep.PredecessorID) {
		return domain.Dependency{}, ErrWouldCycle
	}

	if err := s.repo.CreateDependency(ctx, dep); err != nil {
		return domain.Dependency{}, fmt.Errorf("create dependency: %w", err)
	}
	return dep, nil
}

// ListDependencies lists all dependencies.
func (s *Service) ListDependencies(ctx context.Context) ([]domain.Dependency, error) {
	return s.repo.ListDependencies(ctx)
}

// DeleteDependency deletes the requested dependency.
func (s *Service) DeleteDependency(ctx context.Context, id string) error {
	return s.repo.DeleteDependency(ctx, id)
}

// CreateMilestone creates a milestone.
func (s *Service) CreateMilestone(ctx context.Context, name string, dueDate *time.Time) (domain.Milestone, error) {
	milestone, err := domain.NewMilestone(s.idGen(), name, dueDate, s.clock())
	if err != nil {
		return domain.Milestone{}, err
	}
	if err := s.repo.CreateMilestone(ctx, milestone); err != nil {
		return domain.Milestone{}, fmt.Errorf("create milestone: %w", err)
	}
	return milestone, nil
}

// ListMilestones lists all milestones.
func (s *Service) ListMilestones(ctx context.Context) ([]domain.Milestone, error) {
	return s.repo.ListMilestones(ctx)
}

// AddMilestoneContribution records that a task's completion feeds a milestone.
func (s *Service) AddMilestoneContribution(ctx context.Context, milestoneID, taskID string) error {
	link, err := domain.NewMilestoneContribution(milestoneID, taskID)
	if err != nil {
		return err
	}
	if _, err := s.repo.GetMilestone(ctx, link.MilestoneID); err != nil {
		return fmt.Errorf("milestone: %w", err)
	}
	if _, err := s.repo.GetTask(ctx, link.TaskID); err != nil {
		return fmt.Errorf("task: %w", err)
	}
	return s.repo.AddMilestoneContribution(ctx, link)
}

// AddMilestoneRequirement records that a task must wait on a milestone.
func (s *Service) AddMilestoneRequirement(ctx context.Context, taskID, milestoneID string) error {
	link, err := domain.NewMilestoneRequirement(taskID, milestoneID)
	if err != nil {
		return err
	}
	if _, err := s.repo.GetTask(ctx, link.TaskID); err != nil {
		return fmt.Errorf("task: %w", err)
	}
	if _, err := s.repo.GetMilestone(ctx, link.MilestoneID); err != nil {
		return fmt.Errorf("milestone: %w", err)
	}
	return s.repo.AddMilestoneRequirement(ctx, link)
}

// Preview runs the scheduling engine against live state without writing
// anything back. Milestone links are expanded in full mode only; a cascade
// run is an ad-hoc what-does-this-push query on real edges.
func (s *Service) Preview(ctx context.Context, mode schedule.Mode, anchorTaskID string) (schedule.Result, error) {
	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return schedule.Result{}, fmt.Errorf("list tasks: %w", err)
	}
	deps, err := s.repo.ListDependencies(ctx)
	if err != nil {
		return schedule.Result{}, fmt.Errorf("list dependencies: %w", err)
	}
	if mode == schedule.ModeFull {
		contributions, err := s.repo.ListMilestoneContributions(ctx)
		if err != nil {
			return schedule.Result{}, fmt.Errorf("list milestone contributions: %w", err)
		}
		requirements, err := s.repo.ListMilestoneRequirements(ctx)
		if err != nil {
			return schedule.Result{}, fmt.Errorf("list milestone requirements: %w", err)
		}
		deps = schedule.ExpandMilestones(deps, contributions, requirements)
	}
	return schedule.Schedule(mode, anchorTaskID, tasks, deps, s.clock())
}

// Reconcile recomputes the full schedule and persists only the tasks whose
// start or end date actually moved. It returns the number of tasks written.
// A reported cycle is a defensive no-op: dependency creation already rejects
// cycles, so nothing is written and zero is returned.
func (s *Service) Reconcile(ctx context.Context) (int, error) {
	result, err := s.Preview(ctx, schedule.ModeFull, "")
	if err != nil {
		return 0, err
	}
	if len(result.CycleNodes) > 0 {
		s.logger.Warn("reconcile skipped: dependency cycle", "nodes", result.CycleNodes)
		return 0, nil
	}

	now := s.clock()
	updated := 0
	for _, item := range result.Items {
		if sameDate(item.PreviousStart, item.ScheduledStart) && sameDate(item.PreviousEnd, item.ScheduledEnd) {
			continue
		}
		if err := s.repo.UpdateTaskScheduleDates(ctx, item.TaskID, item.ScheduledStart, item.ScheduledEnd, now); err != nil {
			return updated, fmt.Errorf("update schedule dates for %s: %w", item.TaskID, err)
		}
		updated++
	}
	s.logger.Debug("reconcile complete", "tasks", len(result.Items), "updated", updated, "warnings", len(result.Warnings))
	return updated, nil
}

// reaches reports whether `from` can reach `to` following successor edges.
func reaches(deps []domain.Dependency, from, to string) bool {
	successors := make(map[string][]string, len(deps))
	for _, dep := range deps {
		successors[dep.PredecessorID] = append(successors[dep.PredecessorID], dep.SuccessorID)
	}
	queue := []string{from}
	visited := map[string]struct{}{from: {}}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == to {
			return true
		}
		for _, succ := range successors[id] {
			if _, seen := visited[succ]; seen {
				continue
			}
			visited[succ] = struct{}{}
			queue = append(queue, succ)
		}
	}
	return false
}

func sameDate(stored *time.Time, computed time.Time) bool {
	return stored != nil && stored.Equal(computed)
}

// IsNotFound reports whether err is the repository's not-found condition.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
