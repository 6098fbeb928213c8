package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/hylla/tidsplan/internal/domain"
	"github.com/hylla/tidsplan/internal/schedule"
)

type fakeRepo struct {
	tasks          map[string]domain.Task
	deps           map[string]domain.Dependency
	milestones     map[string]domain.Milestone
	contributions  []domain.MilestoneContribution
	requirements   []domain.MilestoneRequirement
	scheduleWrites int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		tasks:      map[string]domain.Task{},
		deps:       map[string]domain.Dependency{},
		milestones: map[string]domain.Milestone{},
	}
}

func (f *fakeRepo) CreateTask(_ context.Context, t domain.Task) error {
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeRepo) UpdateTask(_ context.Context, t domain.Task) error {
	if _, ok := f.tasks[t.ID]; !ok {
		return ErrNotFound
	}
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeRepo) GetTask(_ context.Context, id string) (domain.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return domain.Task{}, ErrNotFound
	}
	return t, nil
}

func (f *fakeRepo) ListTasks(_ context.Context) ([]domain.Task, error) {
	ids := make([]string, 0, len(f.tasks))
	for id := range f.tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]domain.Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.tasks[id])
	}
	return out, nil
}

func (f *fakeRepo) DeleteTask(_ context.Context, id string) error {
	if _, ok := f.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeRepo) UpdateTaskScheduleDates(_ context.Context, id string, start, end time.Time, updatedAt time.Time) error {
	t, ok := f.tasks[id]
	if !ok {
		return ErrNotFound
	}
	t.SetScheduledDates(start, end, updatedAt)
	f.tasks[id] = t
	f.scheduleWrites++
	return nil
}

func (f *fakeRepo) CreateDependency(_ context.Context, d domain.Dependency) error {
	f.deps[d.ID] = d
	return nil
}

func (f *fakeRepo) ListDependencies(_ context.Context) ([]domain.Dependency, error) {
	ids := make([]string, 0, len(f.deps))
	for id := range f.deps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]domain.Dependency, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.deps[id])
	}
	return out, nil
}

func (f *fakeRepo) DeleteDependency(_ context.Context, id string) error {
	if _, ok := f.deps[id]; !ok {
		return ErrNotFound
	}
	delete(f.deps, id)
	return nil
}

func (f *fakeRepo) CreateMilestone(_ context.Context, m domain.Milestone) error {
	f.milestones[m.ID] = m
	return nil
}

func (f *fakeRepo) GetMilestone(_ context.Context, id string) (domain.Milestone, error) {
	m, ok := f.milestones[id]
	if !ok {
		return domain.Milestone{}, ErrNotFound
	}
	return m, nil
}

func (f *fakeRepo) ListMilestones(_ context.Context) ([]domain.Milestone, error) {
	out := make([]domain.Milestone, 0, len(f.milestones))
	for _, m := range f.milestones {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) AddMilestoneContribution(_ context.Context, link domain.MilestoneContribution) error {
	f.contributions = append(f.contributions, link)
	return nil
}

func (f *fakeRepo) ListMilestoneContributions(_ context.Context) ([]domain.MilestoneContribution, error) {
	return f.contributions, nil
}

func (f *fakeRepo) AddMilestoneRequirement(_ context.Context, link domain.MilestoneRequirement) error {
	f.requirements = append(f.requirements, link)
	return nil
}

func (f *fakeRepo) ListMilestoneRequirements(_ context.Context) ([]domain.MilestoneRequirement, error) {
	return f.requirements, nil
}

func testService(repo Repository) *Service {
	counter := 0
	idGen := func() string {
		counter++
		return fmt.Sprintf("id-%d", counter)
	}
	clock := func() time.Time {
		return time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	}
	return NewService(repo, idGen, clock, nil)
}

func seedTask(t *testing.T, svc *Service, id string, duration int) {
	t.Helper()
	_, err := svc.CreateTask(context.Background(), domain.TaskInput{ID: id, Title: id, DurationDays: &duration})
	if err != nil {
		t.Fatalf("CreateTask(%s) error = %v", id, err)
	}
}

func TestCreateTaskGeneratesID(t *testing.T) {
	svc := testService(newFakeRepo())
	task, err := svc.CreateTask(context.Background(), domain.TaskInput{Title: "untitled work"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if task.ID != "id-1" {
		t.Fatalf("expected generated id, got %q", task.ID)
	}
}

func TestCreateDependencyRejectsCycle(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := testService(repo)
	seedTask(t, svc, "a", 1)
	seedTask(t, svc, "b", 1)
	seedTask(t, svc, "c", 1)

	if _, err := svc.CreateDependency(ctx, "a", "b", domain.FinishToStart, 0); err != nil {
		t.Fatalf("CreateDependency(a->b) error = %v", err)
	}
	if _, err := svc.CreateDependency(ctx, "b", "c", domain.FinishToStart, 0); err != nil {
		t.Fatalf("CreateDependency(b->c) error = %v", err)
	}
	if _, err := svc.CreateDependency(ctx, "c", "a", domain.FinishToStart, 0); !errors.Is(err, ErrWouldCycle) {
		t.Fatalf("expected ErrWouldCycle, got %v", err)
	}
	if _, err := svc.CreateDependency(ctx, "b", "a", domain.StartToStart, 0); !errors.Is(err, ErrWouldCycle) {
		t.Fatalf("expected ErrWouldCycle for direct back-edge, got %v", err)
	}
	if len(repo.deps) != 2 {
		t.Fatalf("rejected edges were persisted: %d", len(repo.deps))
	}
}

func TestCreateDependencyRequiresBothTasks(t *testing.T) {
	svc := testService(newFakeRepo())
	seedTask(t, svc, "a", 1)
	if _, err := svc.CreateDependency(context.Background(), "a", "ghost", domain.FinishToStart, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReconcileWritesOnlyChangedDates(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := testService(repo)
	seedTask(t, svc, "a", 5)
	seedTask(t, svc, "b", 3)
	if _, err := svc.CreateDependency(ctx, "a", "b", domain.FinishToStart, 0); err != nil {
		t.Fatalf("CreateDependency() error = %v", err)
	}

	updated, err := svc.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected 2 updates, got %d", updated)
	}

	a := repo.tasks["a"]
	if a.StartDate == nil || !a.StartDate.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("a start not persisted: %v", a.StartDate)
	}
	b := repo.tasks["b"]
	if b.EndDate == nil || !b.EndDate.Equal(time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("b end not persisted: %v", b.EndDate)
	}

	// Same inputs, same today: nothing moves on the second run.
	repo.scheduleWrites = 0
	updated, err = svc.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile() second run error = %v", err)
	}
	if updated != 0 || repo.scheduleWrites != 0 {
		t.Fatalf("second reconcile wrote: updated=%d writes=%d", updated, repo.scheduleWrites)
	}
}

func TestReconcileCycleIsNoOp(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := testService(repo)
	seedTask(t, svc, "a", 1)
	seedTask(t, svc, "b", 1)
	// Plant a cycle behind the service's back; reconcile must refuse to write.
	repo.deps["d1"] = domain.Dependency{ID: "d1", PredecessorID: "a", SuccessorID: "b", Type: domain.FinishToStart}
	repo.deps["d2"] = domain.Dependency{ID: "d2", PredecessorID: "b", SuccessorID: "a", Type: domain.FinishToStart}

	updated, err := svc.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if updated != 0 || repo.scheduleWrites != 0 {
		t.Fatalf("cycle reconcile wrote: updated=%d writes=%d", updated, repo.scheduleWrites)
	}
}

func TestReconcileExpandsMilestones(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := testService(repo)
	seedTask(t, svc, "x", 5)
	seedTask(t, svc, "z", 1)
	milestone, err := svc.CreateMilestone(ctx, "phase one", nil)
	if err != nil {
		t.Fatalf("CreateMilestone() error = %v", err)
	}
	if err := svc.AddMilestoneContribution(ctx, milestone.ID, "x"); err != nil {
		t.Fatalf("AddMilestoneContribution() error = %v", err)
	}
	if err := svc.AddMilestoneRequirement(ctx, "z", milestone.ID); err != nil {
		t.Fatalf("AddMilestoneRequirement() error = %v", err)
	}

	if _, err := svc.Reconcile(ctx); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	z := repo.tasks["z"]
	if z.StartDate == nil || !z.StartDate.Equal(time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("z not constrained by milestone contributor finish: %v", z.StartDate)
	}
}

func TestPreviewSurfacesCompletedTaskWarning(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := testService(repo)
	seedTask(t, svc, "a", 2)
	if _, err := svc.CompleteTask(ctx, "a"); err != nil {
		t.Fatalf("CompleteTask() error = %v", err)
	}

	result, err := svc.Preview(ctx, schedule.ModeFull, "")
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	found := false
	for _, w := range result.Warnings {
		if w.TaskID == "a" && w.Type == schedule.WarnAlreadyCompleted {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected already-completed warning, got %+v", result.Warnings)
	}
}

func TestPreviewCascadeDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := testService(repo)
	seedTask(t, svc, "a", 2)
	seedTask(t, svc, "b", 2)
	if _, err := svc.CreateDependency(ctx, "a", "b", domain.FinishToStart, 0); err != nil {
		t.Fatalf("CreateDependency() error = %v", err)
	}

	result, err := svc.Preview(ctx, schedule.ModeCascade, "b")
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].TaskID != "b" {
		t.Fatalf("cascade preview scheduled %+v", result.Items)
	}
	if repo.scheduleWrites != 0 {
		t.Fatalf("preview must not write, got %d writes", repo.scheduleWrites)
	}
}
