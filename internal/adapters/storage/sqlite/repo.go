package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hylla/tidsplan/internal/app"
	"github.com/hylla/tidsplan/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// dateLayout is the storage form for date-only columns.
const dateLayout = "2006-01-02"

// Repository represents repository data used by this package.
type Repository struct {
	db *sql.DB
}

// Open opens the requested operation.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens in memory.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'todo',
			start_date TEXT,
			end_date TEXT,
			duration_days INTEGER,
			start_after TEXT,
			start_before TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS dependencies (
			id TEXT PRIMARY KEY,
			predecessor_id TEXT NOT NULL,
			successor_id TEXT NOT NULL,
			dependency_type TEXT NOT NULL DEFAULT 'finish_to_start',
			lead_lag_days INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			FOREIGN KEY(predecessor_id) REFERENCES tasks(id) ON DELETE CASCADE,
			FOREIGN KEY(successor_id) REFERENCES tasks(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS milestones (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			due_date TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS milestone_contributions (
			milestone_id TEXT NOT NULL,
			task_id TEXT NOT NULL,
			PRIMARY KEY (milestone_id, task_id),
			FOREIGN KEY(milestone_id) REFERENCES milestones(id) ON DELETE CASCADE,
			FOREIGN KEY(task_id) REFERENCES tasks(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS milestone_requirements (
			task_id TEXT NOT NULL,
			milestone_id TEXT NOT NULL,
			PRIMARY KEY (task_id, milestone_id),
			FOREIGN KEY(task_id) REFERENCES tasks(id) ON DELETE CASCADE,
			FOREIGN KEY(milestone_id) REFERENCES milestones(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_dependencies_predecessor ON dependencies(predecessor_id);`,
		`CREATE INDEX IF NOT EXISTS idx_dependencies_successor ON dependencies(successor_id);`,
		`CREATE INDEX IF NOT EXISTS idx_milestone_contributions_task ON milestone_contributions(task_id);`,
		`CREATE INDEX IF NOT EXISTS idx_milestone_requirements_milestone ON milestone_requirements(milestone_id);`,
	}

	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// CreateTask creates task.
func (r *Repository) CreateTask(ctx context.Context, t domain.Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks(id, title, status, start_date, end_date, duration_days, start_after, start_before, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID,
		t.Title,
		string(t.Status),
		nullableDate(t.StartDate),
		nullableDate(t.EndDate),
		nullableInt(t.DurationDays),
		nullableDate(t.StartAfter),
		nullableDate(t.StartBefore),
		t.CreatedAt.UTC().Format(time.RFC3339Nano),
		t.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// UpdateTask updates task.
func (r *Repository) UpdateTask(ctx context.Context, t domain.Task) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, status = ?, start_date = ?, end_date = ?, duration_days = ?, start_after = ?, start_before = ?, updated_at = ?
		WHERE id = ?
	`,
		t.Title,
		string(t.Status),
		nullableDate(t.StartDate),
		nullableDate(t.EndDate),
		nullableInt(t.DurationDays),
		nullableDate(t.StartAfter),
		nullableDate(t.StartBefore),
		t.UpdatedAt.UTC().Format(time.RFC3339Nano),
		t.ID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// GetTask gets the requested task.
func (r *Repository) GetTask(ctx context.Context, id string) (domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, status, start_date, end_date, duration_days, start_after, start_before, created_at, updated_at
		FROM tasks
		WHERE id = ?
	`, id)
	return scanTask(row)
}

// ListTasks lists all tasks ordered by id for stable output.
func (r *Repository) ListTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, status, start_date, end_date, duration_days, start_after, start_before, created_at, updated_at
		FROM tasks
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteTask deletes the requested task.
func (r *Repository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// UpdateTaskScheduleDates writes back recomputed dates for one task. Only the
// reconciliation pass calls this, and only when the dates actually changed.
func (r *Repository) UpdateTaskScheduleDates(ctx context.Context, id string, start, end time.Time, updatedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET start_date = ?, end_date = ?, updated_at = ?
		WHERE id = ?
	`,
		start.UTC().Format(dateLayout),
		end.UTC().Format(dateLayout),
		updatedAt.UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// CreateDependency creates dependency.
func (r *Repository) CreateDependency(ctx context.Context, d domain.Dependency) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dependencies(id, predecessor_id, successor_id, dependency_type, lead_lag_days, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		d.ID,
		d.PredecessorID,
		d.SuccessorID,
		string(d.Type),
		d.LeadLagDays,
		d.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// ListDependencies lists all dependencies.
func (r *Repository) ListDependencies(ctx context.Context) ([]domain.Dependency, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, predecessor_id, successor_id, dependency_type, lead_lag_days, created_at
		FROM dependencies
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Dependency{}
	for rows.Next() {
		var (
			d          domain.Dependency
			depType    string
			createdRaw string
		)
		if err := rows.Scan(&d.ID, &d.PredecessorID, &d.SuccessorID, &depType, &d.LeadLagDays, &createdRaw); err != nil {
			return nil, err
		}
		d.Type = domain.DependencyType(depType)
		d.CreatedAt = parseTS(createdRaw)
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteDependency deletes the requested dependency.
func (r *Repository) DeleteDependency(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dependencies WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// CreateMilestone creates milestone.
func (r *Repository) CreateMilestone(ctx context.Context, m domain.Milestone) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO milestones(id, name, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		m.ID,
		m.Name,
		nullableDate(m.DueDate),
		m.CreatedAt.UTC().Format(time.RFC3339Nano),
		m.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// GetMilestone gets the requested milestone.
func (r *Repository) GetMilestone(ctx context.Context, id string) (domain.Milestone, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, due_date, created_at, updated_at
		FROM milestones
		WHERE id = ?
	`, id)
	return scanMilestone(row)
}

// ListMilestones lists all milestones.
func (r *Repository) ListMilestones(ctx context.Context) ([]domain.Milestone, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, due_date, created_at, updated_at
		FROM milestones
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Milestone{}
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// AddMilestoneContribution adds a milestone contribution link.
func (r *Repository) AddMilestoneContribution(ctx context.Context, link domain.MilestoneContribution) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO milestone_contributions(milestone_id, task_id)
		VALUES (?, ?)
	`, link.MilestoneID, link.TaskID)
	return err
}

// ListMilestoneContributions lists all milestone contribution links.
func (r *Repository) ListMilestoneContributions(ctx context.Context) ([]domain.MilestoneContribution, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT milestone_id, task_id
		FROM milestone_contributions
		ORDER BY milestone_id ASC, task_id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.MilestoneContribution{}
	for rows.Next() {
		var link domain.MilestoneContribution
		if err := rows.Scan(&link.MilestoneID, &link.TaskID); err != nil {
			return nil, err
		}
		out = append(out, link)
	}
	return out, rows.Err()
}

// AddMilestoneRequirement adds a milestone requirement link.
func (r *Repository) AddMilestoneRequirement(ctx context.Context, link domain.MilestoneRequirement) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO milestone_requirements(task_id, milestone_id)
		VALUES (?, ?)
	`, link.TaskID, link.MilestoneID)
	return err
}

// ListMilestoneRequirements lists all milestone requirement links.
func (r *Repository) ListMilestoneRequirements(ctx context.Context) ([]domain.MilestoneRequirement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT task_id, milestone_id
		FROM milestone_requirements
		ORDER BY task_id ASC, milestone_id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.MilestoneRequirement{}
	for rows.Next() {
		var link domain.MilestoneRequirement
		if err := rows.Scan(&link.TaskID, &link.MilestoneID); err != nil {
			return nil, err
		}
		out = append(out, link)
	}
	return out, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTask handles scan task.
func scanTask(s scanner) (domain.Task, error) {
	var (
		t           domain.Task
		status      string
		startRaw    sql.NullString
		endRaw      sql.NullString
		durationRaw sql.NullInt64
		afterRaw    sql.NullString
		beforeRaw   sql.NullString
		createdRaw  string
		updatedRaw  string
	)
	if err := s.Scan(&t.ID, &t.Title, &status, &startRaw, &endRaw, &durationRaw, &afterRaw, &beforeRaw, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, app.ErrNotFound
		}
		return domain.Task{}, err
	}
	t.Status = domain.TaskStatus(status)
	t.StartDate = parseNullDate(startRaw)
	t.EndDate = parseNullDate(endRaw)
	t.StartAfter = parseNullDate(afterRaw)
	t.StartBefore = parseNullDate(beforeRaw)
	if durationRaw.Valid {
		d := int(durationRaw.Int64)
		t.DurationDays = &d
	}
	t.CreatedAt = parseTS(createdRaw)
	t.UpdatedAt = parseTS(updatedRaw)
	return t, nil
}

// scanMilestone handles scan milestone.
func scanMilestone(s scanner) (domain.Milestone, error) {
	var (
		m          domain.Milestone
		dueRaw     sql.NullString
		createdRaw string
		updatedRaw string
	)
	if err := s.Scan(&m.ID, &m.Name, &dueRaw, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Milestone{}, app.ErrNotFound
		}
		return domain.Milestone{}, err
	}
	m.DueDate = parseNullDate(dueRaw)
	m.CreatedAt = parseTS(createdRaw)
	m.UpdatedAt = parseTS(updatedRaw)
	return m, nil
}

// requireRowAffected maps zero-row writes to app.ErrNotFound.
func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return app.ErrNotFound
	}
	return nil
}

// nullableDate handles nullable date columns.
func nullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(dateLayout)
}

// nullableInt handles nullable integer columns.
func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// parseTS parses input into a normalized form.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

// parseNullDate parses a nullable date-only column.
func parseNullDate(v sql.NullString) *time.Time {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	ts, err := time.ParseInLocation(dateLayout, v.String, time.UTC)
	if err != nil {
		return nil
	}
	return &ts
}
