package schedule

import (
	"fmt"
	"time"

	"github.com/hylla/tidsplan/internal/domain"
)

const dateLayout = "2006-01-02"

// Schedule runs the critical path method over the given tasks and
// dependencies. It is pure: identical inputs, including today, produce
// identical output, and no state survives between calls. Cascade mode
// restricts the run to anchorTaskID and its downstream closure; full mode
// schedules everything. A detected cycle short-circuits the run and is
// reported through Result.CycleNodes rather than an error.
func Schedule(mode Mode, anchorTaskID string, tasks []domain.Task, deps []domain.Dependency, today time.Time) (Result, error) {
	taskByID := make(map[string]domain.Task, len(tasks))
	for _, t := range tasks {
		taskByID[t.ID] = t
	}

	scope, err := selectScope(mode, anchorTaskID, taskByID, deps)
	if err != nil {
		return Result{}, err
	}
	if len(scope) == 0 {
		return Result{Items: []Item{}, CriticalPath: []string{}, Warnings: []Warning{}}, nil
	}

	// Only edges fully inside the scope participate; dangling endpoints are
	// dropped here, never reported.
	retained := make([]domain.Dependency, 0, len(deps))
	for _, dep := range deps {
		if _, ok := scope[dep.PredecessorID]; !ok {
			continue
		}
		if _, ok := scope[dep.SuccessorID]; !ok {
			continue
		}
		retained = append(retained, dep)
	}

	order, cycleNodes := topoSort(scope, retained)
	if len(cycleNodes) > 0 {
		return Result{Items: []Item{}, CriticalPath: []string{}, Warnings: []Warning{}, CycleNodes: cycleNodes}, nil
	}

	incoming := make(map[string][]domain.Dependency, len(scope))
	outgoing := make(map[string][]domain.Dependency, len(scope))
	for _, dep := range retained {
		incoming[dep.SuccessorID] = append(incoming[dep.SuccessorID], dep)
		outgoing[dep.PredecessorID] = append(outgoing[dep.PredecessorID], dep)
	}

	nodes := make(map[string]*node, len(scope))
	var warnings []Warning

	// Forward pass: earliest start/finish in topological order.
	startFloor := Day(today)
	for _, id := range order {
		task := taskByID[id]
		n := &node{}
		if task.DurationDays != nil {
			n.duration = *task.DurationDays
		} else {
			warnings = append(warnings, Warning{
				TaskID:  id,
				Type:    WarnNoDuration,
				Message: "task has no duration; scheduling as 0 days",
			})
		}

		var es *time.Time
		for _, dep := range incoming[id] {
			pred := nodes[dep.PredecessorID]
			contribution := earliestStartFor(dep, pred, n.duration)
			if es == nil || contribution.After(*es) {
				es = &contribution
			}
		}
		if es == nil {
			// No in-scope predecessors: today is the universal start floor.
			start := startFloor
			es = &start
		}
		if task.StartAfter != nil {
			// Hard floor, wins over anything predecessor-derived.
			clamped := maxDay(*es, *task.StartAfter)
			es = &clamped
		}
		n.es = *es
		n.ef = AddDays(n.es, n.duration)
		nodes[id] = n

		if task.StartBefore != nil && n.es.After(*task.StartBefore) {
			warnings = append(warnings, Warning{
				TaskID:  id,
				Type:    WarnStartBeforeViolated,
				Message: fmt.Sprintf("scheduled start %s is after start-before %s", n.es.Format(dateLayout), task.StartBefore.Format(dateLayout)),
			})
		}
		if task.Status == domain.StatusCompleted && completedDatesMoved(task, n) {
			warnings = append(warnings, Warning{
				TaskID:  id,
				Type:    WarnAlreadyCompleted,
				Message: fmt.Sprintf("completed task would be rescheduled to %s - %s", n.es.Format(dateLayout), n.ef.Format(dateLayout)),
			})
		}
	}

	// Backward pass: latest finish/start in reverse topological order.
	// Terminal tasks anchor to their own earliest finish, so the project end
	// derived by the forward pass bounds everything behind it.
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		n := nodes[id]
		for _, dep := range outgoing[id] {
			succ := nodes[dep.SuccessorID]
			contribution := latestFinishFor(dep, succ, n.duration)
			if !n.lfKnown || contribution.Before(n.lf) {
				n.lf = contribution
				n.lfKnown = true
			}
		}
		if !n.lfKnown {
			n.lf = n.ef
			n.lfKnown = true
		}
		n.ls = AddDays(n.lf, -n.duration)
	}

	items := make([]Item, 0, len(order))
	criticalPath := make([]string, 0)
	for _, id := range order {
		task := taskByID[id]
		n := nodes[id]
		rawFloat := DaysBetween(n.es, n.ls)
		critical := rawFloat <= 0
		totalFloat := rawFloat
		if totalFloat < 0 {
			// Infeasible constraint combinations clamp to zero; criticality
			// already carries the signal.
			totalFloat = 0
		}
		items = append(items, Item{
			TaskID:         id,
			PreviousStart:  task.StartDate,
			PreviousEnd:    task.EndDate,
			ScheduledStart: n.es,
			ScheduledEnd:   n.ef,
			LatestStart:    n.ls,
			LatestFinish:   n.lf,
			TotalFloat:     totalFloat,
			IsCritical:     critical,
		})
		if critical {
			criticalPath = append(criticalPath, id)
		}
	}

	if warnings == nil {
		warnings = []Warning{}
	}
	return Result{Items: items, CriticalPath: criticalPath, Warnings: warnings}, nil
}

// earliestStartFor returns one incoming dependency's lower bound on the
// successor's earliest start.
func earliestStartFor(dep domain.Dependency, pred *node, successorDuration int) time.Time {
	lag := dep.LeadLagDays
	switch dep.Type {
	case domain.StartToStart:
		return AddDays(pred.es, lag)
	case domain.FinishToFinish:
		return AddDays(pred.ef, lag-successorDuration)
	case domain.StartToFinish:
		return AddDays(pred.es, lag-successorDuration)
	default: // finish_to_start
		return AddDays(pred.ef, lag)
	}
}

// latestFinishFor returns one outgoing dependency's upper bound on the
// predecessor's latest finish.
func latestFinishFor(dep domain.Dependency, succ *node, predecessorDuration int) time.Time {
	lag := dep.LeadLagDays
	switch dep.Type {
	case domain.StartToStart:
		return AddDays(succ.ls, predecessorDuration-lag)
	case domain.FinishToFinish:
		return AddDays(succ.lf, -lag)
	case domain.StartToFinish:
		return AddDays(succ.lf, predecessorDuration-lag)
	default: // finish_to_start
		return AddDays(succ.ls, -lag)
	}
}

// completedDatesMoved reports whether the freshly computed window differs
// from the dates stored for an already completed task.
func completedDatesMoved(task domain.Task, n *node) bool {
	if task.StartDate == nil || task.EndDate == nil {
		return true
	}
	return !n.es.Equal(*task.StartDate) || !n.ef.Equal(*task.EndDate)
}
