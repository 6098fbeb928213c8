package schedule

import (
	"strings"

	"github.com/hylla/tidsplan/internal/domain"
)

// selectScope resolves the set of task IDs one run will schedule. Full mode
// takes every task; cascade mode takes the forward closure of the anchor,
// anchor included. IDs without a backing task record are dropped so stale
// edges cannot smuggle phantom nodes into the run.
func selectScope(mode Mode, anchorTaskID string, tasks map[string]domain.Task, deps []domain.Dependency) (map[string]struct{}, error) {
	scope := make(map[string]struct{}, len(tasks))

	switch mode {
	case ModeCascade:
		anchor := strings.TrimSpace(anchorTaskID)
		if anchor == "" {
			return nil, ErrMissingAnchor
		}
		successors := make(map[string][]string)
		for _, dep := range deps {
			successors[dep.PredecessorID] = append(successors[dep.PredecessorID], dep.SuccessorID)
		}
		queue := []string{anchor}
		visited := map[string]struct{}{anchor: {}}
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			for _, succ := range successors[id] {
				if _, seen := visited[succ]; seen {
					continue
				}
				visited[succ] = struct{}{}
				queue = append(queue, succ)
			}
		}
		for id := range visited {
			if _, ok := tasks[id]; ok {
				scope[id] = struct{}{}
			}
		}
	default:
		for id := range tasks {
			scope[id] = struct{}{}
		}
	}

	return scope, nil
}
