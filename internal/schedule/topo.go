package schedule

import (
	"sort"

	"github.com/hylla/tidsplan/internal/domain"
)

// topoSort runs Kahn's algorithm over the node set, honoring only edges whose
// endpoints both lie in the set. The ready queue is drained smallest ID first
// so the order is reproducible regardless of edge-list order. The second
// return value is the set of nodes whose in-degree never reached zero; when it
// is non-empty the graph contains a cycle and the order is only a prefix.
func topoSort(ids map[string]struct{}, deps []domain.Dependency) (order []string, cycleNodes []string) {
	inDegree := make(map[string]int, len(ids))
	successors := make(map[string][]string, len(ids))
	for id := range ids {
		inDegree[id] = 0
	}
	for _, dep := range deps {
		if _, ok := ids[dep.PredecessorID]; !ok {
			continue
		}
		if _, ok := ids[dep.SuccessorID]; !ok {
			continue
		}
		successors[dep.PredecessorID] = append(successors[dep.PredecessorID], dep.SuccessorID)
		inDegree[dep.SuccessorID]++
	}

	var ready []string
	for id, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}

	order = make([]string, 0, len(ids))
	for len(ready) > 0 {
		sort.Strings(ready)
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, succ := range successors[id] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				ready = append(ready, succ)
			}
		}
	}

	if len(order) < len(ids) {
		for id, deg := range inDegree {
			if deg > 0 {
				cycleNodes = append(cycleNodes, id)
			}
		}
		sort.Strings(cycleNodes)
	}
	return order, cycleNodes
}
