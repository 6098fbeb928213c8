package schedule

import (
	"fmt"

	"github.com/hylla/tidsplan/internal/domain"
)

// ExpandMilestones merges milestone requirement links into the dependency
// list as synthetic zero-lag finish_to_start edges. A task that requires
// milestone M ends up waiting on the finish of every task contributing to M,
// without milestones becoming scheduling nodes themselves. Self-references
// are skipped. The input slice is not mutated.
func ExpandMilestones(deps []domain.Dependency, contributions []domain.MilestoneContribution, requirements []domain.MilestoneRequirement) []domain.Dependency {
	contributors := make(map[string][]string, len(contributions))
	for _, c := range contributions {
		contributors[c.MilestoneID] = append(contributors[c.MilestoneID], c.TaskID)
	}

	out := make([]domain.Dependency, len(deps), len(deps)+len(requirements))
	copy(out, deps)
	for _, req := range requirements {
		for _, contributor := range contributors[req.MilestoneID] {
			if contributor == req.TaskID {
				continue
			}
			out = append(out, domain.Dependency{
				ID:            fmt.Sprintf("milestone:%s:%s->%s", req.MilestoneID, contributor, req.TaskID),
				PredecessorID: contributor,
				SuccessorID:   req.TaskID,
				Type:          domain.FinishToStart,
				LeadLagDays:   0,
			})
		}
	}
	return out
}
