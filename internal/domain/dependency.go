package domain

import (
	"slices"
	"strings"
	"time"
)

type DependencyType string

const (
	FinishToStart  DependencyType = "finish_to_start"
	StartToStart   DependencyType = "start_to_start"
	FinishToFinish DependencyType = "finish_to_finish"
	StartToFinish  DependencyType = "start_to_finish"
)

var validDependencyTypes = []DependencyType{FinishToStart, StartToStart, FinishToFinish, StartToFinish}

// Dependency is a directed, typed edge between two tasks. LeadLagDays is a
// signed calendar-day offset: positive lag delays the constraint, negative
// lead advances it.
type Dependency struct {
	ID            string
	PredecessorID string
	SuccessorID   string
	Type          DependencyType
	LeadLagDays   int
	CreatedAt     time.Time
}

func NewDependency(id, predecessorID, successorID string, depType DependencyType, leadLagDays int, now time.Time) (Dependency, error) {
	id = strings.TrimSpace(id)
	predecessorID = strings.TrimSpace(predecessorID)
	successorID = strings.TrimSpace(successorID)

	if id == "" || predecessorID == "" || successorID == "" {
		return Dependency{}, ErrInvalidID
	}
	if predecessorID == successorID {
		return Dependency{}, ErrSelfDependency
	}
	if depType == "" {
		depType = FinishToStart
	}
	if !slices.Contains(validDependencyTypes, depType) {
		return Dependency{}, ErrInvalidDependencyType
	}

	return Dependency{
		ID:            id,
		PredecessorID: predecessorID,
		SuccessorID:   successorID,
		Type:          depType,
		LeadLagDays:   leadLagDays,
		CreatedAt:     now.UTC(),
	}, nil
}
