// Package stats records per-length solver statistics of a planning run
// and persists them.
package stats

import (
	"time"

	"github.com/pkg/errors"
)

// Step describes the check of one plan length.
type Step struct {
	Length    int           `json:"length"`
	Outcome   string        `json:"outcome"`
	Elapsed   time.Duration `json:"elapsed"`
	Variables int           `json:"variables"`
	Clauses   int           `json:"clauses"`
	Mutexes   int           `json:"mutexes"`
}

// Totals summarises a run. Formula sizes are those of the last step.
type Totals struct {
	Steps     int           `json:"steps"`
	Elapsed   time.Duration `json:"elapsed"`
	Variables int           `json:"variables"`
	Clauses   int           `json:"clauses"`
	Mutexes   int           `json:"mutexes"`
}

// Statistics accumulates the steps of one run in length order.
type Statistics struct {
	RunID       string    `json:"runID"`
	Problem     string    `json:"problem"`
	Parallelism string    `json:"parallelism"`
	Incremental bool      `json:"incremental"`
	Started     time.Time `json:"started"`
	Steps       []Step    `json:"steps"`
	Total       Totals    `json:"total"`
}

// Append records the next step. Steps must arrive in strictly
// increasing length order starting from zero.
func (s *Statistics) Append(step Step) error {
	if step.Length != len(s.Steps) {
		return errors.Errorf("statistics for length %d appended after %d steps", step.Length, len(s.Steps))
	}
	s.Steps = append(s.Steps, step)
	s.Total.Steps = len(s.Steps)
	s.Total.Elapsed += step.Elapsed
	s.Total.Variables = step.Variables
	s.Total.Clauses = step.Clauses
	s.Total.Mutexes = step.Mutexes
	return nil
}

// Merge appends the steps of other that s has not seen yet. The run
// metadata of other fills in any that s lacks.
func (s *Statistics) Merge(other *Statistics) error {
	if other == nil {
		return nil
	}
	if s.RunID == "" {
		s.RunID = other.RunID
	}
	if s.Problem == "" {
		s.Problem = other.Problem
	}
	if s.Parallelism == "" {
		s.Parallelism = other.Parallelism
		s.Incremental = other.Incremental
	}
	if s.Started.IsZero() {
		s.Started = other.Started
	}
	for _, step := range other.Steps {
		if step.Length < len(s.Steps) {
			continue
		}
		if err := s.Append(step); err != nil {
			return err
		}
	}
	return nil
}
