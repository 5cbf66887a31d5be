// Package plan holds the plan representations returned to callers.
package plan

import (
	"fmt"
	"strings"
)

// ActionInstance is an action applied to concrete arguments.
type ActionInstance struct {
	Action string   `json:"action"`
	Args   []string `json:"args,omitempty"`
}

func (a ActionInstance) String() string {
	return fmt.Sprintf("%s(%s)", a.Action, strings.Join(a.Args, ", "))
}

// Equal reports whether a and b name the same action with the same
// arguments.
func (a ActionInstance) Equal(b ActionInstance) bool {
	if a.Action != b.Action || len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if a.Args[i] != b.Args[i] {
			return false
		}
	}
	return true
}

// Kind distinguishes plan representations.
type Kind string

const (
	SequentialKind   Kind = "sequential"
	PartialOrderKind Kind = "partial-order"
)

// Plan is implemented by SequentialPlan and PartialOrderPlan.
type Plan interface {
	Kind() Kind
	// ToSequential returns a total order consistent with the plan.
	ToSequential() SequentialPlan
	// ReplaceActionInstances returns a copy of the plan with every
	// action instance passed through f.
	ReplaceActionInstances(f func(ActionInstance) (ActionInstance, error)) (Plan, error)
	// Len returns the number of steps.
	Len() int
}

// SequentialPlan executes its actions one after another.
type SequentialPlan struct {
	Actions []ActionInstance `json:"actions"`
}

var _ Plan = SequentialPlan{}

func (p SequentialPlan) Kind() Kind {
	return SequentialKind
}

func (p SequentialPlan) ToSequential() SequentialPlan {
	return p
}

func (p SequentialPlan) Len() int {
	return len(p.Actions)
}

func (p SequentialPlan) ReplaceActionInstances(f func(ActionInstance) (ActionInstance, error)) (Plan, error) {
	out := SequentialPlan{Actions: make([]ActionInstance, len(p.Actions))}
	for i, a := range p.Actions {
		r, err := f(a)
		if err != nil {
			return nil, err
		}
		out.Actions[i] = r
	}
	return out, nil
}

func (p SequentialPlan) String() string {
	var b strings.Builder
	for i, a := range p.Actions {
		fmt.Fprintf(&b, "%d: %s\n", i, a)
	}
	return b.String()
}

// PartialOrderPlan groups actions into steps. Actions within a step may
// run in parallel, and every action of step i precedes every action of
// step i+1.
type PartialOrderPlan struct {
	Steps [][]ActionInstance `json:"steps"`
}

var _ Plan = PartialOrderPlan{}

// Edge orders two steps of a PartialOrderPlan.
type Edge struct {
	From, To int
}

func (p PartialOrderPlan) Kind() Kind {
	return PartialOrderKind
}

func (p PartialOrderPlan) Len() int {
	return len(p.Steps)
}

// Edges returns the step precedence relation.
func (p PartialOrderPlan) Edges() []Edge {
	if len(p.Steps) < 2 {
		return nil
	}
	edges := make([]Edge, 0, len(p.Steps)-1)
	for i := 0; i+1 < len(p.Steps); i++ {
		edges = append(edges, Edge{From: i, To: i + 1})
	}
	return edges
}

func (p PartialOrderPlan) ToSequential() SequentialPlan {
	var out SequentialPlan
	for _, step := range p.Steps {
		out.Actions = append(out.Actions, step...)
	}
	return out
}

func (p PartialOrderPlan) ReplaceActionInstances(f func(ActionInstance) (ActionInstance, error)) (Plan, error) {
	out := PartialOrderPlan{Steps: make([][]ActionInstance, len(p.Steps))}
	for i, step := range p.Steps {
		out.Steps[i] = make([]ActionInstance, len(step))
		for j, a := range step {
			r, err := f(a)
			if err != nil {
				return nil, err
			}
			out.Steps[i][j] = r
		}
	}
	return out, nil
}

func (p PartialOrderPlan) String() string {
	var b strings.Builder
	for i, step := range p.Steps {
		s := make([]string, len(step))
		for j, a := range step {
			s[j] = a.String()
		}
		fmt.Fprintf(&b, "%d: {%s}\n", i, strings.Join(s, ", "))
	}
	return b.String()
}
