// Package validate checks plans by simulating them from the initial
// state.
package validate

import (
	"fmt"
	"strings"

	"github.com/operator-framework/smt-planner/pkg/planning/grounding"
	"github.com/operator-framework/smt-planner/pkg/planning/model"
	"github.com/operator-framework/smt-planner/pkg/planning/plan"
)

// Validator decides whether a sequential plan solves a problem.
type Validator interface {
	// ValidateGrounded checks a plan over the grounded problem's
	// vocabulary.
	ValidateGrounded(p *grounding.Problem, sp plan.SequentialPlan) error
	// Validate checks a plan over the original problem's vocabulary.
	Validate(p *model.Problem, sp plan.SequentialPlan) error
}

// InvalidPlan describes the first point at which a plan fails.
type InvalidPlan struct {
	// Step is the index of the failing action, or the plan length when
	// the goal does not hold after the last action.
	Step   int
	Action plan.ActionInstance
	Reason string
}

func (e InvalidPlan) Error() string {
	if e.Action.Action == "" {
		return fmt.Sprintf("invalid plan at step %d: %s", e.Step, e.Reason)
	}
	return fmt.Sprintf("invalid plan at step %d (%s): %s", e.Step, e.Action, e.Reason)
}

type simulator struct{}

// New returns a Validator that simulates plans under closed-world,
// delete-then-add semantics.
func New() Validator {
	return simulator{}
}

func (simulator) ValidateGrounded(p *grounding.Problem, sp plan.SequentialPlan) error {
	state := append([]bool(nil), p.Init...)
	holds := func(c grounding.Condition) bool {
		return state[c.Fluent] == c.Value
	}
	for i, inst := range sp.Actions {
		if len(inst.Args) != 0 {
			return InvalidPlan{Step: i, Action: inst, Reason: "grounded action has arguments"}
		}
		a, ok := p.ActionNamed(inst.Action)
		if !ok {
			return InvalidPlan{Step: i, Action: inst, Reason: "unknown action"}
		}
		for _, c := range a.Pre {
			if !holds(c) {
				return InvalidPlan{Step: i, Action: inst, Reason: fmt.Sprintf("precondition %s does not hold", p.Literals([]grounding.Condition{c})[0])}
			}
		}
		for _, clause := range a.AnyOf {
			if !anyHolds(clause, holds) {
				return InvalidPlan{Step: i, Action: inst, Reason: fmt.Sprintf("none of %s holds", literalList(p.Literals(clause)))}
			}
		}
		add, del := a.Add, a.Del
		for _, ce := range a.Conditional {
			if allHold(ce.When, holds) {
				add = append(add[:len(add):len(add)], ce.Add...)
				del = append(del[:len(del):len(del)], ce.Del...)
			}
		}
		for _, f := range del {
			state[f] = false
		}
		for _, f := range add {
			state[f] = true
		}
	}
	for _, c := range p.Goals {
		if !holds(c) {
			return InvalidPlan{Step: len(sp.Actions), Reason: fmt.Sprintf("goal %s does not hold", p.Literals([]grounding.Condition{c})[0])}
		}
	}
	return nil
}

func (simulator) Validate(p *model.Problem, sp plan.SequentialPlan) error {
	state := make(map[string]bool, len(p.Init))
	for _, atom := range p.Init {
		state[atom.String()] = true
	}
	holds := func(l model.Literal) bool {
		return state[l.Atom.String()] != l.Negated
	}
	for i, inst := range sp.Actions {
		a, err := grounding.Instantiate(p, inst)
		if err != nil {
			return InvalidPlan{Step: i, Action: inst, Reason: err.Error()}
		}
		for _, l := range a.Preconditions {
			if !holds(l) {
				return InvalidPlan{Step: i, Action: inst, Reason: fmt.Sprintf("precondition %s does not hold", l)}
			}
		}
		for _, clause := range a.AnyOf {
			if !anyHolds(clause, holds) {
				return InvalidPlan{Step: i, Action: inst, Reason: fmt.Sprintf("none of %s holds", literalList(clause))}
			}
		}
		eff := a.Effects
		for _, ce := range a.ConditionalEffects {
			if allHold(ce.When, holds) {
				eff = append(eff[:len(eff):len(eff)], ce.Effects...)
			}
		}
		for _, l := range eff {
			if l.Negated {
				delete(state, l.Atom.String())
			}
		}
		for _, l := range eff {
			if !l.Negated {
				state[l.Atom.String()] = true
			}
		}
	}
	for _, l := range p.Goals {
		if !holds(l) {
			return InvalidPlan{Step: len(sp.Actions), Reason: fmt.Sprintf("goal %s does not hold", l)}
		}
	}
	return nil
}

func anyHolds[T any](cs []T, holds func(T) bool) bool {
	for _, c := range cs {
		if holds(c) {
			return true
		}
	}
	return false
}

func allHold[T any](cs []T, holds func(T) bool) bool {
	for _, c := range cs {
		if !holds(c) {
			return false
		}
	}
	return true
}

func literalList(ls []model.Literal) string {
	s := make([]string, len(ls))
	for i, l := range ls {
		s[i] = l.String()
	}
	return strings.Join(s, ", ")
}
