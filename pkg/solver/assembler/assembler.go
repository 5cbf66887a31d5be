// Package assembler turns satisfying models into validated plans over
// the original problem.
package assembler

import (
	"github.com/pkg/errors"

	"github.com/operator-framework/smt-planner/pkg/planning/grounding"
	"github.com/operator-framework/smt-planner/pkg/planning/model"
	"github.com/operator-framework/smt-planner/pkg/planning/plan"
	"github.com/operator-framework/smt-planner/pkg/planning/validate"
	"github.com/operator-framework/smt-planner/pkg/solver/encoding"
)

// ErrInconsistentModel is returned when a model does not describe a plan
// under the encoding that produced it. It is an internal error.
var ErrInconsistentModel = errors.Wrap(encoding.ErrInternal, "inconsistent model")

// ActionSequence holds the grounded actions executed at each non-empty
// step, ordered within a step by the encoder's action order.
type ActionSequence [][]*grounding.Action

// Len returns the number of actions in the sequence.
func (s ActionSequence) Len() int {
	n := 0
	for _, step := range s {
		n += len(step)
	}
	return n
}

// Names returns the grounded action names, step by step.
func (s ActionSequence) Names() [][]string {
	out := make([][]string, len(s))
	for i, step := range s {
		out[i] = make([]string, len(step))
		for j, a := range step {
			out[i][j] = a.Name
		}
	}
	return out
}

// ExtractActionSequence reads the actions executed at steps 0..t-1 of m.
// The final state of m must satisfy the goal of p, and sequential
// models may execute at most one action per step.
func ExtractActionSequence(m *encoding.Assignment, p *grounding.Problem, ordered []*grounding.Action, t int, mode encoding.Parallelism) (ActionSequence, error) {
	if m == nil {
		return nil, errors.Wrap(ErrInconsistentModel, "no model")
	}
	if m.Length() != t {
		return nil, errors.Wrapf(ErrInconsistentModel, "model covers %d steps, expected %d", m.Length(), t)
	}
	var seq ActionSequence
	for s := 0; s < t; s++ {
		var step []*grounding.Action
		for _, a := range ordered {
			if m.Action(s, a.Index) {
				step = append(step, a)
			}
		}
		if len(step) == 0 {
			continue
		}
		if mode == encoding.Sequential && len(step) > 1 {
			return nil, errors.Wrapf(ErrInconsistentModel, "%d actions at step %d of a sequential model", len(step), s)
		}
		seq = append(seq, step)
	}
	for _, c := range p.Goals {
		if m.Fluent(t, c.Fluent) != c.Value {
			return nil, errors.Wrapf(ErrInconsistentModel, "goal %s does not hold at step %d", p.Literals([]grounding.Condition{c})[0], t)
		}
	}
	return seq, nil
}

// BuildPlan returns a PartialOrderPlan of the steps of seq when sets
// were requested under ForAll, and a SequentialPlan otherwise.
func BuildPlan(seq ActionSequence, mode encoding.Parallelism, forAllGetSets bool) plan.Plan {
	if mode == encoding.ForAll && forAllGetSets {
		out := plan.PartialOrderPlan{Steps: make([][]plan.ActionInstance, len(seq))}
		for i, step := range seq {
			out.Steps[i] = make([]plan.ActionInstance, len(step))
			for j, a := range step {
				out.Steps[i][j] = a.Instance()
			}
		}
		return out
	}
	out := plan.SequentialPlan{Actions: make([]plan.ActionInstance, 0, seq.Len())}
	for _, step := range seq {
		for _, a := range step {
			out.Actions = append(out.Actions, a.Instance())
		}
	}
	return out
}

// ValidateAndUnground validates pl against the grounded problem, maps
// it back to the original problem and validates it again. Every action
// mapped back must reproduce the signature of the grounded action it
// replaces. Any failure is an internal error.
func ValidateAndUnground(pl plan.Plan, g *grounding.Problem, original *model.Problem, instances *grounding.ActionInstanceMap, v validate.Validator) (plan.Plan, error) {
	if err := v.ValidateGrounded(g, pl.ToSequential()); err != nil {
		return nil, errors.Wrapf(encoding.ErrInternal, "grounded plan is invalid: %v", err)
	}
	ungrounded, err := pl.ReplaceActionInstances(func(ai plan.ActionInstance) (plan.ActionInstance, error) {
		a, ok := g.ActionNamed(ai.Action)
		if !ok {
			return plan.ActionInstance{}, errors.Errorf("unknown grounded action %q", ai.Action)
		}
		orig, err := instances.MapBack(ai)
		if err != nil {
			return plan.ActionInstance{}, err
		}
		want, err := grounding.ActionSignature(g, a)
		if err != nil {
			return plan.ActionInstance{}, err
		}
		inst, err := grounding.Instantiate(original, orig)
		if err != nil {
			return plan.ActionInstance{}, err
		}
		got, err := grounding.Signature(inst)
		if err != nil {
			return plan.ActionInstance{}, err
		}
		if got != want {
			return plan.ActionInstance{}, errors.Errorf("%s does not reproduce grounded action %s", orig, a)
		}
		return orig, nil
	})
	if err != nil {
		return nil, errors.Wrapf(encoding.ErrInternal, "ungrounding plan: %v", err)
	}
	if err := v.Validate(original, ungrounded.ToSequential()); err != nil {
		return nil, errors.Wrapf(encoding.ErrInternal, "ungrounded plan is invalid: %v", err)
	}
	return ungrounded, nil
}
