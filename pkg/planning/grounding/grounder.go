package grounding

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/operator-framework/smt-planner/pkg/planning/model"
	"github.com/operator-framework/smt-planner/pkg/planning/plan"
)

// Grounder produces a grounded problem and the mapping from its actions
// back to the original problem.
type Grounder interface {
	Ground(p *model.Problem) (*Problem, *ActionInstanceMap, error)
}

// GrounderFunc adapts a function to the Grounder interface.
type GrounderFunc func(p *model.Problem) (*Problem, *ActionInstanceMap, error)

func (f GrounderFunc) Ground(p *model.Problem) (*Problem, *ActionInstanceMap, error) {
	return f(p)
}

type grounder struct{}

// New returns the default Grounder. It enumerates every type-correct
// binding of every action schema and discards bindings that violate a
// Distinct constraint, that contradict themselves, or whose static
// preconditions cannot hold in the initial state.
func New() Grounder {
	return grounder{}
}

func (grounder) Ground(p *model.Problem) (*Problem, *ActionInstanceMap, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	g := newProblem(p.Name)
	m := newActionInstanceMap()
	initial := make(map[string]bool, len(p.Init))
	for _, atom := range p.Init {
		g.Init[g.fluent(atom)] = true
		initial[atom.String()] = true
	}
	static := staticFluents(p)

	for _, schema := range p.Actions {
		schema := schema
		err := bind(p, schema, func(args []string) error {
			inst, err := substitute(schema, args)
			if err != nil {
				return err
			}
			if !applicable(inst, static, initial) {
				return nil
			}
			a, ok := g.newAction(groundedName(schema.Name, args), inst)
			if !ok {
				return nil
			}
			g.addAction(a)
			m.add(a.Name, plan.ActionInstance{Action: schema.Name, Args: args})
			return nil
		})
		if err != nil {
			return nil, nil, errors.Wrapf(err, "grounding action %q", schema.Name)
		}
	}

	for _, l := range p.Goals {
		g.Goals = append(g.Goals, Condition{Fluent: g.fluent(l.Atom), Value: !l.Negated})
	}
	return g, m, nil
}

// Instantiate returns one instance of an action schema of p, with every
// parameter replaced by its argument. The instance has no parameters.
func Instantiate(p *model.Problem, inst plan.ActionInstance) (model.Action, error) {
	schema, ok := p.Action(inst.Action)
	if !ok {
		return model.Action{}, errors.Errorf("unknown action %q", inst.Action)
	}
	if len(inst.Args) != len(schema.Params) {
		return model.Action{}, errors.Errorf("%s: %s expects %d arguments", inst, schema.Name, len(schema.Params))
	}
	for i, arg := range inst.Args {
		o, ok := p.Object(arg)
		if !ok {
			return model.Action{}, errors.Errorf("%s: unknown object %q", inst, arg)
		}
		if !p.IsSubtype(o.Type, schema.Params[i].Type) {
			return model.Action{}, errors.Errorf("%s: object %q is not a %s", inst, arg, schema.Params[i].Type)
		}
	}
	if !distinct(schema, inst.Args) {
		return model.Action{}, errors.Errorf("%s: violates a distinct constraint", inst)
	}
	return substitute(schema, inst.Args)
}

func groundedName(action string, args []string) string {
	if len(args) == 0 {
		return action
	}
	return action + "_" + strings.Join(args, "_")
}

// bind calls f with every type-correct argument list for schema that
// satisfies its Distinct constraints.
func bind(p *model.Problem, schema model.Action, f func(args []string) error) error {
	domains := make([][]model.Object, len(schema.Params))
	for i, param := range schema.Params {
		domains[i] = p.ObjectsOf(param.Type)
		if len(domains[i]) == 0 {
			return nil
		}
	}
	args := make([]string, len(schema.Params))
	var rec func(i int) error
	rec = func(i int) error {
		if i == len(args) {
			if !distinct(schema, args) {
				return nil
			}
			return f(append([]string(nil), args...))
		}
		for _, o := range domains[i] {
			args[i] = o.Name
			if err := rec(i + 1); err != nil {
				return err
			}
		}
		return nil
	}
	return rec(0)
}

func distinct(schema model.Action, args []string) bool {
	index := make(map[string]int, len(schema.Params))
	for i, param := range schema.Params {
		index[param.Name] = i
	}
	for _, pair := range schema.Distinct {
		if args[index[pair[0]]] == args[index[pair[1]]] {
			return false
		}
	}
	return true
}

func substitute(schema model.Action, args []string) (model.Action, error) {
	binding := make(map[string]string, len(args))
	for i, param := range schema.Params {
		binding[param.Name] = args[i]
	}
	apply := func(ls []model.Literal) ([]model.Literal, error) {
		if ls == nil {
			return nil, nil
		}
		out := make([]model.Literal, len(ls))
		for i, l := range ls {
			atom := model.Atom{Fluent: l.Fluent, Args: make([]string, len(l.Args))}
			for j, arg := range l.Args {
				v, ok := binding[arg]
				if !ok {
					return nil, errors.Errorf("unbound parameter %q in %s", arg, l)
				}
				atom.Args[j] = v
			}
			out[i] = model.Literal{Atom: atom, Negated: l.Negated}
		}
		return out, nil
	}

	out := model.Action{Name: schema.Name}
	var err error
	if out.Preconditions, err = apply(schema.Preconditions); err != nil {
		return model.Action{}, err
	}
	for _, clause := range schema.AnyOf {
		c, err := apply(clause)
		if err != nil {
			return model.Action{}, err
		}
		out.AnyOf = append(out.AnyOf, c)
	}
	if out.Effects, err = apply(schema.Effects); err != nil {
		return model.Action{}, err
	}
	for _, ce := range schema.ConditionalEffects {
		when, err := apply(ce.When)
		if err != nil {
			return model.Action{}, err
		}
		eff, err := apply(ce.Effects)
		if err != nil {
			return model.Action{}, err
		}
		out.ConditionalEffects = append(out.ConditionalEffects, model.ConditionalEffect{When: when, Effects: eff})
	}
	return out, nil
}

// staticFluents returns the names of fluents no action schema changes.
func staticFluents(p *model.Problem) map[string]bool {
	static := make(map[string]bool, len(p.Fluents))
	for _, f := range p.Fluents {
		static[f.Name] = true
	}
	for _, a := range p.Actions {
		for _, e := range a.Writes() {
			delete(static, e.Fluent)
		}
	}
	return static
}

// applicable reports whether a may ever execute: none of its static
// preconditions is false initially, and every disjunctive precondition
// has an alternative that is not.
func applicable(a model.Action, static, initial map[string]bool) bool {
	possible := func(l model.Literal) bool {
		return !static[l.Fluent] || initial[l.Atom.String()] != l.Negated
	}
	for _, l := range a.Preconditions {
		if !possible(l) {
			return false
		}
	}
	for _, clause := range a.AnyOf {
		ok := false
		for _, l := range clause {
			if possible(l) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// newAction builds a grounded action, deduplicating its conditions. A
// binding whose preconditions contradict each other can never be
// executed and is reported as not ok. An atom both added and deleted by
// the same effect is only added, matching delete-then-add semantics.
func (p *Problem) newAction(name string, inst model.Action) (*Action, bool) {
	a := &Action{Name: name}
	seen := map[int]bool{}
	for _, l := range inst.Preconditions {
		f := p.fluent(l.Atom)
		if v, ok := seen[f]; ok {
			if v != !l.Negated {
				return nil, false
			}
			continue
		}
		seen[f] = !l.Negated
		a.Pre = append(a.Pre, Condition{Fluent: f, Value: !l.Negated})
	}
	for _, clause := range inst.AnyOf {
		a.AnyOf = append(a.AnyOf, p.conditions(clause))
	}
	a.Add, a.Del = p.groundEffects(inst.Effects)
	for _, ce := range inst.ConditionalEffects {
		add, del := p.groundEffects(ce.Effects)
		a.Conditional = append(a.Conditional, ConditionalEffect{When: p.conditions(ce.When), Add: add, Del: del})
	}
	return a, true
}

// conditions converts literals to conditions, dropping duplicates.
func (p *Problem) conditions(ls []model.Literal) []Condition {
	out := make([]Condition, 0, len(ls))
	seen := map[Condition]bool{}
	for _, l := range ls {
		c := Condition{Fluent: p.fluent(l.Atom), Value: !l.Negated}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func (p *Problem) groundEffects(eff []model.Literal) (add, del []int) {
	added := map[int]bool{}
	for _, l := range eff {
		if f := p.fluent(l.Atom); !l.Negated && !added[f] {
			added[f] = true
			add = append(add, f)
		}
	}
	deleted := map[int]bool{}
	for _, l := range eff {
		if f := p.fluent(l.Atom); l.Negated && !added[f] && !deleted[f] {
			deleted[f] = true
			del = append(del, f)
		}
	}
	return add, del
}
