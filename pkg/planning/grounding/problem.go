// Package grounding turns a typed model.Problem into a flat problem of
// fully instantiated actions over indexed boolean fluents, together with
// the mapping from grounded actions back to the original vocabulary.
package grounding

import (
	"fmt"

	"github.com/operator-framework/smt-planner/pkg/planning/model"
	"github.com/operator-framework/smt-planner/pkg/planning/plan"
)

// Fluent is a grounded boolean state variable.
type Fluent struct {
	Index int
	Atom  model.Atom
}

func (f Fluent) String() string {
	return f.Atom.String()
}

// Condition requires a fluent to have a value.
type Condition struct {
	Fluent int
	Value  bool
}

// ConditionalEffect adds and deletes fluents when every condition of
// When holds before the action executes. An atom both added and deleted
// is only added.
type ConditionalEffect struct {
	When []Condition
	Add  []int
	Del  []int
}

// Effects returns the effect's writes as conditions on the successor
// state.
func (e ConditionalEffect) Effects() []Condition {
	return effects(e.Add, e.Del)
}

// Action is a grounded action. Its Name is unique within a Problem and is
// the action name used by plans over the grounded problem.
type Action struct {
	Index int
	Name  string
	Pre   []Condition
	// AnyOf lists disjunctive preconditions: at least one condition of
	// every entry must hold.
	AnyOf       [][]Condition
	Add         []int
	Del         []int
	Conditional []ConditionalEffect
}

func (a *Action) String() string {
	return a.Name
}

// Instance returns the action as a plan step of the grounded problem.
func (a *Action) Instance() plan.ActionInstance {
	return plan.ActionInstance{Action: a.Name}
}

// Effects returns the action's unconditional effects as conditions on
// the successor state.
func (a *Action) Effects() []Condition {
	return effects(a.Add, a.Del)
}

// Reads returns every condition a depends on: its preconditions, the
// alternatives of its disjunctive preconditions and the conditions of
// its conditional effects.
func (a *Action) Reads() []Condition {
	out := append([]Condition(nil), a.Pre...)
	for _, clause := range a.AnyOf {
		out = append(out, clause...)
	}
	for _, ce := range a.Conditional {
		out = append(out, ce.When...)
	}
	return out
}

// Writes returns every condition a may establish, conditionally or not.
func (a *Action) Writes() []Condition {
	out := a.Effects()
	for _, ce := range a.Conditional {
		out = append(out, ce.Effects()...)
	}
	return out
}

func effects(add, del []int) []Condition {
	out := make([]Condition, 0, len(add)+len(del))
	for _, f := range add {
		out = append(out, Condition{Fluent: f, Value: true})
	}
	for _, f := range del {
		out = append(out, Condition{Fluent: f, Value: false})
	}
	return out
}

// Problem is a grounded planning problem.
type Problem struct {
	Name    string
	Fluents []Fluent
	Actions []*Action
	// Init holds the initial value of every fluent, by index.
	Init  []bool
	Goals []Condition

	fluents map[string]int
	actions map[string]*Action
}

// FluentOf returns the index of the grounded fluent for atom.
func (p *Problem) FluentOf(atom model.Atom) (int, bool) {
	i, ok := p.fluents[atom.String()]
	return i, ok
}

// ActionNamed returns the grounded action with the given name.
func (p *Problem) ActionNamed(name string) (*Action, bool) {
	a, ok := p.actions[name]
	return a, ok
}

// Literals converts conditions over grounded fluents back to literals
// over atoms.
func (p *Problem) Literals(cs []Condition) []model.Literal {
	out := make([]model.Literal, len(cs))
	for i, c := range cs {
		out[i] = model.Literal{Atom: p.Fluents[c.Fluent].Atom, Negated: !c.Value}
	}
	return out
}

func (p *Problem) fluent(atom model.Atom) int {
	key := atom.String()
	if i, ok := p.fluents[key]; ok {
		return i
	}
	i := len(p.Fluents)
	p.Fluents = append(p.Fluents, Fluent{Index: i, Atom: atom})
	p.Init = append(p.Init, false)
	p.fluents[key] = i
	return i
}

func (p *Problem) addAction(a *Action) {
	name := a.Name
	for n := 1; ; n++ {
		if _, ok := p.actions[name]; !ok {
			break
		}
		name = fmt.Sprintf("%s_%d", a.Name, n)
	}
	a.Name = name
	a.Index = len(p.Actions)
	p.Actions = append(p.Actions, a)
	p.actions[name] = a
}

func newProblem(name string) *Problem {
	return &Problem{
		Name:    name,
		fluents: make(map[string]int),
		actions: make(map[string]*Action),
	}
}
