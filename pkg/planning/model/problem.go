// Package model describes typed, propositional planning problems: object
// types, boolean fluent schemas, parametrized action schemas, an initial
// state and a goal.
package model

import (
	"fmt"
	"strings"
)

// Type is an object type. A non-empty Parent makes the type a subtype,
// so its objects may bind parameters declared with the parent type.
type Type struct {
	Name   string `json:"name"`
	Parent string `json:"parent,omitempty"`
}

// Object is a typed problem object.
type Object struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Param is a typed schema parameter.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Fluent is a boolean state variable schema.
type Fluent struct {
	Name   string  `json:"name"`
	Params []Param `json:"params,omitempty"`
}

// Atom applies a fluent to arguments. Inside an action schema the
// arguments are parameter names; everywhere else they are object names.
type Atom struct {
	Fluent string   `json:"fluent"`
	Args   []string `json:"args,omitempty"`
}

func (a Atom) String() string {
	if len(a.Args) == 0 {
		return a.Fluent
	}
	return fmt.Sprintf("%s(%s)", a.Fluent, strings.Join(a.Args, ", "))
}

// Literal is a possibly negated Atom.
type Literal struct {
	Atom
	Negated bool `json:"negated,omitempty"`
}

func (l Literal) String() string {
	if l.Negated {
		return "!" + l.Atom.String()
	}
	return l.Atom.String()
}

// Pos builds the positive literal fluent(args...).
func Pos(fluent string, args ...string) Literal {
	return Literal{Atom: Atom{Fluent: fluent, Args: args}}
}

// Neg builds the negative literal !fluent(args...).
func Neg(fluent string, args ...string) Literal {
	return Literal{Atom: Atom{Fluent: fluent, Args: args}, Negated: true}
}

// ConditionalEffect applies Effects only when every literal of When
// holds in the state the action is executed in.
type ConditionalEffect struct {
	When    []Literal `json:"when"`
	Effects []Literal `json:"effects"`
}

// Action is a parametrized action schema. Effects with Negated set
// delete their atom, all others add it. When an execution both adds
// and deletes an atom, the atom is added.
type Action struct {
	Name          string    `json:"name"`
	Params        []Param   `json:"params,omitempty"`
	Preconditions []Literal `json:"preconditions,omitempty"`
	// AnyOf holds disjunctive preconditions: at least one literal of
	// every entry must hold.
	AnyOf              [][]Literal         `json:"anyOf,omitempty"`
	Effects            []Literal           `json:"effects,omitempty"`
	ConditionalEffects []ConditionalEffect `json:"conditionalEffects,omitempty"`
	// Distinct lists parameter pairs that must never bind the same
	// object.
	Distinct [][2]string `json:"distinct,omitempty"`
}

// Writes returns the atoms of every effect of a, conditional or not.
func (a Action) Writes() []Literal {
	out := append([]Literal(nil), a.Effects...)
	for _, ce := range a.ConditionalEffects {
		out = append(out, ce.Effects...)
	}
	return out
}

// Problem is a complete planning problem. The initial state is closed
// world: atoms absent from Init are false.
type Problem struct {
	Name    string    `json:"name"`
	Types   []Type    `json:"types,omitempty"`
	Objects []Object  `json:"objects,omitempty"`
	Fluents []Fluent  `json:"fluents"`
	Actions []Action  `json:"actions"`
	Init    []Atom    `json:"init,omitempty"`
	Goals   []Literal `json:"goals"`
}

// Fluent returns the fluent schema with the given name.
func (p *Problem) Fluent(name string) (Fluent, bool) {
	for _, f := range p.Fluents {
		if f.Name == name {
			return f, true
		}
	}
	return Fluent{}, false
}

// Action returns the action schema with the given name.
func (p *Problem) Action(name string) (Action, bool) {
	for _, a := range p.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// Object returns the object with the given name.
func (p *Problem) Object(name string) (Object, bool) {
	for _, o := range p.Objects {
		if o.Name == name {
			return o, true
		}
	}
	return Object{}, false
}

// IsSubtype reports whether sub equals super or descends from it.
func (p *Problem) IsSubtype(sub, super string) bool {
	parents := make(map[string]string, len(p.Types))
	for _, t := range p.Types {
		parents[t.Name] = t.Parent
	}
	seen := map[string]bool{}
	for t := sub; t != "" && !seen[t]; t = parents[t] {
		if t == super {
			return true
		}
		seen[t] = true
	}
	return false
}

// ObjectsOf returns, in declaration order, the objects usable where the
// given type is expected.
func (p *Problem) ObjectsOf(typ string) []Object {
	var out []Object
	for _, o := range p.Objects {
		if p.IsSubtype(o.Type, typ) {
			out = append(out, o)
		}
	}
	return out
}
