package model

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteralString(t *testing.T) {
	for _, tt := range []struct {
		Name     string
		Literal  Literal
		Expected string
	}{
		{Name: "nullary", Literal: Pos("done"), Expected: "done"},
		{Name: "positive", Literal: Pos("robot_at", "l1"), Expected: "robot_at(l1)"},
		{Name: "negative", Literal: Neg("is_in", "a", "b"), Expected: "!is_in(a, b)"},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			assert.Equal(t, tt.Expected, tt.Literal.String())
		})
	}
}

func TestIsSubtype(t *testing.T) {
	p := &Problem{Types: []Type{
		{Name: "thing"},
		{Name: "vehicle", Parent: "thing"},
		{Name: "truck", Parent: "vehicle"},
		{Name: "place"},
	}}
	assert.True(t, p.IsSubtype("truck", "truck"))
	assert.True(t, p.IsSubtype("truck", "thing"))
	assert.False(t, p.IsSubtype("thing", "truck"))
	assert.False(t, p.IsSubtype("place", "thing"))
}

func TestObjectsOf(t *testing.T) {
	p := &Problem{
		Types: []Type{{Name: "vehicle"}, {Name: "truck", Parent: "vehicle"}},
		Objects: []Object{
			{Name: "t1", Type: "truck"},
			{Name: "v1", Type: "vehicle"},
		},
	}
	assert.Equal(t, []Object{{Name: "t1", Type: "truck"}, {Name: "v1", Type: "vehicle"}}, p.ObjectsOf("vehicle"))
	assert.Equal(t, []Object{{Name: "t1", Type: "truck"}}, p.ObjectsOf("truck"))
}

func TestValidate(t *testing.T) {
	valid := func() *Problem {
		return &Problem{
			Types:   []Type{{Name: "location"}},
			Objects: []Object{{Name: "l1", Type: "location"}},
			Fluents: []Fluent{{Name: "at", Params: []Param{{Name: "l", Type: "location"}}}},
			Actions: []Action{{
				Name:          "go",
				Params:        []Param{{Name: "to", Type: "location"}},
				Preconditions: []Literal{Neg("at", "to")},
				Effects:       []Literal{Pos("at", "to")},
			}},
			Goals: []Literal{Pos("at", "l1")},
		}
	}

	for _, tt := range []struct {
		Name   string
		Mutate func(p *Problem)
		Errors []string
	}{
		{
			Name:   "valid",
			Mutate: func(*Problem) {},
		},
		{
			Name:   "no goals",
			Mutate: func(p *Problem) { p.Goals = nil },
			Errors: []string{"no goals"},
		},
		{
			Name:   "unknown fluent in goal",
			Mutate: func(p *Problem) { p.Goals = []Literal{Pos("nowhere")} },
			Errors: []string{`goal: unknown fluent "nowhere"`},
		},
		{
			Name:   "arity mismatch",
			Mutate: func(p *Problem) { p.Init = []Atom{{Fluent: "at"}} },
			Errors: []string{"init: at expects 1 arguments, got 0"},
		},
		{
			Name:   "unbound parameter",
			Mutate: func(p *Problem) { p.Actions[0].Effects = []Literal{Pos("at", "from")} },
			Errors: []string{`action "go" effect: unknown argument "from" in at(from)`},
		},
		{
			Name: "conditional effects and disjunctive preconditions",
			Mutate: func(p *Problem) {
				p.Actions[0].AnyOf = [][]Literal{{Pos("at", "to"), Neg("at", "to")}}
				p.Actions[0].ConditionalEffects = []ConditionalEffect{{When: []Literal{Pos("at", "to")}, Effects: []Literal{Neg("at", "to")}}}
			},
		},
		{
			Name:   "empty disjunctive precondition",
			Mutate: func(p *Problem) { p.Actions[0].AnyOf = [][]Literal{{Pos("at", "to")}, {}} },
			Errors: []string{`action "go" disjunctive precondition 1 is empty`},
		},
		{
			Name:   "unknown fluent in disjunctive precondition",
			Mutate: func(p *Problem) { p.Actions[0].AnyOf = [][]Literal{{Pos("near", "to")}} },
			Errors: []string{`action "go" disjunctive precondition: unknown fluent "near"`},
		},
		{
			Name: "unbound parameters in conditional effect",
			Mutate: func(p *Problem) {
				p.Actions[0].ConditionalEffects = []ConditionalEffect{{When: []Literal{Pos("at", "from")}, Effects: []Literal{Neg("at", "here")}}}
			},
			Errors: []string{
				`action "go" effect condition: unknown argument "from" in at(from)`,
				`action "go" conditional effect: unknown argument "here" in at(here)`,
			},
		},
		{
			Name: "distinct names unknown parameter",
			Mutate: func(p *Problem) {
				p.Actions[0].Distinct = [][2]string{{"to", "from"}}
			},
			Errors: []string{`action "go" distinct constraint names unknown parameter "from"`},
		},
		{
			Name: "aggregates",
			Mutate: func(p *Problem) {
				p.Objects = append(p.Objects, Object{Name: "l1", Type: "city"})
			},
			Errors: []string{`duplicate object "l1"`, `object "l1" has unknown type "city"`},
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			p := valid()
			tt.Mutate(p)
			err := p.Validate()
			if len(tt.Errors) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, InvalidProblem(tt.Errors), err)
		})
	}
}

func TestLoad(t *testing.T) {
	p, err := Load(filepath.Join("testdata", "robot.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "robot", p.Name)
	require.Len(t, p.Actions, 1)
	assert.Equal(t, []Literal{Pos("robot_at", "l_from"), Neg("robot_at", "l_to")}, p.Actions[0].Preconditions)
	assert.Equal(t, [][2]string{{"l_from", "l_to"}}, p.Actions[0].Distinct)
	assert.Equal(t, []Literal{Pos("robot_at", "l2")}, p.Goals)

	p, err = Load(filepath.Join("testdata", "lamp.yaml"))
	require.NoError(t, err)
	require.Len(t, p.Actions, 1)
	assert.Equal(t, [][]Literal{{Pos("lit"), Neg("seen")}}, p.Actions[0].AnyOf)
	assert.Equal(t, []ConditionalEffect{
		{When: []Literal{Pos("lit")}, Effects: []Literal{Neg("lit")}},
		{When: []Literal{Neg("lit")}, Effects: []Literal{Pos("lit")}},
	}, p.Actions[0].ConditionalEffects)
	assert.Equal(t, []Literal{Neg("lit"), Pos("lit")}, p.Actions[0].Writes())

	_, err = Load(filepath.Join("testdata", "invalid.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `object "l1" has unknown type "location"`)
	assert.Contains(t, err.Error(), "no goals")

	_, err = Load(filepath.Join("testdata", "missing.yaml"))
	assert.Error(t, err)
}
