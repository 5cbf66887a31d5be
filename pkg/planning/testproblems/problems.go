// Package testproblems provides small planning problems with known
// optimal plan lengths.
package testproblems

import (
	"fmt"

	"github.com/operator-framework/smt-planner/pkg/planning/model"
)

// Trivial has a single action, finish, that achieves the goal done.
// Every encoding needs exactly one step.
func Trivial() *model.Problem {
	return &model.Problem{
		Name:    "trivial",
		Fluents: []model.Fluent{{Name: "done"}},
		Actions: []model.Action{{
			Name:          "finish",
			Preconditions: []model.Literal{model.Neg("done")},
			Effects:       []model.Literal{model.Pos("done")},
		}},
		Goals: []model.Literal{model.Pos("done")},
	}
}

// Solved has its goal true in the initial state.
func Solved() *model.Problem {
	p := Trivial()
	p.Name = "solved"
	p.Init = []model.Atom{{Fluent: "done"}}
	return p
}

// Unreachable has a goal no action can achieve.
func Unreachable() *model.Problem {
	p := Trivial()
	p.Name = "unreachable"
	p.Fluents = append(p.Fluents, model.Fluent{Name: "never"})
	p.Goals = []model.Literal{model.Pos("never")}
	return p
}

// Dolls nests n dolls into each other: doll_1 into doll_2, doll_2 into
// doll_3 and so on. The moves must happen in that order, so encodings
// that only allow independent actions in parallel need n-1 steps while
// ordered parallel encodings need one.
func Dolls(n int) *model.Problem {
	p := &model.Problem{
		Name:  "nesting_dolls",
		Types: []model.Type{{Name: "doll"}},
		Fluents: []model.Fluent{
			{Name: "is_out", Params: []model.Param{{Name: "d", Type: "doll"}}},
			{Name: "is_empty", Params: []model.Param{{Name: "d", Type: "doll"}}},
			{Name: "is_in", Params: []model.Param{{Name: "smaller", Type: "doll"}, {Name: "larger", Type: "doll"}}},
		},
		Actions: []model.Action{{
			Name:   "move_doll",
			Params: []model.Param{{Name: "smaller", Type: "doll"}, {Name: "larger", Type: "doll"}},
			Preconditions: []model.Literal{
				model.Pos("is_out", "smaller"),
				model.Pos("is_out", "larger"),
				model.Pos("is_empty", "larger"),
			},
			Effects: []model.Literal{
				model.Neg("is_out", "smaller"),
				model.Neg("is_empty", "larger"),
				model.Pos("is_in", "smaller", "larger"),
			},
			Distinct: [][2]string{{"smaller", "larger"}},
		}},
	}
	for i := 1; i <= n; i++ {
		d := doll(i)
		p.Objects = append(p.Objects, model.Object{Name: d, Type: "doll"})
		p.Init = append(p.Init,
			model.Atom{Fluent: "is_out", Args: []string{d}},
			model.Atom{Fluent: "is_empty", Args: []string{d}},
		)
		if i > 1 {
			p.Goals = append(p.Goals, model.Pos("is_in", doll(i-1), d))
		}
	}
	return p
}

func doll(i int) string {
	return fmt.Sprintf("doll_%d", i)
}

// Switches turns on n independent lights. Sequential encodings need n
// steps, all others one.
func Switches(n int) *model.Problem {
	p := &model.Problem{
		Name:    "switches",
		Types:   []model.Type{{Name: "light"}},
		Fluents: []model.Fluent{{Name: "on", Params: []model.Param{{Name: "l", Type: "light"}}}},
		Actions: []model.Action{{
			Name:          "turn_on",
			Params:        []model.Param{{Name: "l", Type: "light"}},
			Preconditions: []model.Literal{model.Neg("on", "l")},
			Effects:       []model.Literal{model.Pos("on", "l")},
		}},
	}
	for i := 1; i <= n; i++ {
		l := fmt.Sprintf("light_%d", i)
		p.Objects = append(p.Objects, model.Object{Name: l, Type: "light"})
		p.Goals = append(p.Goals, model.Pos("on", l))
	}
	return p
}

// Robot moves a robot between locations l1..ln. Only move(l1, l2) is
// needed to reach the goal.
func Robot(n int) *model.Problem {
	p := &model.Problem{
		Name:    "robot",
		Types:   []model.Type{{Name: "location"}},
		Fluents: []model.Fluent{{Name: "robot_at", Params: []model.Param{{Name: "l", Type: "location"}}}},
		Actions: []model.Action{{
			Name:   "move",
			Params: []model.Param{{Name: "l_from", Type: "location"}, {Name: "l_to", Type: "location"}},
			Preconditions: []model.Literal{
				model.Pos("robot_at", "l_from"),
				model.Neg("robot_at", "l_to"),
			},
			Effects: []model.Literal{
				model.Neg("robot_at", "l_from"),
				model.Pos("robot_at", "l_to"),
			},
			Distinct: [][2]string{{"l_from", "l_to"}},
		}},
		Init:  []model.Atom{{Fluent: "robot_at", Args: []string{"l1"}}},
		Goals: []model.Literal{model.Pos("robot_at", "l2")},
	}
	for i := 1; i <= n; i++ {
		p.Objects = append(p.Objects, model.Object{Name: fmt.Sprintf("l%d", i), Type: "location"})
	}
	return p
}

// Lamp switches a lamp on with a toggle whose effects depend on the
// lamp's state. plugged is static and no action writes it.
func Lamp() *model.Problem {
	return &model.Problem{
		Name:    "lamp",
		Fluents: []model.Fluent{{Name: "plugged"}, {Name: "lit"}},
		Actions: []model.Action{{
			Name:          "toggle",
			Preconditions: []model.Literal{model.Pos("plugged")},
			ConditionalEffects: []model.ConditionalEffect{
				{When: []model.Literal{model.Pos("lit")}, Effects: []model.Literal{model.Neg("lit")}},
				{When: []model.Literal{model.Neg("lit")}, Effects: []model.Literal{model.Pos("lit")}},
			},
		}},
		Init:  []model.Atom{{Fluent: "plugged"}},
		Goals: []model.Literal{model.Pos("lit")},
	}
}

// Crowbar opens a door that needs either its key or a crowbar. The key
// is out of reach, so the crowbar has to be taken first. Only relaxed
// ThereExists steps may take it and open the door in the same step.
func Crowbar() *model.Problem {
	return &model.Problem{
		Name:    "crowbar",
		Types:   []model.Type{{Name: "door"}},
		Objects: []model.Object{{Name: "front", Type: "door"}},
		Fluents: []model.Fluent{
			{Name: "has_crowbar"},
			{Name: "has_key", Params: []model.Param{{Name: "d", Type: "door"}}},
			{Name: "opened", Params: []model.Param{{Name: "d", Type: "door"}}},
		},
		Actions: []model.Action{
			{
				Name:          "take_crowbar",
				Preconditions: []model.Literal{model.Neg("has_crowbar")},
				Effects:       []model.Literal{model.Pos("has_crowbar")},
			},
			{
				Name:          "open",
				Params:        []model.Param{{Name: "d", Type: "door"}},
				Preconditions: []model.Literal{model.Neg("opened", "d")},
				AnyOf:         [][]model.Literal{{model.Pos("has_key", "d"), model.Pos("has_crowbar")}},
				Effects:       []model.Literal{model.Pos("opened", "d")},
			},
		},
		Goals: []model.Literal{model.Pos("opened", "front")},
	}
}
