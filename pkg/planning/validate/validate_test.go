package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/smt-planner/pkg/planning/grounding"
	"github.com/operator-framework/smt-planner/pkg/planning/plan"
	"github.com/operator-framework/smt-planner/pkg/planning/testproblems"
)

func move(from, to string) plan.ActionInstance {
	return plan.ActionInstance{Action: "move_doll", Args: []string{from, to}}
}

func TestValidate(t *testing.T) {
	p := testproblems.Dolls(3)
	for _, tt := range []struct {
		Name  string
		Plan  plan.SequentialPlan
		Error error
	}{
		{
			Name: "valid",
			Plan: plan.SequentialPlan{Actions: []plan.ActionInstance{move("doll_1", "doll_2"), move("doll_2", "doll_3")}},
		},
		{
			Name: "precondition",
			Plan: plan.SequentialPlan{Actions: []plan.ActionInstance{move("doll_2", "doll_3"), move("doll_1", "doll_2")}},
			Error: InvalidPlan{
				Step:   1,
				Action: move("doll_1", "doll_2"),
				Reason: "precondition is_out(doll_2) does not hold",
			},
		},
		{
			Name:  "goal",
			Plan:  plan.SequentialPlan{Actions: []plan.ActionInstance{move("doll_1", "doll_2")}},
			Error: InvalidPlan{Step: 1, Reason: "goal is_in(doll_2, doll_3) does not hold"},
		},
		{
			Name: "distinct",
			Plan: plan.SequentialPlan{Actions: []plan.ActionInstance{move("doll_1", "doll_1")}},
			Error: InvalidPlan{
				Step:   0,
				Action: move("doll_1", "doll_1"),
				Reason: "move_doll(doll_1, doll_1): violates a distinct constraint",
			},
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			err := New().Validate(p, tt.Plan)
			if tt.Error == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.Error, err)
		})
	}
}

func TestValidateGrounded(t *testing.T) {
	g, _, err := grounding.New().Ground(testproblems.Robot(3))
	require.NoError(t, err)

	v := New()
	assert.NoError(t, v.ValidateGrounded(g, plan.SequentialPlan{Actions: []plan.ActionInstance{{Action: "move_l1_l2"}}}))
	assert.NoError(t, v.ValidateGrounded(g, plan.SequentialPlan{Actions: []plan.ActionInstance{{Action: "move_l1_l3"}, {Action: "move_l3_l2"}}}))

	err = v.ValidateGrounded(g, plan.SequentialPlan{Actions: []plan.ActionInstance{{Action: "move_l2_l3"}}})
	assert.EqualError(t, err, "invalid plan at step 0 (move_l2_l3()): precondition robot_at(l2) does not hold")

	err = v.ValidateGrounded(g, plan.SequentialPlan{Actions: []plan.ActionInstance{{Action: "teleport"}}})
	assert.EqualError(t, err, "invalid plan at step 0 (teleport()): unknown action")

	err = v.ValidateGrounded(g, plan.SequentialPlan{})
	assert.EqualError(t, err, "invalid plan at step 0: goal robot_at(l2) does not hold")
}

func TestValidateDeleteThenAdd(t *testing.T) {
	p := testproblems.Trivial()
	p.Actions[0].Effects = append(p.Actions[0].Effects, p.Goals[0])
	p.Actions[0].Effects[1].Negated = true
	assert.NoError(t, New().Validate(p, plan.SequentialPlan{Actions: []plan.ActionInstance{{Action: "finish"}}}))
}

func TestValidateConditionalEffects(t *testing.T) {
	p := testproblems.Lamp()
	toggle := plan.ActionInstance{Action: "toggle"}
	v := New()

	assert.NoError(t, v.Validate(p, plan.SequentialPlan{Actions: []plan.ActionInstance{toggle}}))
	assert.NoError(t, v.Validate(p, plan.SequentialPlan{Actions: []plan.ActionInstance{toggle, toggle, toggle}}))
	assert.EqualError(t, v.Validate(p, plan.SequentialPlan{Actions: []plan.ActionInstance{toggle, toggle}}),
		"invalid plan at step 2: goal lit does not hold")

	g, _, err := grounding.New().Ground(p)
	require.NoError(t, err)
	assert.NoError(t, v.ValidateGrounded(g, plan.SequentialPlan{Actions: []plan.ActionInstance{toggle}}))
	assert.EqualError(t, v.ValidateGrounded(g, plan.SequentialPlan{Actions: []plan.ActionInstance{toggle, toggle}}),
		"invalid plan at step 2: goal lit does not hold")
}

func TestValidateDisjunctivePreconditions(t *testing.T) {
	p := testproblems.Crowbar()
	take := plan.ActionInstance{Action: "take_crowbar"}
	open := plan.ActionInstance{Action: "open", Args: []string{"front"}}
	v := New()

	assert.NoError(t, v.Validate(p, plan.SequentialPlan{Actions: []plan.ActionInstance{take, open}}))
	assert.Equal(t, InvalidPlan{Step: 0, Action: open, Reason: "none of has_key(front), has_crowbar holds"},
		v.Validate(p, plan.SequentialPlan{Actions: []plan.ActionInstance{open}}))

	g, _, err := grounding.New().Ground(p)
	require.NoError(t, err)
	assert.NoError(t, v.ValidateGrounded(g, plan.SequentialPlan{Actions: []plan.ActionInstance{{Action: "take_crowbar"}, {Action: "open_front"}}}))
	assert.EqualError(t, v.ValidateGrounded(g, plan.SequentialPlan{Actions: []plan.ActionInstance{{Action: "open_front"}}}),
		"invalid plan at step 0 (open_front()): none of has_key(front), has_crowbar holds")
}
