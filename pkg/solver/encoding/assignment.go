package encoding

// Assignment is a snapshot of a satisfying model: the value of every
// action at steps 0..t-1 and of every fluent at steps 0..t.
type Assignment struct {
	Actions [][]bool `json:"actions"`
	Fluents [][]bool `json:"fluents"`
}

// Length returns the number of steps covered by the model.
func (a *Assignment) Length() int {
	return len(a.Actions)
}

// Action reports whether the action with the given index is executed
// at step s.
func (a *Assignment) Action(s, index int) bool {
	if s < 0 || s >= len(a.Actions) || index < 0 || index >= len(a.Actions[s]) {
		return false
	}
	return a.Actions[s][index]
}

// Fluent reports the value of the fluent with the given index at step s.
func (a *Assignment) Fluent(s, index int) bool {
	if s < 0 || s >= len(a.Fluents) || index < 0 || index >= len(a.Fluents[s]) {
		return false
	}
	return a.Fluents[s][index]
}
