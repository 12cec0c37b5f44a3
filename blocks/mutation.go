package blocks

import (
	"fmt"
	"strings"
)

// Mutation is a structural resize applied to a block before it is wired.
// It yields the dynamic slots appended after the template's static ones.
type Mutation interface {
	Mutator() Mutator
	Slots(t *Template) []Slot
	String() string
}

// ItemsMutation sizes a variadic block to Count numbered value slots
type ItemsMutation struct {
	Count int
}

// Mutator implements Mutation
func (m ItemsMutation) Mutator() Mutator { return MutatorItems }

// Slots implements Mutation
func (m ItemsMutation) Slots(*Template) []Slot {
	slots := make([]Slot, 0, m.Count)
	for i := 0; i < m.Count; i++ {
		slots = append(slots, Slot{Name: fmt.Sprintf("ADD%d", i), Kind: SlotValue})
	}
	return slots
}

func (m ItemsMutation) String() string {
	return fmt.Sprintf("items=%d", m.Count)
}

// IfMutation sizes a conditional to ElseIf extra branches and Else (0 or 1)
// trailing else-body
type IfMutation struct {
	ElseIf int
	Else   int
}

// Mutator implements Mutation
func (m IfMutation) Mutator() Mutator { return MutatorIf }

// Slots implements Mutation
func (m IfMutation) Slots(*Template) []Slot {
	slots := make([]Slot, 0, 2*(m.ElseIf+1)+1)
	for i := 0; i <= m.ElseIf; i++ {
		slots = append(slots,
			Slot{Name: fmt.Sprintf("IF%d", i), Kind: SlotValue},
			Slot{Name: fmt.Sprintf("DO%d", i), Kind: SlotStatement})
	}
	if m.Else > 0 {
		slots = append(slots, Slot{Name: "ELSE", Kind: SlotStatement})
	}
	return slots
}

func (m IfMutation) String() string {
	return fmt.Sprintf("elseif=%d else=%d", m.ElseIf, m.Else)
}

// ProcedureMutation carries the parameter names of a user-defined function.
// Call templates gain one numbered argument slot per parameter; definition
// templates only record the names.
type ProcedureMutation struct {
	Params []string
}

// Mutator implements Mutation
func (m ProcedureMutation) Mutator() Mutator { return MutatorProcedure }

// Slots implements Mutation
func (m ProcedureMutation) Slots(t *Template) []Slot {
	if t != nil && t.Shape == ShapeHat {
		return nil
	}
	slots := make([]Slot, 0, len(m.Params))
	for i := range m.Params {
		slots = append(slots, Slot{Name: fmt.Sprintf("ARG%d", i), Kind: SlotValue})
	}
	return slots
}

func (m ProcedureMutation) String() string {
	return fmt.Sprintf("params=(%s)", strings.Join(m.Params, ","))
}

// Size returns the number of parameters
func (m ProcedureMutation) Size() int {
	return len(m.Params)
}

// Equal reports whether both mutations describe the same parameter list
func (m ProcedureMutation) Equal(other ProcedureMutation) bool {
	if len(m.Params) != len(other.Params) {
		return false
	}
	for i := range m.Params {
		if m.Params[i] != other.Params[i] {
			return false
		}
	}
	return true
}
