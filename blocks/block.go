package blocks

import (
	"fmt"

	"github.com/Figliar/extension-plus-API/errors"
)

const (
	headerHeight    = 32
	emptyBodyHeight = 24
	footerHeight    = 16
	indentWidth     = 20
)

// Point is a workspace coordinate
type Point struct {
	X int
	Y int
}

// Add returns p shifted by dx, dy
func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Block is a handle to one block instance in a workspace graph.
// Navigation methods return a nil Block when nothing is connected.
type Block interface {
	ID() string
	Type() string
	Template() *Template
	Slots() []Slot
	Slot(name string) (Slot, bool)

	// ApplyMutation resizes the slot set. It must happen before any
	// connection is made to or from the block.
	ApplyMutation(m Mutation) error
	Mutation() Mutation

	SetField(name, value string) error
	Field(name string) (string, bool)

	ConnectValue(slot string, child Block) error
	ConnectStatement(slot string, head Block) error
	ConnectNext(next Block) error

	Value(slot string) Block
	Statement(slot string) Block
	Next() Block
	Previous() Block
	Parent() Block

	HasOutput() bool
	HasPrevious() bool
	HasNext() bool
	DisableStatementLinks()

	Position() Point
	MoveTo(p Point)
	Height() int
}

// MemoryBlock is the in-memory Block owned by a MemoryWorkspace
type MemoryBlock struct {
	id         string
	ws         *MemoryWorkspace
	tmpl       *Template
	mutation   Mutation
	slots      []Slot
	fields     map[string]string
	values     map[string]*MemoryBlock
	statements map[string]*MemoryBlock
	parent     *MemoryBlock
	parentSlot string
	prev       *MemoryBlock
	next       *MemoryBlock
	wired      bool
	unlinked   bool
	pos        Point
}

func newMemoryBlock(ws *MemoryWorkspace, id string, tmpl *Template) *MemoryBlock {
	b := &MemoryBlock{
		id:         id,
		ws:         ws,
		tmpl:       tmpl,
		fields:     make(map[string]string),
		values:     make(map[string]*MemoryBlock),
		statements: make(map[string]*MemoryBlock),
	}
	b.slots = append(b.slots, tmpl.Slots...)
	for _, s := range tmpl.Slots {
		if s.Kind.IsField() && s.Default != "" {
			b.fields[s.Name] = s.Default
		}
	}
	switch tmpl.Mutator {
	case MutatorIf:
		b.setMutation(IfMutation{})
	case MutatorItems:
		b.setMutation(ItemsMutation{})
	case MutatorProcedure:
		b.setMutation(ProcedureMutation{})
	}
	return b
}

// ID implements Block
func (b *MemoryBlock) ID() string { return b.id }

// Type implements Block
func (b *MemoryBlock) Type() string { return b.tmpl.Name }

// Template implements Block
func (b *MemoryBlock) Template() *Template { return b.tmpl }

// Slots implements Block
func (b *MemoryBlock) Slots() []Slot {
	out := make([]Slot, len(b.slots))
	copy(out, b.slots)
	return out
}

// Slot implements Block
func (b *MemoryBlock) Slot(name string) (Slot, bool) {
	for _, s := range b.slots {
		if s.Name == name {
			return s, true
		}
	}
	return Slot{}, false
}

// ApplyMutation implements Block
func (b *MemoryBlock) ApplyMutation(m Mutation) error {
	if m == nil {
		return nil
	}
	if b.wired {
		return errors.NewTranslationErrorf(errors.CodeMutationAfterWiring,
			"block %s (%s) is already wired; mutation %s must come first", b.id, b.Type(), m)
	}
	if b.tmpl.Mutator != m.Mutator() {
		return errors.NewTranslationErrorf(errors.CodeUnsupportedShape,
			"template %s does not accept %s mutations", b.Type(), m.Mutator())
	}
	b.setMutation(m)
	return nil
}

func (b *MemoryBlock) setMutation(m Mutation) {
	b.mutation = m
	b.slots = append(append([]Slot(nil), b.tmpl.Slots...), m.Slots(b.tmpl)...)
}

// Mutation implements Block
func (b *MemoryBlock) Mutation() Mutation { return b.mutation }

// SetField implements Block
func (b *MemoryBlock) SetField(name, value string) error {
	s, ok := b.Slot(name)
	if !ok || !s.Kind.IsField() {
		return b.unbound(name, "field")
	}
	b.fields[name] = value
	return nil
}

// Field implements Block
func (b *MemoryBlock) Field(name string) (string, bool) {
	v, ok := b.fields[name]
	return v, ok
}

// ConnectValue implements Block
func (b *MemoryBlock) ConnectValue(slot string, child Block) error {
	s, ok := b.Slot(slot)
	if !ok || s.Kind != SlotValue {
		return b.unbound(slot, "value input")
	}
	c, err := b.own(child)
	if err != nil {
		return err
	}
	if !c.HasOutput() {
		return errors.NewTranslationErrorf(errors.CodeUnboundSlot,
			"%s has no output and cannot fill %s.%s", c.Type(), b.Type(), slot)
	}
	if b.values[slot] != nil {
		return errors.NewTranslationErrorf(errors.CodeUnboundSlot, "%s.%s is already connected", b.Type(), slot)
	}
	b.values[slot] = c
	c.parent, c.parentSlot = b, slot
	b.wired, c.wired = true, true
	return nil
}

// ConnectStatement implements Block
func (b *MemoryBlock) ConnectStatement(slot string, head Block) error {
	s, ok := b.Slot(slot)
	if !ok || s.Kind != SlotStatement {
		return b.unbound(slot, "statement input")
	}
	h, err := b.own(head)
	if err != nil {
		return err
	}
	if !h.HasPrevious() {
		return errors.NewTranslationErrorf(errors.CodeUnboundSlot,
			"%s has no previous terminal and cannot start %s.%s", h.Type(), b.Type(), slot)
	}
	if b.statements[slot] != nil {
		return errors.NewTranslationErrorf(errors.CodeUnboundSlot, "%s.%s is already connected", b.Type(), slot)
	}
	b.statements[slot] = h
	h.parent, h.parentSlot = b, slot
	b.wired, h.wired = true, true
	return nil
}

// ConnectNext implements Block
func (b *MemoryBlock) ConnectNext(next Block) error {
	n, err := b.own(next)
	if err != nil {
		return err
	}
	if !b.HasNext() {
		return errors.NewTranslationErrorf(errors.CodeUnboundSlot, "%s has no next terminal", b.Type())
	}
	if !n.HasPrevious() {
		return errors.NewTranslationErrorf(errors.CodeUnboundSlot, "%s has no previous terminal", n.Type())
	}
	if b.next != nil {
		return errors.NewTranslationErrorf(errors.CodeUnboundSlot, "%s already has a next block", b.Type())
	}
	b.next, n.prev = n, b
	b.wired, n.wired = true, true
	return nil
}

// own checks that other is an unattached block of the same workspace
func (b *MemoryBlock) own(other Block) (*MemoryBlock, error) {
	o, ok := other.(*MemoryBlock)
	if !ok || o == nil || o.ws != b.ws {
		return nil, errors.NewTranslationErrorf(errors.CodeUnboundSlot,
			"cannot connect a block from another workspace to %s", b.Type())
	}
	if o == b {
		return nil, errors.NewTranslationErrorf(errors.CodeUnboundSlot, "%s cannot connect to itself", b.Type())
	}
	if o.parent != nil || o.prev != nil {
		return nil, errors.NewTranslationErrorf(errors.CodeUnboundSlot, "%s %s is already attached", o.Type(), o.id)
	}
	return o, nil
}

// detach cuts every link between b and the blocks in gone
func (b *MemoryBlock) detach(gone map[*MemoryBlock]bool) {
	for slot, c := range b.values {
		if gone[c] {
			delete(b.values, slot)
		}
	}
	for slot, h := range b.statements {
		if gone[h] {
			delete(b.statements, slot)
		}
	}
	if gone[b.next] {
		b.next = nil
	}
	if gone[b.prev] {
		b.prev = nil
	}
	if gone[b.parent] {
		b.parent, b.parentSlot = nil, ""
	}
	b.wired = b.parent != nil || b.prev != nil || b.next != nil || len(b.values) > 0 || len(b.statements) > 0
}

func (b *MemoryBlock) unbound(name, what string) error {
	return errors.NewTranslationErrorf(errors.CodeUnboundSlot, "%s has no %s named %s", b.Type(), what, name).
		WithContext("template", b.Type()).
		WithContext("slot", name)
}

// Value implements Block
func (b *MemoryBlock) Value(slot string) Block {
	if c := b.values[slot]; c != nil {
		return c
	}
	return nil
}

// Statement implements Block
func (b *MemoryBlock) Statement(slot string) Block {
	if h := b.statements[slot]; h != nil {
		return h
	}
	return nil
}

// Next implements Block
func (b *MemoryBlock) Next() Block {
	if b.next == nil {
		return nil
	}
	return b.next
}

// Previous implements Block
func (b *MemoryBlock) Previous() Block {
	if b.prev == nil {
		return nil
	}
	return b.prev
}

// Parent returns the block this one hangs from: the owner of the input it
// fills or the previous block of its chain
func (b *MemoryBlock) Parent() Block {
	switch {
	case b.prev != nil:
		return b.prev
	case b.parent != nil:
		return b.parent
	default:
		return nil
	}
}

// HasOutput implements Block
func (b *MemoryBlock) HasOutput() bool { return b.tmpl.Shape == ShapeValue }

// HasPrevious implements Block
func (b *MemoryBlock) HasPrevious() bool { return b.tmpl.Shape == ShapeStatement && !b.unlinked }

// HasNext implements Block
func (b *MemoryBlock) HasNext() bool { return b.tmpl.Shape == ShapeStatement && !b.unlinked }

// DisableStatementLinks removes both statement terminals
func (b *MemoryBlock) DisableStatementLinks() { b.unlinked = true }

// Position implements Block. Attached blocks are laid out relative to the
// block they hang from.
func (b *MemoryBlock) Position() Point {
	switch {
	case b.prev != nil:
		return b.prev.Position().Add(0, b.prev.Height())
	case b.parent != nil:
		return b.parent.childPosition(b.parentSlot)
	default:
		return b.pos
	}
}

// MoveTo implements Block
func (b *MemoryBlock) MoveTo(p Point) { b.pos = p }

// Height implements Block
func (b *MemoryBlock) Height() int {
	h := headerHeight
	for _, s := range b.slots {
		if s.Kind == SlotStatement {
			h += max(stackHeight(b.statements[s.Name]), emptyBodyHeight) + footerHeight
		}
	}
	return h
}

func (b *MemoryBlock) childPosition(slot string) Point {
	origin := b.Position()
	y := headerHeight
	values := 0
	for _, s := range b.slots {
		switch s.Kind {
		case SlotValue:
			values++
			if s.Name == slot {
				return origin.Add(indentWidth*values, 0)
			}
		case SlotStatement:
			if s.Name == slot {
				return origin.Add(indentWidth, y)
			}
			y += max(stackHeight(b.statements[s.Name]), emptyBodyHeight) + footerHeight
		}
	}
	return origin
}

func stackHeight(head *MemoryBlock) int {
	h := 0
	for b := head; b != nil; b = b.next {
		h += b.Height()
	}
	return h
}

func (b *MemoryBlock) String() string {
	return fmt.Sprintf("%s#%s", b.Type(), b.id)
}
