// Package syntax defines the read-only syntax tree consumed by the lowering
// engine and a concrete in-memory implementation of it.
package syntax

import (
	"fmt"
	"strings"
)

// Position is a 1-based source location
type Position struct {
	Line   int
	Column int
}

// String renders the position as line:column
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Node is an immutable view over a parsed syntax tree.
// Navigation methods return a nil Node (not a typed nil) when there is no
// such neighbour.
type Node interface {
	Kind() string
	Text() string
	ChildCount() int
	Child(i int) Node
	Parent() Node
	PrevSibling() Node
	NextSibling() Node
	IsError() bool
	IsMissing() bool
	Pos() Position
}

// Element is the in-memory Node built by the front ends
type Element struct {
	kind     string
	text     string
	hasText  bool
	children []*Element
	parent   *Element
	index    int
	pos      Position
	isError  bool
	missing  bool
}

// New creates an element and adopts children. An empty text means the text
// is derived from the children.
func New(kind, text string, children ...*Element) *Element {
	e := &Element{kind: kind, text: text, hasText: text != ""}
	e.Append(children...)
	return e
}

// Token creates a leaf whose kind equals its text, e.g. "(" or "end"
func Token(text string) *Element {
	return &Element{kind: text, text: text, hasText: true}
}

// Leaf creates a childless element with an explicit, possibly empty, text
func Leaf(kind, text string) *Element {
	return &Element{kind: kind, text: text, hasText: true}
}

// NewError creates an ERROR element wrapping whatever could be recovered
func NewError(text string, children ...*Element) *Element {
	e := New("ERROR", text, children...)
	e.isError = true
	return e
}

// NewMissing creates a placeholder for a token the parser expected
func NewMissing(kind string) *Element {
	return &Element{kind: kind, hasText: true, missing: true}
}

// Append adopts children at the end of e. Nil children are skipped.
func (e *Element) Append(children ...*Element) *Element {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.parent = e
		c.index = len(e.children)
		e.children = append(e.children, c)
	}
	return e
}

// At sets the source position and returns e
func (e *Element) At(line, col int) *Element {
	e.pos = Position{Line: line, Column: col}
	return e
}

// Kind implements Node
func (e *Element) Kind() string { return e.kind }

// Text implements Node
func (e *Element) Text() string {
	if e.hasText {
		return e.text
	}
	parts := make([]string, 0, len(e.children))
	for _, c := range e.children {
		if t := c.Text(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// ChildCount implements Node
func (e *Element) ChildCount() int { return len(e.children) }

// Child implements Node
func (e *Element) Child(i int) Node {
	if i < 0 || i >= len(e.children) {
		return nil
	}
	return e.children[i]
}

// Parent implements Node
func (e *Element) Parent() Node {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

// PrevSibling implements Node
func (e *Element) PrevSibling() Node {
	if e.parent == nil || e.index == 0 {
		return nil
	}
	return e.parent.children[e.index-1]
}

// NextSibling implements Node
func (e *Element) NextSibling() Node {
	if e.parent == nil || e.index+1 >= len(e.parent.children) {
		return nil
	}
	return e.parent.children[e.index+1]
}

// IsError implements Node
func (e *Element) IsError() bool { return e.isError }

// IsMissing implements Node
func (e *Element) IsMissing() bool { return e.missing }

// Pos implements Node
func (e *Element) Pos() Position {
	if e.pos.Line == 0 && len(e.children) > 0 {
		return e.children[0].Pos()
	}
	return e.pos
}
