// Package blocks models the visual block graph a script is lowered into:
// the template catalog, blocks, their mutations and the workspace that owns
// them together with its variable table.
package blocks

import (
	"fmt"

	"github.com/Figliar/extension-plus-API/errors"
)

// Variable is a workspace variable
type Variable struct {
	ID   string
	Name string
}

// Workspace creates blocks and owns the variable table
type Workspace interface {
	NewBlock(template string) (Block, error)

	// EnsureVariable creates name only if it does not exist yet
	EnsureVariable(name string) Variable
	Variable(name string) (Variable, bool)
	VariableByID(id string) (Variable, bool)
	Variables() []Variable

	// Blocks lists every block in creation order
	Blocks() []Block
	// TopBlocks lists blocks that hang from nothing, in creation order
	TopBlocks() []Block
}

// MemoryWorkspace is an in-memory Workspace
type MemoryWorkspace struct {
	catalog   *Catalog
	blocks    []*MemoryBlock
	vars      []Variable
	varByName map[string]int
}

// NewMemoryWorkspace creates an empty workspace over catalog.
// A nil catalog means DefaultCatalog.
func NewMemoryWorkspace(catalog *Catalog) *MemoryWorkspace {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &MemoryWorkspace{
		catalog:   catalog,
		varByName: make(map[string]int),
	}
}

// Catalog returns the templates this workspace instantiates
func (w *MemoryWorkspace) Catalog() *Catalog {
	return w.catalog
}

// NewBlock implements Workspace
func (w *MemoryWorkspace) NewBlock(template string) (Block, error) {
	tmpl, ok := w.catalog.Template(template)
	if !ok {
		return nil, errors.NewTranslationErrorf(errors.CodeUnknownTemplate, "unknown block template %q", template)
	}
	b := newMemoryBlock(w, fmt.Sprintf("b%d", len(w.blocks)+1), tmpl)
	w.blocks = append(w.blocks, b)
	return b, nil
}

// EnsureVariable implements Workspace
func (w *MemoryWorkspace) EnsureVariable(name string) Variable {
	if i, ok := w.varByName[name]; ok {
		return w.vars[i]
	}
	v := Variable{ID: fmt.Sprintf("v%d", len(w.vars)+1), Name: name}
	w.varByName[name] = len(w.vars)
	w.vars = append(w.vars, v)
	return v
}

// Variable implements Workspace
func (w *MemoryWorkspace) Variable(name string) (Variable, bool) {
	i, ok := w.varByName[name]
	if !ok {
		return Variable{}, false
	}
	return w.vars[i], true
}

// VariableByID implements Workspace
func (w *MemoryWorkspace) VariableByID(id string) (Variable, bool) {
	for _, v := range w.vars {
		if v.ID == id {
			return v, true
		}
	}
	return Variable{}, false
}

// Variables implements Workspace
func (w *MemoryWorkspace) Variables() []Variable {
	out := make([]Variable, len(w.vars))
	copy(out, w.vars)
	return out
}

// Blocks implements Workspace
func (w *MemoryWorkspace) Blocks() []Block {
	out := make([]Block, 0, len(w.blocks))
	for _, b := range w.blocks {
		out = append(out, b)
	}
	return out
}

// TopBlocks implements Workspace
func (w *MemoryWorkspace) TopBlocks() []Block {
	var out []Block
	for _, b := range w.blocks {
		if b.parent == nil && b.prev == nil {
			out = append(out, b)
		}
	}
	return out
}

// Checkpoint marks how many blocks and variables a workspace holds
type Checkpoint struct {
	blocks int
	vars   int
}

// Checkpoint returns the current size of the workspace
func (w *MemoryWorkspace) Checkpoint() Checkpoint {
	return Checkpoint{blocks: len(w.blocks), vars: len(w.vars)}
}

// Rewind drops every block and variable created after c. Links from the
// remaining blocks to dropped ones are cut.
func (w *MemoryWorkspace) Rewind(c Checkpoint) {
	if c.blocks < len(w.blocks) {
		dropped := make(map[*MemoryBlock]bool, len(w.blocks)-c.blocks)
		for _, b := range w.blocks[c.blocks:] {
			dropped[b] = true
		}
		w.blocks = w.blocks[:c.blocks]
		for _, b := range w.blocks {
			b.detach(dropped)
		}
	}
	if c.vars < len(w.vars) {
		for _, v := range w.vars[c.vars:] {
			delete(w.varByName, v.Name)
		}
		w.vars = w.vars[:c.vars]
	}
}

// Clear drops every block and variable
func (w *MemoryWorkspace) Clear() {
	w.blocks = nil
	w.vars = nil
	w.varByName = make(map[string]int)
}
