package lowering

import (
	"github.com/Figliar/extension-plus-API/blocks"
	"github.com/Figliar/extension-plus-API/syntax"
)

// Signature records what a call site needs to know about a user-defined
// function
type Signature struct {
	Name      string
	Params    []string
	Mutation  *blocks.ProcedureMutation
	HasReturn bool
	Return    syntax.Node

	provisional bool
}

// Provisional reports whether the entry comes from the forward pre-pass and
// the definition itself has not been lowered yet
func (s Signature) Provisional() bool {
	return s.provisional
}

func newSignature(name string, params []string, ret syntax.Node) Signature {
	sig := Signature{
		Name:      name,
		Params:    append([]string(nil), params...),
		HasReturn: ret != nil,
		Return:    ret,
	}
	if len(params) > 0 {
		sig.Mutation = &blocks.ProcedureMutation{Params: sig.Params}
	}
	return sig
}

// SignatureTable maps function names to their signatures.
// It is not safe for concurrent use.
type SignatureTable struct {
	entries map[string]Signature
	order   []string
}

// NewSignatureTable creates an empty table
func NewSignatureTable() *SignatureTable {
	return &SignatureTable{entries: make(map[string]Signature)}
}

// Define records sig as lowered. It reports whether an earlier lowered
// definition of the same name was replaced.
func (t *SignatureTable) Define(sig Signature) bool {
	old, exists := t.entries[sig.Name]
	if !exists {
		t.order = append(t.order, sig.Name)
	}
	sig.provisional = false
	t.entries[sig.Name] = sig
	return exists && !old.provisional
}

// declare records sig ahead of its definition unless the name is known
func (t *SignatureTable) declare(sig Signature) {
	if _, exists := t.entries[sig.Name]; exists {
		return
	}
	sig.provisional = true
	t.entries[sig.Name] = sig
	t.order = append(t.order, sig.Name)
}

// Lookup returns the signature for name
func (t *SignatureTable) Lookup(name string) (Signature, bool) {
	sig, ok := t.entries[name]
	return sig, ok
}

// Names lists known functions in the order they were first seen
func (t *SignatureTable) Names() []string {
	return append([]string(nil), t.order...)
}

// All returns every signature in the order they were first seen
func (t *SignatureTable) All() []Signature {
	out := make([]Signature, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.entries[name])
	}
	return out
}

// Len returns the number of known functions
func (t *SignatureTable) Len() int {
	return len(t.entries)
}

// clone copies the table so a failed run can restore it
func (t *SignatureTable) clone() *SignatureTable {
	c := &SignatureTable{
		entries: make(map[string]Signature, len(t.entries)),
		order:   append([]string(nil), t.order...),
	}
	for name, sig := range t.entries {
		c.entries[name] = sig
	}
	return c
}
