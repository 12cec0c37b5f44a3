package blocks

import (
	"fmt"
	"strings"
)

// Dump renders the workspace graph as indented text. Each top-level stack
// starts with its position; value inputs are printed as "SLOT: block",
// statement inputs as "SLOT:" followed by their indented chain.
func Dump(ws Workspace) string {
	var b strings.Builder
	for i, top := range ws.TopBlocks() {
		if i > 0 {
			b.WriteString("\n")
		}
		p := top.Position()
		fmt.Fprintf(&b, "@%d,%d\n", p.X, p.Y)
		dumpChain(&b, ws, top, 0)
	}
	return b.String()
}

// Describe renders one block header: type, fields and mutation
func Describe(ws Workspace, blk Block) string {
	var b strings.Builder
	b.WriteString(blk.Type())
	for _, s := range blk.Slots() {
		if !s.Kind.IsField() {
			continue
		}
		v, ok := blk.Field(s.Name)
		if !ok {
			continue
		}
		if s.Kind == SlotVariable && ws != nil {
			if variable, found := ws.VariableByID(v); found {
				v = variable.Name
			}
		}
		fmt.Fprintf(&b, " %s=%s", s.Name, v)
	}
	if m := blk.Mutation(); m != nil && blk.Template().Mutator != MutatorNone {
		fmt.Fprintf(&b, " <%s>", m)
	}
	return b.String()
}

// DumpChain renders head, its inputs and the blocks chained after it
func DumpChain(ws Workspace, head Block) string {
	var b strings.Builder
	dumpChain(&b, ws, head, 0)
	return b.String()
}

func dumpChain(b *strings.Builder, ws Workspace, head Block, depth int) {
	for blk := head; blk != nil; blk = blk.Next() {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(Describe(ws, blk))
		b.WriteString("\n")
		dumpInputs(b, ws, blk, depth+1)
	}
}

func dumpInputs(b *strings.Builder, ws Workspace, blk Block, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, s := range blk.Slots() {
		switch s.Kind {
		case SlotValue:
			child := blk.Value(s.Name)
			if child == nil {
				continue
			}
			fmt.Fprintf(b, "%s%s: %s\n", indent, s.Name, Describe(ws, child))
			dumpInputs(b, ws, child, depth+1)
		case SlotStatement:
			head := blk.Statement(s.Name)
			if head == nil {
				continue
			}
			fmt.Fprintf(b, "%s%s:\n", indent, s.Name)
			dumpChain(b, ws, head, depth+1)
		}
	}
}
