package syntax

import (
	"fmt"
	"strings"
)

// FirstChild returns the first child of n or nil
func FirstChild(n Node) Node {
	if n == nil || n.ChildCount() == 0 {
		return nil
	}
	return n.Child(0)
}

// LastChild returns the last child of n or nil
func LastChild(n Node) Node {
	if n == nil || n.ChildCount() == 0 {
		return nil
	}
	return n.Child(n.ChildCount() - 1)
}

// Children returns the children of n in order
func Children(n Node) []Node {
	if n == nil {
		return nil
	}
	out := make([]Node, 0, n.ChildCount())
	for i := 0; i < n.ChildCount(); i++ {
		out = append(out, n.Child(i))
	}
	return out
}

// ChildOfKind returns the first child of n with the given kind
func ChildOfKind(n Node, kind string) Node {
	if n == nil {
		return nil
	}
	for i := 0; i < n.ChildCount(); i++ {
		if c := n.Child(i); c.Kind() == kind {
			return c
		}
	}
	return nil
}

// ChildrenOfKind returns every child of n with the given kind
func ChildrenOfKind(n Node, kind string) []Node {
	var out []Node
	for _, c := range Children(n) {
		if c.Kind() == kind {
			out = append(out, c)
		}
	}
	return out
}

// KindIs reports whether n is non-nil and of one of the given kinds
func KindIs(n Node, kinds ...string) bool {
	if n == nil {
		return false
	}
	for _, k := range kinds {
		if n.Kind() == k {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for i := 0; i < n.ChildCount(); i++ {
		Walk(n.Child(i), fn)
	}
}

// FindErrors collects every error or missing node below root
func FindErrors(root Node) []Node {
	var out []Node
	Walk(root, func(n Node) bool {
		if n.IsError() || n.IsMissing() {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Dump renders the tree one node per line, children indented by two spaces
func Dump(root Node) string {
	var b strings.Builder
	dump(&b, root, 0)
	return b.String()
}

func dump(b *strings.Builder, n Node, depth int) {
	if n == nil {
		return
	}
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.Kind())
	switch {
	case n.IsError():
		b.WriteString(" !error")
	case n.IsMissing():
		b.WriteString(" !missing")
	}
	if n.ChildCount() == 0 && n.Text() != n.Kind() {
		fmt.Fprintf(b, " %q", n.Text())
	}
	if p := n.Pos(); p.Line > 0 {
		fmt.Fprintf(b, " @%s", p)
	}
	b.WriteString("\n")
	for i := 0; i < n.ChildCount(); i++ {
		dump(b, n.Child(i), depth+1)
	}
}
