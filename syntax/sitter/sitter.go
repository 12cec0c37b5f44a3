// Package sitter exposes tree-sitter Lua parse trees as syntax nodes.
// Tree-sitter recovers from errors and keeps parsing, so its trees locate
// every ERROR and MISSING node of a broken script.
package sitter

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/lua"

	"github.com/Figliar/extension-plus-API/errors"
	"github.com/Figliar/extension-plus-API/syntax"
)

// Node adapts a tree-sitter node to syntax.Node
type Node struct {
	n   *sitter.Node
	src []byte
}

func wrap(n *sitter.Node, src []byte) syntax.Node {
	if n == nil {
		return nil
	}
	return &Node{n: n, src: src}
}

// Kind implements syntax.Node
func (n *Node) Kind() string { return n.n.Type() }

// Text implements syntax.Node
func (n *Node) Text() string { return n.n.Content(n.src) }

// ChildCount implements syntax.Node
func (n *Node) ChildCount() int { return int(n.n.ChildCount()) }

// Child implements syntax.Node
func (n *Node) Child(i int) syntax.Node {
	if i < 0 || i >= n.ChildCount() {
		return nil
	}
	return wrap(n.n.Child(i), n.src)
}

// Parent implements syntax.Node
func (n *Node) Parent() syntax.Node { return wrap(n.n.Parent(), n.src) }

// PrevSibling implements syntax.Node
func (n *Node) PrevSibling() syntax.Node { return wrap(n.n.PrevSibling(), n.src) }

// NextSibling implements syntax.Node
func (n *Node) NextSibling() syntax.Node { return wrap(n.n.NextSibling(), n.src) }

// IsError implements syntax.Node
func (n *Node) IsError() bool { return n.n.Type() == "ERROR" }

// IsMissing implements syntax.Node
func (n *Node) IsMissing() bool { return n.n.IsMissing() }

// Pos implements syntax.Node. It is the position of the first non-blank
// byte; some Lua grammar nodes start at the newline before their first token.
func (n *Node) Pos() syntax.Position {
	p := n.n.StartPoint()
	pos := syntax.Position{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
	for _, c := range []byte(n.Text()) {
		switch c {
		case '\n':
			pos.Line++
			pos.Column = 1
		case ' ', '\t', '\r':
			pos.Column++
		default:
			return pos
		}
	}
	return pos
}

// Parser parses Lua source with the tree-sitter grammar
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a parser bound to the Lua language
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(lua.GetLanguage())
	return &Parser{parser: p}
}

// Parse returns the root of the tree for src
func (p *Parser) Parse(ctx context.Context, src []byte) (syntax.Node, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, errors.WrapError(err, errors.CodeParseError, "tree-sitter parse failed")
	}
	return wrap(tree.RootNode(), src), nil
}

// Close releases the parser
func (p *Parser) Close() {
	p.parser.Close()
}

// Diagnostic is one parser-level problem
type Diagnostic struct {
	Pos     syntax.Position
	Missing bool
	Kind    string
	Text    string
}

func (d Diagnostic) String() string {
	if d.Missing {
		return fmt.Sprintf("%s: missing %s", d.Pos, d.Kind)
	}
	text := strings.TrimSpace(d.Text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i] + " ..."
	}
	return fmt.Sprintf("%s: syntax error near %q", d.Pos, text)
}

// Diagnose parses src and lists its ERROR and MISSING nodes in source order.
// Each diagnostic sits at the first non-blank byte of its node.
func Diagnose(ctx context.Context, src []byte) ([]Diagnostic, error) {
	p := NewParser()
	defer p.Close()

	root, err := p.Parse(ctx, src)
	if err != nil {
		return nil, err
	}
	var out []Diagnostic
	for _, n := range syntax.FindErrors(root) {
		out = append(out, Diagnostic{
			Pos:     n.Pos(),
			Missing: n.IsMissing(),
			Kind:    n.Kind(),
			Text:    n.Text(),
		})
	}
	return out, nil
}

// Positions converts diagnostics to error positions
func Positions(diags []Diagnostic) []errors.Position {
	out := make([]errors.Position, 0, len(diags))
	for _, d := range diags {
		out = append(out, errors.Position{Line: d.Pos.Line, Column: d.Pos.Column})
	}
	return out
}
