// Package gopherlua builds the syntax tree for LÖVE2D scripts with the
// gopher-lua parser. The parser drops comments and blank lines, so a source
// scan restores them into the body they were written in.
package gopherlua

import (
	"bytes"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/gopher-lua/parse"

	"github.com/Figliar/extension-plus-API/errors"
	"github.com/Figliar/extension-plus-API/syntax"
)

var errorPosition = regexp.MustCompile(`line:(\d+)\(column:(\d+)\)`)

// Parse turns src into a chunk element. On a syntax error the chunk holds an
// ERROR node at the reported position and the error is returned as well.
func Parse(src []byte, name string) (*syntax.Element, error) {
	text := strings.ReplaceAll(string(src), "\r\n", "\n")

	var shebang *syntax.Element
	if strings.HasPrefix(text, "#!") {
		first := text
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			first = text[:i]
		}
		shebang = syntax.Leaf("shebang", first).At(1, 1)
		text = strings.Repeat(" ", len(first)) + text[len(first):]
	}

	index := scan(text)
	if shebang != nil {
		index.dropLine(1)
	}
	root := syntax.Leaf("chunk", "")
	root.Append(shebang)

	stmts, err := parse.Parse(bytes.NewReader([]byte(text)), name)
	if err != nil {
		line, col := 0, 0
		if m := errorPosition.FindStringSubmatch(err.Error()); m != nil {
			line, _ = strconv.Atoi(m[1])
			col, _ = strconv.Atoi(m[2])
		}
		message := strings.TrimSpace(err.Error())
		root.Append(syntax.NewError(message).At(line, col))
		return root, errors.NewSyntaxError(message, line, col).
			WithContext("source", name).
			Wrap(err)
	}

	c := &converter{src: index}
	top := &body{target: root, first: 1, last: len(index.lines)}
	for _, st := range stmts {
		top.items = append(top.items, c.stmt(st))
	}
	for _, d := range index.decorations {
		top.place(c, d)
	}
	top.finish()
	return root, nil
}

// Incomplete reports whether src ends inside an open block, bracket or long
// string, so more input could still complete it
func Incomplete(src []byte) bool {
	s := scan(strings.ReplaceAll(string(src), "\r\n", "\n"))
	return s.depth > 0 || s.open
}

// ParseFile reads and parses the script at path
func ParseFile(path string) (*syntax.Element, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewSystemError(errors.CodeParseError, "cannot read script").
			WithContext("path", path).
			Wrap(err)
	}
	return Parse(data, path)
}

// body is a statement list whose block element is filled once comments and
// blank lines have been merged in
type body struct {
	target      *syntax.Element
	first, last int
	items       []item
}

// item is one statement of a body with the lines it spans
type item struct {
	el          *syntax.Element
	first, last int
	bodies      []*body
}

// place puts d into the deepest body whose lines cover it
func (b *body) place(c *converter, d decoration) {
	for _, it := range b.items {
		if len(it.bodies) > 0 && it.first <= d.line && d.line < it.last {
			it.bodyAt(d.line).place(c, d)
			return
		}
		if len(it.bodies) == 0 && it.first < d.line && d.line <= it.last && d.blank {
			return
		}
	}
	pos := 0
	for pos < len(b.items) && b.items[pos].first <= d.line {
		pos++
	}
	b.items = append(b.items, item{})
	copy(b.items[pos+1:], b.items[pos:])
	b.items[pos] = c.decoration(d)
}

func (it item) bodyAt(line int) *body {
	found := it.bodies[0]
	for _, b := range it.bodies {
		if b.first <= line {
			found = b
		}
	}
	return found
}

func (b *body) finish() {
	for _, it := range b.items {
		b.target.Append(it.el)
		for _, nested := range it.bodies {
			nested.finish()
		}
	}
}

func (c *converter) decoration(d decoration) item {
	if d.blank {
		return item{el: syntax.Leaf("empty_line", "").At(d.line, 1), first: d.line, last: d.line}
	}
	el := syntax.Leaf("comment", d.text).At(d.line, d.col)
	return item{el: el, first: d.line, last: d.line + strings.Count(d.text, "\n")}
}
