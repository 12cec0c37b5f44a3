package lowering

import (
	"strconv"

	"github.com/Figliar/extension-plus-API/blocks"
	"github.com/Figliar/extension-plus-API/errors"
	"github.com/Figliar/extension-plus-API/syntax"
)

// clause is one branch of an if statement
type clause struct {
	kind string
	cond syntax.Node
	body []syntax.Node
}

// ifTranslator builds controls_if with one IF/DO pair per condition and an
// optional ELSE body
type ifTranslator struct{ base }

func newIfTranslator(s *Session, node syntax.Node, prev blocks.Block) Translator {
	return &ifTranslator{newBase(s, node, prev)}
}

func (t *ifTranslator) Variant() Variant { return VariantIf }

func (t *ifTranslator) Lower() (Result, error) {
	clauses := splitClauses(t.node)
	mutation := blocks.IfMutation{}
	for _, c := range clauses[1:] {
		switch c.kind {
		case "elseif_clause":
			mutation.ElseIf++
		case "else_clause":
			mutation.Else++
		}
	}
	if mutation.Else > 1 {
		return Result{}, t.s.errorf(errors.CodeUnsupportedShape, t.node, "if statement with %d else clauses", mutation.Else)
	}

	blk, err := t.block("controls_if")
	if err != nil {
		return Result{}, err
	}
	if err := t.s.at(blk.ApplyMutation(mutation), t.node); err != nil {
		return Result{}, err
	}

	n := 0
	for _, c := range clauses {
		slot := "ELSE"
		if c.kind != "else_clause" {
			if err := t.connectValue(blk, "IF"+strconv.Itoa(n), c.cond); err != nil {
				return Result{}, err
			}
			slot = "DO" + strconv.Itoa(n)
			n++
		}
		if err := t.s.Sequence(c.body, blk, slot); err != nil {
			return Result{}, err
		}
	}
	return Produced(blk), nil
}

// splitClauses partitions an if statement into its branches. Comments that
// sit between branches belong to the branch before them.
func splitClauses(n syntax.Node) []clause {
	clauses := []clause{{kind: n.Kind(), cond: n.Child(1)}}
	cur := &clauses[0]
	for _, c := range syntax.Children(n) {
		switch c.Kind() {
		case "comment":
			cur.body = append(cur.body, c)
		case "block":
			cur.body = append(cur.body, syntax.Children(c)...)
		case "elseif_clause", "else_clause":
			next := clause{kind: c.Kind(), body: gatherBody(c)}
			if c.Kind() == "elseif_clause" {
				next.cond = c.Child(1)
			}
			clauses = append(clauses, next)
			cur = &clauses[len(clauses)-1]
		}
	}
	return clauses
}

// loopTranslator covers while and repeat; both become controls_whileUntil
type loopTranslator struct {
	base
	mode string
	cond syntax.Node
}

func newWhileTranslator(s *Session, node syntax.Node, prev blocks.Block) Translator {
	return &loopTranslator{base: newBase(s, node, prev), mode: "WHILE", cond: node.Child(1)}
}

func newRepeatTranslator(s *Session, node syntax.Node, prev blocks.Block) Translator {
	return &loopTranslator{base: newBase(s, node, prev), mode: "UNTIL", cond: syntax.LastChild(node)}
}

func (t *loopTranslator) Variant() Variant { return VariantLoop }

func (t *loopTranslator) Lower() (Result, error) {
	blk, err := t.block("controls_whileUntil")
	if err != nil {
		return Result{}, err
	}
	if err := t.setField(blk, "MODE", t.mode); err != nil {
		return Result{}, err
	}
	// until sees the locals of the body, so the body goes first
	if t.mode == "UNTIL" {
		if err := t.s.sequenceBody(t.node, blk, "DO"); err != nil {
			return Result{}, err
		}
		if err := t.connectValue(blk, "BOOL", t.cond); err != nil {
			return Result{}, err
		}
		return Produced(blk), nil
	}
	if err := t.connectValue(blk, "BOOL", t.cond); err != nil {
		return Result{}, err
	}
	if err := t.s.sequenceBody(t.node, blk, "DO"); err != nil {
		return Result{}, err
	}
	return Produced(blk), nil
}
