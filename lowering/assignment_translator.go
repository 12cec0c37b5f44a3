package lowering

import (
	"github.com/Figliar/extension-plus-API/blocks"
	"github.com/Figliar/extension-plus-API/errors"
	"github.com/Figliar/extension-plus-API/syntax"
)

// listItems returns the entries of a variable_list, expression_list or
// parameter_list without the separating commas
func listItems(list syntax.Node) []syntax.Node {
	var out []syntax.Node
	for _, c := range syntax.Children(list) {
		if c.Kind() != "," {
			out = append(out, c)
		}
	}
	return out
}

func isIndexed(target syntax.Node) bool {
	return target.Kind() == "variable" && target.ChildCount() > 1
}

// chainer links statement blocks produced by one node
type chainer struct {
	head, tail blocks.Block
}

func (c *chainer) add(b base, blk blocks.Block) error {
	if c.head == nil {
		c.head, c.tail = blk, blk
		return nil
	}
	if err := c.tail.ConnectNext(blk); err != nil {
		return b.s.at(err, b.node)
	}
	c.tail = blk
	return nil
}

func (c *chainer) result() Result { return Chain(c.head, c.tail) }

type assignmentTranslator struct{ base }

func newAssignmentTranslator(s *Session, node syntax.Node, prev blocks.Block) Translator {
	return &assignmentTranslator{newBase(s, node, prev)}
}

func (t *assignmentTranslator) Variant() Variant { return VariantAssignment }

func (t *assignmentTranslator) Lower() (Result, error) {
	targets := listItems(syntax.ChildOfKind(t.node, "variable_list"))
	values := listItems(syntax.ChildOfKind(t.node, "expression_list"))
	if len(targets) == 0 || len(targets) != len(values) {
		return Result{}, t.s.errorf(errors.CodeUnsupportedShape, t.node,
			"assignment of %d values to %d targets", len(values), len(targets))
	}

	var chain chainer
	for i, target := range targets {
		blk, err := t.assign(target, values[i])
		if err != nil {
			return Result{}, err
		}
		if err := chain.add(t.base, blk); err != nil {
			return Result{}, err
		}
	}
	return chain.result(), nil
}

// assign lowers value before touching the target so the value cannot see a
// variable the assignment itself creates
func (t *assignmentTranslator) assign(target, value syntax.Node) (blocks.Block, error) {
	rhs, err := t.s.Lower(value)
	if err != nil {
		return nil, err
	}

	if !isIndexed(target) {
		id := t.declare(target)
		blk, err := t.block("variables_set")
		if err != nil {
			return nil, err
		}
		if err := t.setField(blk, "VAR", id); err != nil {
			return nil, err
		}
		return blk, t.s.at(blk.ConnectValue("VALUE", rhs), value)
	}

	blk, err := t.block("lists_setIndex")
	if err != nil {
		return nil, err
	}
	if err := t.setField(blk, "MODE", "SET"); err != nil {
		return nil, err
	}
	if err := t.setField(blk, "WHERE", "FROM_START"); err != nil {
		return nil, err
	}
	if err := t.connectValue(blk, "LIST", target.Child(0)); err != nil {
		return nil, err
	}
	if err := t.connectKey(blk, "AT", target); err != nil {
		return nil, err
	}
	return blk, t.s.at(blk.ConnectValue("TO", rhs), value)
}

type localTranslator struct{ base }

func newLocalTranslator(s *Session, node syntax.Node, prev blocks.Block) Translator {
	return &localTranslator{newBase(s, node, prev)}
}

func (t *localTranslator) Variant() Variant { return VariantLocal }

func (t *localTranslator) Lower() (Result, error) {
	names := listItems(syntax.ChildOfKind(t.node, "variable_list"))
	values := listItems(syntax.ChildOfKind(t.node, "expression_list"))
	if len(names) == 0 || len(values) > len(names) {
		return Result{}, t.s.errorf(errors.CodeUnsupportedShape, t.node,
			"local declaration of %d names with %d values", len(names), len(values))
	}

	var chain chainer
	for i, name := range names {
		var rhs blocks.Block
		var err error
		if i < len(values) {
			rhs, err = t.s.Lower(values[i])
		} else {
			rhs, err = t.block("logic_null")
		}
		if err != nil {
			return Result{}, err
		}

		blk, err := t.block("local_variable")
		if err != nil {
			return Result{}, err
		}
		if err := t.setField(blk, "VAR", t.declare(name)); err != nil {
			return Result{}, err
		}
		if err := t.s.at(blk.ConnectValue("TO", rhs), name); err != nil {
			return Result{}, err
		}
		if err := chain.add(t.base, blk); err != nil {
			return Result{}, err
		}
	}
	return chain.result(), nil
}
