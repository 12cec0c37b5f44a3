package lowering

import (
	"github.com/Figliar/extension-plus-API/blocks"
	"github.com/Figliar/extension-plus-API/errors"
	"github.com/Figliar/extension-plus-API/syntax"
)

// discard is the loop variable name that means "index not used"
const discard = "_"

type forNumericTranslator struct{ base }

func newForNumericTranslator(s *Session, node syntax.Node, prev blocks.Block) Translator {
	return &forNumericTranslator{newBase(s, node, prev)}
}

func (t *forNumericTranslator) Variant() Variant { return VariantForNumeric }

func (t *forNumericTranslator) Lower() (Result, error) {
	loopVar := t.node.Child(1)
	if loopVar == nil {
		return Result{}, t.s.errorf(errors.CodeUnsupportedShape, t.node, "numeric for without a loop variable")
	}
	blk, err := t.block("controls_for")
	if err != nil {
		return Result{}, err
	}
	if err := t.setField(blk, "VAR", t.declare(loopVar)); err != nil {
		return Result{}, err
	}
	if err := t.connectValue(blk, "FROM", t.node.Child(3)); err != nil {
		return Result{}, err
	}
	if err := t.connectValue(blk, "TO", t.node.Child(5)); err != nil {
		return Result{}, err
	}
	if syntax.KindIs(t.node.Child(6), ",") {
		if err := t.connectValue(blk, "BY", t.node.Child(7)); err != nil {
			return Result{}, err
		}
	}
	if err := t.s.sequenceBody(t.node, blk, "DO"); err != nil {
		return Result{}, err
	}
	return Produced(blk), nil
}

// forGenericTranslator handles "for _, v in ipairs(t)" as a for-each and
// "for i, v in pairs(t)" as an index/item loop
type forGenericTranslator struct{ base }

func newForGenericTranslator(s *Session, node syntax.Node, prev blocks.Block) Translator {
	return &forGenericTranslator{newBase(s, node, prev)}
}

func (t *forGenericTranslator) Variant() Variant { return VariantForGeneric }

func (t *forGenericTranslator) Lower() (Result, error) {
	names := listItems(syntax.ChildOfKind(t.node, "variable_list"))
	if len(names) != 2 {
		return Result{}, t.s.errorf(errors.CodeUnsupportedShape, t.node,
			"generic for with %d loop variables, want index and item", len(names))
	}
	collection, err := t.collection()
	if err != nil {
		return Result{}, err
	}

	index, item := names[0], names[1]
	if index.Text() == discard {
		blk, err := t.block("controls_forEach")
		if err != nil {
			return Result{}, err
		}
		if err := t.setField(blk, "VAR", t.declare(item)); err != nil {
			return Result{}, err
		}
		return t.finish(blk, "LIST", collection, "DO")
	}

	blk, err := t.block("for_index_item")
	if err != nil {
		return Result{}, err
	}
	if err := t.setField(blk, "index", t.declare(index)); err != nil {
		return Result{}, err
	}
	if err := t.setField(blk, "item", t.declare(item)); err != nil {
		return Result{}, err
	}
	return t.finish(blk, "array", collection, "input")
}

func (t *forGenericTranslator) finish(blk blocks.Block, listSlot string, collection syntax.Node, bodySlot string) (Result, error) {
	if err := t.connectValue(blk, listSlot, collection); err != nil {
		return Result{}, err
	}
	if err := t.s.sequenceBody(t.node, blk, bodySlot); err != nil {
		return Result{}, err
	}
	return Produced(blk), nil
}

// collection unwraps t from an iterator call such as ipairs(t)
func (t *forGenericTranslator) collection() (syntax.Node, error) {
	exprs := listItems(syntax.ChildOfKind(t.node, "expression_list"))
	if len(exprs) != 1 || exprs[0].Kind() != "call" {
		return nil, t.s.errorf(errors.CodeUnsupportedShape, t.node, "generic for must iterate over a call like ipairs(t)")
	}
	args := callArguments(exprs[0])
	if len(args) == 0 {
		return nil, t.s.errorf(errors.CodeUnsupportedShape, exprs[0], "iterator %s has no collection argument", exprs[0].Text())
	}
	return args[0], nil
}
