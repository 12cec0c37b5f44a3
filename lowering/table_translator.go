package lowering

import (
	"strconv"

	"github.com/Figliar/extension-plus-API/blocks"
	"github.com/Figliar/extension-plus-API/syntax"
)

func itemSlot(i int) string { return "ADD" + strconv.Itoa(i) }

// tableTranslator builds a list from a table constructor; each field
// contributes its value, keys are not represented
type tableTranslator struct{ base }

func newTableTranslator(s *Session, node syntax.Node, prev blocks.Block) Translator {
	return &tableTranslator{newBase(s, node, prev)}
}

func (t *tableTranslator) Variant() Variant { return VariantTable }

func (t *tableTranslator) Lower() (Result, error) {
	values := tableValues(t.node)
	if len(values) == 0 {
		blk, err := t.block("lists_create_empty")
		if err != nil {
			return Result{}, err
		}
		return Produced(blk), nil
	}

	blk, err := t.block("lists_create_with")
	if err != nil {
		return Result{}, err
	}
	if err := t.s.at(blk.ApplyMutation(blocks.ItemsMutation{Count: len(values)}), t.node); err != nil {
		return Result{}, err
	}
	for i, v := range values {
		if err := t.connectValue(blk, itemSlot(i), v); err != nil {
			return Result{}, err
		}
	}
	return Produced(blk), nil
}

func tableValues(table syntax.Node) []syntax.Node {
	var out []syntax.Node
	for _, f := range syntax.ChildrenOfKind(syntax.ChildOfKind(table, "field_list"), "field") {
		if v := syntax.LastChild(f); v != nil {
			out = append(out, v)
		}
	}
	return out
}
