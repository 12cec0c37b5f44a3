package lowering

import (
	"strings"

	"github.com/Figliar/extension-plus-API/blocks"
	"github.com/Figliar/extension-plus-API/errors"
	"github.com/Figliar/extension-plus-API/syntax"
)

// reference builds a variables_get block for an existing variable. Unknown
// names fail unless the policy lets them through, in which case the
// variable is created.
func (b base) reference(n syntax.Node) (blocks.Block, error) {
	name := strings.TrimSpace(n.Text())
	v, ok := b.s.ws.Variable(name)
	if !ok {
		err := b.s.errorf(errors.CodeUndeclaredVariable, n, "variable %q is read before it is assigned", name)
		if err := b.s.recoverable(err); err != nil {
			return nil, err
		}
		v = b.s.ws.EnsureVariable(name)
	}
	blk, err := b.block("variables_get")
	if err != nil {
		return nil, err
	}
	if err := b.setField(blk, "VAR", v.ID); err != nil {
		return nil, err
	}
	return blk, nil
}

// declare creates the variable n names and returns its ID
func (b base) declare(n syntax.Node) string {
	return b.s.ws.EnsureVariable(strings.TrimSpace(n.Text())).ID
}

type identifierTranslator struct{ base }

func newIdentifierTranslator(s *Session, node syntax.Node, prev blocks.Block) Translator {
	return &identifierTranslator{newBase(s, node, prev)}
}

func (t *identifierTranslator) Variant() Variant { return VariantReference }

func (t *identifierTranslator) Lower() (Result, error) {
	blk, err := t.reference(t.node)
	if err != nil {
		return Result{}, err
	}
	return Produced(blk), nil
}

// variableTranslator reads a variable, a known constant such as math.pi, or
// an indexed element: t[i] or t.key
type variableTranslator struct{ base }

func newVariableTranslator(s *Session, node syntax.Node, prev blocks.Block) Translator {
	return &variableTranslator{newBase(s, node, prev)}
}

func (t *variableTranslator) Variant() Variant {
	if t.node.ChildCount() > 1 {
		return VariantIndex
	}
	return VariantReference
}

func (t *variableTranslator) Lower() (Result, error) {
	if t.node.ChildCount() <= 1 {
		blk, err := t.reference(t.node)
		if err != nil {
			return Result{}, err
		}
		return Produced(blk), nil
	}

	if c, ok := t.s.tables.Constant(t.node.Text()); ok {
		blk, err := t.block(c.Template)
		if err != nil {
			return Result{}, err
		}
		for _, name := range c.FieldNames() {
			if err := t.setField(blk, name, c.Fields[name]); err != nil {
				return Result{}, err
			}
		}
		return Produced(blk), nil
	}

	blk, err := t.block("lists_getIndex")
	if err != nil {
		return Result{}, err
	}
	if err := t.connectValue(blk, "VALUE", t.node.Child(0)); err != nil {
		return Result{}, err
	}
	if err := t.connectKey(blk, "AT", t.node); err != nil {
		return Result{}, err
	}
	return Produced(blk), nil
}

// connectKey wires the key of an index node: a text block for t.key, the
// lowered expression for t[expr]
func (b base) connectKey(blk blocks.Block, slot string, index syntax.Node) error {
	key := index.Child(2)
	if tok := index.Child(1); tok == nil || tok.Kind() != "." {
		return b.connectValue(blk, slot, key)
	}
	if key == nil {
		return b.s.errorf(errors.CodeUnsupportedShape, index, "index %q has no key", index.Text())
	}
	text, err := b.block("text")
	if err != nil {
		return err
	}
	if err := b.setField(text, "TEXT", key.Text()); err != nil {
		return err
	}
	return b.s.at(blk.ConnectValue(slot, text), key)
}
