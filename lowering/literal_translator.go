package lowering

import (
	"strings"

	"github.com/Figliar/extension-plus-API/blocks"
	"github.com/Figliar/extension-plus-API/syntax"
)

type numberTranslator struct{ base }

func newNumberTranslator(s *Session, node syntax.Node, prev blocks.Block) Translator {
	return &numberTranslator{newBase(s, node, prev)}
}

func (t *numberTranslator) Variant() Variant { return VariantLiteral }

func (t *numberTranslator) Lower() (Result, error) {
	blk, err := t.block("math_number")
	if err != nil {
		return Result{}, err
	}
	if err := t.setField(blk, "NUM", t.node.Text()); err != nil {
		return Result{}, err
	}
	return Produced(blk), nil
}

type stringTranslator struct{ base }

func newStringTranslator(s *Session, node syntax.Node, prev blocks.Block) Translator {
	return &stringTranslator{newBase(s, node, prev)}
}

func (t *stringTranslator) Variant() Variant { return VariantLiteral }

func (t *stringTranslator) Lower() (Result, error) {
	blk, err := t.block("text")
	if err != nil {
		return Result{}, err
	}
	if err := t.setField(blk, "TEXT", unquote(t.node.Text())); err != nil {
		return Result{}, err
	}
	return Produced(blk), nil
}

// unquote drops the delimiter on each side of a string literal
func unquote(text string) string {
	if len(text) < 2 {
		return text
	}
	return text[1 : len(text)-1]
}

type booleanTranslator struct{ base }

func newBooleanTranslator(s *Session, node syntax.Node, prev blocks.Block) Translator {
	return &booleanTranslator{newBase(s, node, prev)}
}

func (t *booleanTranslator) Variant() Variant { return VariantLiteral }

func (t *booleanTranslator) Lower() (Result, error) {
	blk, err := t.block("logic_boolean")
	if err != nil {
		return Result{}, err
	}
	if err := t.setField(blk, "BOOL", strings.ToUpper(t.node.Kind())); err != nil {
		return Result{}, err
	}
	return Produced(blk), nil
}

type nilTranslator struct{ base }

func newNilTranslator(s *Session, node syntax.Node, prev blocks.Block) Translator {
	return &nilTranslator{newBase(s, node, prev)}
}

func (t *nilTranslator) Variant() Variant { return VariantLiteral }

func (t *nilTranslator) Lower() (Result, error) {
	blk, err := t.block("logic_null")
	if err != nil {
		return Result{}, err
	}
	return Produced(blk), nil
}

// parenthesizedTranslator yields the block of the wrapped expression
type parenthesizedTranslator struct{ base }

func newParenthesizedTranslator(s *Session, node syntax.Node, prev blocks.Block) Translator {
	return &parenthesizedTranslator{newBase(s, node, prev)}
}

func (t *parenthesizedTranslator) Variant() Variant { return VariantParenthesized }

func (t *parenthesizedTranslator) Lower() (Result, error) {
	blk, err := t.s.Lower(t.node.Child(1))
	if err != nil {
		return Result{}, err
	}
	return Produced(blk), nil
}

type breakTranslator struct{ base }

func newBreakTranslator(s *Session, node syntax.Node, prev blocks.Block) Translator {
	return &breakTranslator{newBase(s, node, prev)}
}

func (t *breakTranslator) Variant() Variant { return VariantBreak }

func (t *breakTranslator) Lower() (Result, error) {
	blk, err := t.block("controls_flow_statements")
	if err != nil {
		return Result{}, err
	}
	if err := t.setField(blk, "FLOW", "BREAK"); err != nil {
		return Result{}, err
	}
	return Produced(blk), nil
}

type commentTranslator struct{ base }

func newCommentTranslator(s *Session, node syntax.Node, prev blocks.Block) Translator {
	return &commentTranslator{newBase(s, node, prev)}
}

func (t *commentTranslator) Variant() Variant { return VariantComment }

func (t *commentTranslator) Lower() (Result, error) {
	blk, err := t.block("comment")
	if err != nil {
		return Result{}, err
	}
	text := t.node.Text()
	if len(text) >= 2 {
		text = text[2:]
	}
	if err := t.setField(blk, "COMMENT_CONTEXT", text); err != nil {
		return Result{}, err
	}
	return Produced(blk), nil
}

// blankLineTranslator marks a gap; the next block starts a new stack
type blankLineTranslator struct{ base }

func newBlankLineTranslator(s *Session, node syntax.Node, prev blocks.Block) Translator {
	return &blankLineTranslator{newBase(s, node, prev)}
}

func (t *blankLineTranslator) Variant() Variant { return VariantBlankLine }

func (t *blankLineTranslator) Lower() (Result, error) { return KeepCursor, nil }

type shebangTranslator struct{ base }

func newShebangTranslator(s *Session, node syntax.Node, prev blocks.Block) Translator {
	return &shebangTranslator{newBase(s, node, prev)}
}

func (t *shebangTranslator) Variant() Variant { return VariantShebang }

func (t *shebangTranslator) Lower() (Result, error) {
	blk, err := t.block("shebang")
	if err != nil {
		return Result{}, err
	}
	if err := t.setField(blk, "shebang_context", t.node.Text()); err != nil {
		return Result{}, err
	}
	return Produced(blk), nil
}
