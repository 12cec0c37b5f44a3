package lowering

import (
	"github.com/Figliar/extension-plus-API/blocks"
	"github.com/Figliar/extension-plus-API/errors"
	"github.com/Figliar/extension-plus-API/syntax"
)

// UnknownOperation is written into OP when a lenient session meets an
// operator it cannot map
const UnknownOperation = "UNKNOWN"

var binaryOperations = map[string]string{
	"+":   "ADD",
	"-":   "MINUS",
	"*":   "MULTIPLY",
	"/":   "DIVIDE",
	"^":   "POWER",
	"==":  "EQ",
	"~=":  "NEQ",
	"<":   "LT",
	">":   "GT",
	"<=":  "LTE",
	">=":  "GTE",
	"and": "AND",
	"or":  "OR",
}

func operatorTemplate(op string) string {
	switch op {
	case "+", "-", "*", "/", "^":
		return "math_arithmetic"
	case "==", "~=", "<", ">", "<=", ">=":
		return "logic_compare"
	case "%":
		return "math_modulo"
	default:
		return "logic_operation"
	}
}

type binaryTranslator struct{ base }

func newBinaryTranslator(s *Session, node syntax.Node, prev blocks.Block) Translator {
	return &binaryTranslator{newBase(s, node, prev)}
}

func (t *binaryTranslator) Variant() Variant { return VariantBinary }

func (t *binaryTranslator) Lower() (Result, error) {
	if t.node.ChildCount() != 3 {
		return Result{}, t.s.errorf(errors.CodeUnsupportedShape, t.node, "binary expression with %d children", t.node.ChildCount())
	}
	op := t.node.Child(1).Kind()
	if op == ".." {
		return t.concatenation()
	}

	left, right := "A", "B"
	blk, err := t.block(operatorTemplate(op))
	if err != nil {
		return Result{}, err
	}
	if op == "%" {
		left, right = "DIVIDEND", "DIVISOR"
	} else {
		code, ok := binaryOperations[op]
		if !ok {
			err := t.s.errorf(errors.CodeUnknownOperator, t.node.Child(1), "unknown binary operator %q", op)
			if err := t.s.recoverable(err); err != nil {
				return Result{}, err
			}
			code = UnknownOperation
		}
		if err := t.setField(blk, "OP", code); err != nil {
			return Result{}, err
		}
	}

	if err := t.connectValue(blk, left, t.node.Child(0)); err != nil {
		return Result{}, err
	}
	if err := t.connectValue(blk, right, t.node.Child(2)); err != nil {
		return Result{}, err
	}
	return Produced(blk), nil
}

// concatenation joins every operand of a run of ".." into one text_join
func (t *binaryTranslator) concatenation() (Result, error) {
	operands := concatOperands(t.node, nil)
	blk, err := t.block("text_join")
	if err != nil {
		return Result{}, err
	}
	if err := t.s.at(blk.ApplyMutation(blocks.ItemsMutation{Count: len(operands)}), t.node); err != nil {
		return Result{}, err
	}
	for i, operand := range operands {
		if err := t.connectValue(blk, itemSlot(i), operand); err != nil {
			return Result{}, err
		}
	}
	return Produced(blk), nil
}

func concatOperands(n syntax.Node, out []syntax.Node) []syntax.Node {
	if !isConcat(n) {
		return append(out, n)
	}
	out = concatOperands(n.Child(0), out)
	return concatOperands(n.Child(2), out)
}

func isConcat(n syntax.Node) bool {
	return syntax.KindIs(n, "binary_expression") && n.ChildCount() == 3 && n.Child(1).Kind() == ".."
}

type unaryTranslator struct{ base }

func newUnaryTranslator(s *Session, node syntax.Node, prev blocks.Block) Translator {
	return &unaryTranslator{newBase(s, node, prev)}
}

func (t *unaryTranslator) Variant() Variant { return VariantUnary }

func (t *unaryTranslator) Lower() (Result, error) {
	op := syntax.FirstChild(t.node)
	if op == nil {
		return Result{}, t.s.errorf(errors.CodeUnsupportedShape, t.node, "unary expression without operator")
	}

	var template, slot, field string
	switch op.Text() {
	case "not":
		template, slot = "logic_negate", "BOOL"
	case "#":
		template, slot = "text_length", "VALUE"
	case "-":
		template, slot, field = "math_single", "NUM", "NEG"
	default:
		return Result{}, t.s.errorf(errors.CodeUnknownUnaryOperator, op, "unknown unary operator %q", op.Text())
	}

	blk, err := t.block(template)
	if err != nil {
		return Result{}, err
	}
	if field != "" {
		if err := t.setField(blk, "OP", field); err != nil {
			return Result{}, err
		}
	}
	if err := t.connectValue(blk, slot, syntax.LastChild(t.node)); err != nil {
		return Result{}, err
	}
	return Produced(blk), nil
}
