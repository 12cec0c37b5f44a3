package lowering

import (
	"github.com/Figliar/extension-plus-API/blocks"
	"github.com/Figliar/extension-plus-API/errors"
	"github.com/Figliar/extension-plus-API/logging"
	"github.com/Figliar/extension-plus-API/syntax"
)

// Variant tags the translator family a node kind belongs to
type Variant int

const (
	VariantLiteral Variant = iota
	VariantReference
	VariantIndex
	VariantParenthesized
	VariantBinary
	VariantUnary
	VariantTable
	VariantAssignment
	VariantLocal
	VariantIf
	VariantForNumeric
	VariantForGeneric
	VariantLoop
	VariantDefinition
	VariantCall
	VariantReturn
	VariantBreak
	VariantComment
	VariantBlankLine
	VariantShebang
)

var variantNames = [...]string{
	VariantLiteral:       "literal",
	VariantReference:     "reference",
	VariantIndex:         "index",
	VariantParenthesized: "parenthesized",
	VariantBinary:        "binary",
	VariantUnary:         "unary",
	VariantTable:         "table",
	VariantAssignment:    "assignment",
	VariantLocal:         "local",
	VariantIf:            "if",
	VariantForNumeric:    "for_numeric",
	VariantForGeneric:    "for_generic",
	VariantLoop:          "loop",
	VariantDefinition:    "definition",
	VariantCall:          "call",
	VariantReturn:        "return",
	VariantBreak:         "break",
	VariantComment:       "comment",
	VariantBlankLine:     "blank_line",
	VariantShebang:       "shebang",
}

// String returns the variant name
func (v Variant) String() string {
	if v >= 0 && int(v) < len(variantNames) {
		return variantNames[v]
	}
	return "unknown"
}

// Translator lowers one syntax node into blocks
type Translator interface {
	Variant() Variant
	Lower() (Result, error)
}

// Result is what a translator hands back to the sequencer: either a block
// (with the tail of its chain when it produced several linked statements)
// or an instruction to keep the cursor where it was.
type Result struct {
	Block blocks.Block
	Tail  blocks.Block
	Keep  bool
}

// KeepCursor produces nothing and leaves the sequencer cursor unchanged
var KeepCursor = Result{Keep: true}

// Produced wraps a single block
func Produced(b blocks.Block) Result {
	return Result{Block: b, Tail: b}
}

// Chain wraps a linked run of statements from head to tail
func Chain(head, tail blocks.Block) Result {
	return Result{Block: head, Tail: tail}
}

// Last returns the block the cursor should move to
func (r Result) Last() blocks.Block {
	if r.Tail != nil {
		return r.Tail
	}
	return r.Block
}

// base carries what every translator needs
type base struct {
	s    *Session
	node syntax.Node
	prev blocks.Block
}

func newBase(s *Session, node syntax.Node, prev blocks.Block) base {
	return base{s: s, node: node, prev: prev}
}

// block creates a block and logs it at debug level
func (b base) block(template string) (blocks.Block, error) {
	blk, err := b.s.ws.NewBlock(template)
	if err != nil {
		return nil, b.s.at(err, b.node)
	}
	b.s.logger.Debug("block created",
		logging.StringField("template", template),
		logging.StringField("kind", b.node.Kind()),
		logging.IntField("line", b.node.Pos().Line))
	return blk, nil
}

// connectValue lowers child and wires it into slot
func (b base) connectValue(blk blocks.Block, slot string, child syntax.Node) error {
	if child == nil {
		return b.s.errorf(errors.CodeUnsupportedShape, b.node, "%s: nothing to lower into %s", b.node.Kind(), slot)
	}
	value, err := b.s.Lower(child)
	if err != nil {
		return err
	}
	return b.s.at(blk.ConnectValue(slot, value), child)
}

// setField writes a field and positions any failure at the node
func (b base) setField(blk blocks.Block, name, value string) error {
	return b.s.at(blk.SetField(name, value), b.node)
}
