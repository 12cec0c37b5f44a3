package lowering

import (
	"github.com/Figliar/extension-plus-API/blocks"
	"github.com/Figliar/extension-plus-API/errors"
	"github.com/Figliar/extension-plus-API/logging"
	"github.com/Figliar/extension-plus-API/syntax"
)

// Sequence lowers nodes in order and links the produced statements. With a
// parent the first block becomes the head of parent's statement slot and the
// rest chain below it. Without one the blocks land at the top level, where
// comments are dropped and blank lines or definitions start a new stack.
func (s *Session) Sequence(nodes []syntax.Node, parent blocks.Block, slot string) error {
	seq := sequence{s: s, parent: parent, slot: slot}
	if parent == nil {
		seq.last = s.lastTop
	}
	for _, node := range nodes {
		if err := seq.step(node); err != nil {
			return err
		}
	}
	if parent == nil {
		s.lastTop = seq.last
	}
	return nil
}

type sequence struct {
	s      *Session
	parent blocks.Block
	slot   string

	last     blocks.Block
	linked   bool
	prevNode syntax.Node
	skipped  bool
}

func (q *sequence) nested() bool { return q.parent != nil }

func (q *sequence) step(node syntax.Node) error {
	tr, err := q.s.registry.Resolve(q.s, node, q.last)
	if err != nil {
		return err
	}
	if !q.nested() && tr.Variant() == VariantComment {
		q.skipped = true
		q.prevNode = node
		return nil
	}

	res, err := tr.Lower()
	if err != nil {
		return err
	}
	if res.Keep || res.Block == nil {
		q.prevNode = node
		q.skipped = false
		return nil
	}

	if q.nested() {
		err = q.nest(node, res)
	} else {
		err = q.place(node, res)
	}
	if err != nil {
		return err
	}
	q.prevNode = node
	q.skipped = false
	return nil
}

// nest links res into the parent body
func (q *sequence) nest(node syntax.Node, res Result) error {
	blk := res.Block
	if !blk.HasPrevious() {
		q.detach(node, blk)
		return nil
	}
	if !q.linked {
		if err := q.parent.ConnectStatement(q.slot, blk); err != nil {
			return q.s.at(err, node)
		}
		q.linked = true
		q.last = res.Last()
		return nil
	}
	if q.last == nil || !q.last.HasNext() {
		q.detach(node, blk)
		return nil
	}
	if err := q.last.ConnectNext(blk); err != nil {
		return q.s.at(err, node)
	}
	q.last = res.Last()
	return nil
}

// place links res at the top level
func (q *sequence) place(node syntax.Node, res Result) error {
	blk := res.Block
	if blk.HasOutput() {
		q.s.warn(errors.CodeDetachedBlock, node, "the value of %s is not used; placed on its own", blk.Type())
	}
	if q.last != nil {
		if q.spaced(node, blk) {
			below(blk, q.last, q.s.opts.margin)
		} else if err := q.last.ConnectNext(blk); err != nil {
			return q.s.at(err, node)
		}
	}
	q.last = res.Last()
	return nil
}

// spaced reports whether blk starts a new stack instead of chaining
func (q *sequence) spaced(node syntax.Node, blk blocks.Block) bool {
	switch {
	case q.skipped:
		return true
	case q.prevNode != nil && q.prevNode.Kind() == "empty_line":
		return true
	case isDefinition(node) || isDefinition(q.prevNode):
		return true
	default:
		return !q.last.HasNext() || !blk.HasPrevious()
	}
}

// detach moves a block that cannot join the body below the parent's stack
func (q *sequence) detach(node syntax.Node, blk blocks.Block) {
	root := q.parent
	for root.Parent() != nil {
		root = root.Parent()
	}
	below(blk, root, q.s.opts.margin)
	q.s.warn(errors.CodeDetachedBlock, node, "%s cannot be linked into %s.%s; placed below it", blk.Type(), q.parent.Type(), q.slot)
	q.s.logger.Debug("block detached",
		logging.StringField("template", blk.Type()),
		logging.StringField("parent", q.parent.Type()))
}

func below(blk, anchor blocks.Block, margin int) {
	blk.MoveTo(anchor.Position().Add(0, anchor.Height()+margin))
}

func isDefinition(n syntax.Node) bool {
	return syntax.KindIs(n, "function_definition_statement", "local_function_definition_statement")
}

// gatherBody flattens the statements of a compound node: its own comment
// children and the children of its block child, in source order
func gatherBody(n syntax.Node) []syntax.Node {
	var out []syntax.Node
	for _, c := range syntax.Children(n) {
		switch c.Kind() {
		case "comment":
			out = append(out, c)
		case "block":
			out = append(out, syntax.Children(c)...)
		}
	}
	return out
}

// sequenceBody lowers the body of n into slot of blk
func (s *Session) sequenceBody(n syntax.Node, blk blocks.Block, slot string) error {
	return s.Sequence(gatherBody(n), blk, slot)
}
