package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslationError_Format(t *testing.T) {
	t.Run("single position", func(t *testing.T) {
		err := NewTranslationError(CodeUnknownNodeKind, "no translator").WithPosition(3, 7)
		assert.Equal(t, "[TRANSLATION][UNKNOWN_NODE_KIND] no translator line 3 col 7", err.Error())
	})

	t.Run("several positions are sorted and deduplicated", func(t *testing.T) {
		err := NewSyntaxError("unexpected symbol", 9, 1).
			WithPositions(Position{Line: 4, Column: 2}, Position{Line: 2, Column: 1}, Position{Line: 4, Column: 2})
		assert.Equal(t, "[SYNTAX][PARSE_ERROR] unexpected symbol at line 2 col 1 and line 4 col 2", err.Error())
	})

	t.Run("cause is appended", func(t *testing.T) {
		err := WrapError(fmt.Errorf("boom"), CodeInvalidTables, "cannot read tables")
		assert.Equal(t, "[SYSTEM][INVALID_TABLES] cannot read tables: boom", err.Error())
	})
}

func TestTranslationError_Chain(t *testing.T) {
	inner := NewTranslationError(CodeMissingSignature, "foo")
	outer := fmt.Errorf("lowering call: %w", inner)

	te, ok := AsTranslationError(outer)
	require.True(t, ok)
	assert.Same(t, inner, te)
	assert.True(t, HasCode(outer, CodeMissingSignature))
	assert.False(t, HasCode(outer, CodeNoReturnValue))
	assert.ErrorIs(t, outer, NewTranslationError(CodeMissingSignature, "other message"))
}

func TestPolicy(t *testing.T) {
	t.Run("codes without an entry abort", func(t *testing.T) {
		p := NewPolicy()
		err := NewTranslationError(CodeUnknownOperator, "//")
		assert.Equal(t, RecoveryActionAbort, p.Recover(err))
		assert.Same(t, err, Downgrade(p, err))
		assert.True(t, err.IsFatal())
	})

	t.Run("warn downgrades severity", func(t *testing.T) {
		p := NewPolicy().Set(CodeUnknownOperator, RecoveryActionWarn)
		err := NewTranslationError(CodeUnknownOperator, "//")
		assert.NoError(t, Downgrade(p, err))
		assert.False(t, err.IsFatal())
	})

	t.Run("foreign errors abort", func(t *testing.T) {
		p := NewPolicy().Set(CodeUnknownOperator, RecoveryActionWarn)
		assert.Equal(t, RecoveryActionAbort, p.Recover(fmt.Errorf("plain")))
	})
}
