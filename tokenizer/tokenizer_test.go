package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimator_CountTokens(t *testing.T) {
	t.Parallel()

	e := NewEstimator()

	n, err := e.CountTokens("")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = e.CountTokens("hi")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "short text counts as at least one token")

	ascii, err := e.CountTokens(strings.Repeat("word ", 100))
	require.NoError(t, err)
	cjk, err2 := e.CountTokens(strings.Repeat("你好世界", 100))
	require.NoError(t, err2)
	assert.Greater(t, cjk, ascii/2, "CJK text is denser per character")
}

func TestEstimator_DecodeUnsupported(t *testing.T) {
	t.Parallel()

	e := NewEstimator()
	_, err := e.Decode([]int{1, 2, 3})
	assert.Error(t, err)
	assert.Equal(t, "estimator", e.Name())
}

func TestTiktoken_Name(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "tiktoken[cl100k_base]", NewTiktoken("").Name())
	assert.Equal(t, "tiktoken[o200k_base]", NewTiktoken("o200k_base").Name())
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	// Truncate must be a no-op without a tokenizer or budget.
	assert.Equal(t, "text", Truncate(nil, "text", 5))
	assert.Equal(t, "text", Truncate(NewEstimator(), "text", 0))

	// The estimator cannot decode, so Truncate degrades to the original.
	long := strings.Repeat("many words here ", 50)
	assert.Equal(t, long, Truncate(NewEstimator(), long, 3))
}
