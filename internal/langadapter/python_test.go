package langadapter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lg-tool/lg/internal/optimize"
)

type zeroCounter struct{}

func (zeroCounter) Count(string) int { return 0 }

func TestPythonAdapterRegistered(t *testing.T) {
	a, ok := ForExtension(".py")
	require.True(t, ok)
	require.Equal(t, "python", a.Name)

	a2, ok := ForExtension(".pyi")
	require.True(t, ok)
	require.Same(t, a, a2)
}

func TestPythonAdapterRun(t *testing.T) {
	a, ok := ForExtension(".py")
	require.True(t, ok)

	src := []byte(`"""Module docstring. Second sentence stays hidden."""
import os
import .relative_thing


def greet(name):
    """Say hello. Extra detail trimmed."""
    message = "hello " + name
    return message


class Greeter:
    def shout(self):
        return "HI"

    def _internal(self):
        return None
`)

	res, err := Run(a, src, "greet.py", OptimizerConfig{
		Comments: &optimize.CommentsConfig{Policy: optimize.CommentKeepDoc},
	}, zeroCounter{})
	require.NoError(t, err)
	require.Contains(t, res.ProcessedText, "def greet(name):")
	require.Contains(t, res.ProcessedText, "class Greeter:")
}

func TestPyIsPublicExcludesUnderscorePrefixed(t *testing.T) {
	require.True(t, pyIsPublic(nil, nil, "visible"))
	require.False(t, pyIsPublic(nil, nil, "_hidden"))
	require.False(t, pyIsPublic(nil, nil, "__dunder__"))
}

func TestNormalizePyKindFoldsSetIntoList(t *testing.T) {
	require.Equal(t, "list", normalizePyKind("set"))
	require.Equal(t, "dictionary", normalizePyKind("dictionary"))
}

func TestFirstSentenceBySentencePunct(t *testing.T) {
	idx, ok := firstSentenceBySentencePunct("Say hello. Extra detail.")
	require.True(t, ok)
	require.Equal(t, "Say hello.", "Say hello. Extra detail."[:idx])

	_, ok = firstSentenceBySentencePunct("no terminal punctuation here")
	require.False(t, ok)
}
