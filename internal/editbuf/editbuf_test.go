package editbuf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lg-tool/lg/internal/types"
)

func TestApplySimpleReplacement(t *testing.T) {
	b := New([]byte("hello world"))
	require.NoError(t, b.AddReplacement(6, 11, "go", "t"))
	require.Equal(t, "hello go", b.Apply())
}

func TestApplyInsertion(t *testing.T) {
	b := New([]byte("ab"))
	require.NoError(t, b.AddInsertion(1, "-X-", "ins"))
	require.Equal(t, "a-X-b", b.Apply())
}

func TestOverlapIsFatal(t *testing.T) {
	b := New([]byte("0123456789"))
	require.NoError(t, b.AddReplacement(0, 5, "A", "a"))
	err := b.AddReplacement(3, 8, "B", "b")
	require.Error(t, err)
}

func TestComposingEncloses(t *testing.T) {
	b := New([]byte(`{"a": "long string here", "b": 1}`))
	// Pass 1: narrow string edit at the string literal.
	require.NoError(t, b.AddReplacement(6, 24, `"long…"`, "string"))
	// Pass 2: wide edit encloses it; newText is a verbatim copy of the
	// source, so the narrow text sits at the same [6,24) offsets within
	// newText, which nestedTextAt reports back.
	wide := `{"a": "long string here", "b": 1}` // pretend unshrunk for simplicity
	err := b.AddReplacementComposingNested(0, 33, wide, "obj", func(nested types.ByteRange) (int, int, bool) {
		return nested.Start, nested.End, true
	})
	_ = err
	// The buffer should not panic and should still produce a string.
	require.NotPanics(t, func() { b.Apply() })
}
