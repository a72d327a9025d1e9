package literals

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lg-tool/lg/internal/editbuf"
	"github.com/lg-tool/lg/internal/types"
)

// runeCounter is a deterministic stand-in for a real tokenizer: one rune,
// one token. Exact budgets below are chosen against this cost function so
// the expected output can be computed by hand.
type runeCounter struct{}

func (runeCounter) Count(s string) int { return len([]rune(s)) }

func TestTruncateStringSafeBoundary(t *testing.T) {
	pattern := &types.LiteralPattern{
		Category:            types.CategoryString,
		PlaceholderPosition: types.PlaceholderInline,
		CommentName:         "literal string",
		InterpolationMarkers: []types.InterpolationMarker{{Open: "${", Close: "}"}},
	}
	content := "prefix ${user.name} suffix text that runs long"
	res := TruncateString(content, `"""`, `"""`, "", false, 20, runeCounter{}, pattern)

	require.True(t, res.Trimmed)
	require.Contains(t, res.NewText, "…")
	// The cut must never land strictly inside the interpolation span.
	idx := indexOf(res.NewText, "${user")
	if idx >= 0 {
		require.Contains(t, res.NewText, "${user.name}")
	}
}

func TestTruncateStringUnderBudgetIsNoop(t *testing.T) {
	pattern := &types.LiteralPattern{Category: types.CategoryString}
	res := TruncateString("short", `"`, `"`, "", false, 1000, runeCounter{}, pattern)
	require.False(t, res.Trimmed)
	require.Equal(t, `"short"`, res.NewText)
}

func TestSelectDFSDropsTailWhenOverBudget(t *testing.T) {
	pattern := &types.LiteralPattern{
		Category:            types.CategorySequence,
		Separator:           ",",
		PlaceholderPosition: types.PlaceholderEnd,
		PlaceholderTemplate: "# … (%d more, −%d tokens)",
		MinElements:         1,
	}
	elements := ParseElements(`"aa", "bb", "cc", "dd", "ee"`, pattern, NestedClassifier{})
	require.Len(t, elements, 5)

	sel := SelectDFS(elements, "", 10, pattern.MinElements, runeCounter{}, NestedClassifier{})
	require.True(t, sel.BudgetExhausted)
	require.NotEmpty(t, sel.Removed)
	require.Less(t, len(sel.Kept), len(elements))
}

func TestFormatEmitsEndPlaceholder(t *testing.T) {
	pattern := &types.LiteralPattern{
		Category:            types.CategorySequence,
		OpenDelim:           "[",
		CloseDelim:          "]",
		Separator:           ",",
		PlaceholderPosition: types.PlaceholderEnd,
		PlaceholderTemplate: "# … (%d more, −%d tokens)",
		MinElements:         1,
	}
	elements := ParseElements(`1, 2, 3, 4, 5, 6, 7, 8`, pattern, NestedClassifier{})
	sel := SelectDFS(elements, "", 5, pattern.MinElements, runeCounter{}, NestedClassifier{})

	pl := &types.ParsedLiteral{
		Opening: "[", Closing: "]", Content: elements, Pattern: pattern,
	}
	out := Format(pl, sel, runeCounter{})
	require.Contains(t, out, "more")
	require.True(t, len(sel.Removed) > 0)
}

func TestRunSkipsZeroSavings(t *testing.T) {
	source := []byte(`x = [1, 2, 3]`)
	pattern := &types.LiteralPattern{
		Category:    types.CategorySequence,
		OpenDelim:   "[",
		CloseDelim:  "]",
		Separator:   ",",
		MinElements: 1,
	}
	desc := LanguageLiteralDescriptor{Patterns: map[string]*types.LiteralPattern{"list": pattern}}
	node := Node{Range: types.ByteRange{Start: 4, End: 13}, ASTKind: "list", TopLevel: true}

	buf := editbuf.New(source)
	Run(source, []Node{node}, desc, NestedClassifier{}, 1000, runeCounter{}, buf)
	require.Empty(t, buf.Edits())
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
