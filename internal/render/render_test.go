package render

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lg-tool/lg/internal/types"
)

func TestRenderFencedGroup(t *testing.T) {
	plan := Plan{
		UseFence: true,
		Groups: []Group{
			{Lang: "go", Entries: []types.ProcessedBlob{
				{RelPath: "a.go", ProcessedText: "package a\n"},
				{RelPath: "b.go", ProcessedText: "package b\n"},
			}},
		},
	}
	doc := Render(plan)
	require.Contains(t, doc.Text, "```go")
	require.Contains(t, doc.Text, "# —— FILE: a.go ——")
	require.Contains(t, doc.Text, "# —— FILE: b.go ——")
	require.True(t, doc.Text[len(doc.Text)-1] == '\n')
}

func TestRenderMixedNoFence(t *testing.T) {
	plan := Plan{
		Groups: []Group{
			{Lang: "go", Entries: []types.ProcessedBlob{{RelPath: "a.go", ProcessedText: "x\n"}}},
		},
	}
	doc := Render(plan)
	require.Contains(t, doc.Text, "# —— FILE: a.go ——")
}

func TestGroupBlobsPreservesOrderWithinGroup(t *testing.T) {
	blobs := []types.ProcessedBlob{
		{RelPath: "b.py", Language: "py", ProcessedText: "b"},
		{RelPath: "a.py", Language: "py", ProcessedText: "a"},
	}
	groups := GroupBlobs(blobs)
	require.Len(t, groups, 1)
	require.Equal(t, "b.py", groups[0].Entries[0].RelPath)
}
