package optimize

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lg-tool/lg/internal/editbuf"
	"github.com/lg-tool/lg/internal/types"
)

func TestRunPublicAPIGroupsAdjacentRemovals(t *testing.T) {
	src := []byte("def public():\n    pass\n\ndef _private():\n    pass\n\nclass _Hidden:\n    pass\n")
	elems := []types.Element{
		{Kind: types.ElementFunction, Name: "public", Visibility: true, Range: types.ByteRange{Start: 0, End: 22}},
		{Kind: types.ElementFunction, Name: "_private", Visibility: false, Range: types.ByteRange{Start: 24, End: 48}},
		{Kind: types.ElementFunction, Name: "_Hidden", Visibility: false, Range: types.ByteRange{Start: 50, End: 73}},
	}
	cfg := PublicAPIConfig{
		Kinds:            map[types.ElementKind]struct{}{types.ElementFunction: {}},
		GroupWithinLines: 2,
		Placeholder:      "# ... %d %s omitted (%d lines)",
	}
	buf := editbuf.New(src)
	RunPublicAPI(src, elems, cfg, buf)

	out := buf.Apply()
	require.Contains(t, out, "def public")
	require.NotContains(t, out, "_private")
	require.NotContains(t, out, "_Hidden")
	require.Contains(t, out, "omitted")
}

func TestRunImportsSummarizesLocalRuns(t *testing.T) {
	src := []byte("import os\nimport ./a\nimport ./b\nimport ./c\nimport sys\n")
	elems := []types.Element{
		{Kind: types.ElementImport, Range: types.ByteRange{Start: 0, End: 10}},
		{Kind: types.ElementImport, Range: types.ByteRange{Start: 10, End: 21}},
		{Kind: types.ElementImport, Range: types.ByteRange{Start: 21, End: 32}},
		{Kind: types.ElementImport, Range: types.ByteRange{Start: 32, End: 43}},
		{Kind: types.ElementImport, Range: types.ByteRange{Start: 43, End: 54}},
	}
	cfg := ImportsConfig{
		StripLocal: true,
		Classify: func(text string) bool {
			return len(text) >= 9 && text[7:9] == "./"
		},
		Placeholder: "# ... %d imports omitted (%d lines)",
	}
	buf := editbuf.New(src)
	RunImports(src, elems, cfg, buf)

	out := buf.Apply()
	require.Contains(t, out, "import os")
	require.Contains(t, out, "import sys")
	require.Contains(t, out, "imports omitted")
	require.NotContains(t, out, "./a")
}
