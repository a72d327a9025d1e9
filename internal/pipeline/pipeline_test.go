package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lg-tool/lg/internal/budget"
	"github.com/lg-tool/lg/internal/cache"
	"github.com/lg-tool/lg/internal/config"
	"github.com/lg-tool/lg/internal/langadapter"
	"github.com/lg-tool/lg/internal/manifest"
	"github.com/lg-tool/lg/internal/optimize"
	"github.com/lg-tool/lg/internal/tokenizer"
	"github.com/lg-tool/lg/internal/types"
	"github.com/lg-tool/lg/internal/vcs"
)

// fakeBackend counts one token per rune, avoiding any dependency on a real
// tiktoken BPE table for tests.
type fakeBackend struct{}

func (fakeBackend) Name() string                           { return "fake" }
func (fakeBackend) CountTokens(text string) (int, error)   { return len([]rune(text)), nil }
func (fakeBackend) Encode(text string) ([]int, error)      { return nil, nil }
func (fakeBackend) Decode(tokens []int) (string, error)    { return "", nil }

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		abs := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
}

func testSection(id string) *types.Section {
	return &types.Section{
		Name:        id,
		CanonicalID: id,
		Extensions:  map[string]struct{}{".go": {}},
		Filters:     &types.FilterNode{Mode: types.FilterBlock},
		CodeFence:   true,
	}
}

func TestPipelineRunRendersProcessedFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.go": "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n",
		"util.go": "package main\n\nfunc helper() int {\n\treturn 1\n}\n",
	})

	sec := testSection("core")
	cfg := &config.Config{
		CfgRoot:         filepath.Join(root, "lg-cfg"),
		ScopeRoot:       root,
		SchemaVersion:   config.CurrentSchemaVersion,
		DefaultCtxLimit: 1000,
		Sections:        map[string]*types.Section{"core": sec},
	}

	counter := tokenizer.NewCounter(fakeBackend{})
	store := cache.NewStore(filepath.Join(t.TempDir(), "cache"))

	ladder := budget.Ladder{
		{Name: "as-is", Config: langadapter.OptimizerConfig{
			Comments: &optimize.CommentsConfig{Policy: optimize.CommentKeepDoc},
		}},
	}

	req := Request{
		RepoRoot:     root,
		Cfg:          cfg,
		SectionSpecs: []manifest.SectionSpec{{Section: sec, Multiplicity: 1}},
		Mode:         types.ModeAll,
		VCS:          vcs.NullProvider{},
		Model:        "fake-model",
		Ladder:       ladder,
		Adapters:     langadapter.ForExtension,
		Counter:      counter,
		Cache:        store,
		MaxParallel:  2,
		UseFence:     true,
	}

	result, err := Run(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Files, 2)
	require.Contains(t, result.RenderedText, "# —— FILE: main.go ——")
	require.Contains(t, result.RenderedText, "# —— FILE: util.go ——")
	require.Contains(t, result.RenderedText, "func main()")
	require.Equal(t, "all", result.Scope)
}

func TestPipelineRunFallsBackToRawTextWithoutAdapter(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"notes.txt": "just some notes\n"})

	sec := &types.Section{
		Name:        "notes",
		CanonicalID: "notes",
		Extensions:  map[string]struct{}{".txt": {}},
		Filters:     &types.FilterNode{Mode: types.FilterBlock},
	}
	cfg := &config.Config{
		CfgRoot:         filepath.Join(root, "lg-cfg"),
		ScopeRoot:       root,
		DefaultCtxLimit: 1000,
		Sections:        map[string]*types.Section{"notes": sec},
	}

	req := Request{
		RepoRoot:     root,
		Cfg:          cfg,
		SectionSpecs: []manifest.SectionSpec{{Section: sec, Multiplicity: 1}},
		Mode:         types.ModeAll,
		VCS:          vcs.NullProvider{},
		Adapters:     langadapter.ForExtension,
		Counter:      tokenizer.NewCounter(fakeBackend{}),
		MaxParallel:  1,
		UseFence:     false,
	}

	result, err := Run(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	require.Contains(t, result.RenderedText, "just some notes")
}

func TestLiteralCounterCountsTokens(t *testing.T) {
	lc := literalCounter{c: tokenizer.NewCounter(fakeBackend{})}
	require.Equal(t, 5, lc.Count("hello"))
}

func TestRefOrderAndSectionOf(t *testing.T) {
	refs := []types.FileRef{
		{RelPath: "a.go", Section: "core"},
		{RelPath: "b.go", Section: "extra"},
	}
	require.Equal(t, 0, refOrder(refs, "a.go"))
	require.Equal(t, 1, refOrder(refs, "b.go"))
	require.Equal(t, len(refs), refOrder(refs, "missing.go"))
	require.Equal(t, "extra", sectionOf(refs, "b.go"))
}
