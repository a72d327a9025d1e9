// Package pipeline implements the Pipeline Orchestrator (C16): it wires
// every other component into one run — manifest, per-file adapter/budget
// escalation (cached), template/context assembly, rendering, and
// statistics — and returns a types.RunResult. File-level adapter work runs
// with bounded parallelism via golang.org/x/sync/errgroup; everything else
// is single-threaded and deterministic.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/lg-tool/lg/internal/addressing"
	"github.com/lg-tool/lg/internal/budget"
	"github.com/lg-tool/lg/internal/cache"
	"github.com/lg-tool/lg/internal/config"
	"github.com/lg-tool/lg/internal/debug"
	"github.com/lg-tool/lg/internal/langadapter"
	"github.com/lg-tool/lg/internal/manifest"
	"github.com/lg-tool/lg/internal/mdtemplate"
	"github.com/lg-tool/lg/internal/render"
	"github.com/lg-tool/lg/internal/stats"
	"github.com/lg-tool/lg/internal/tokenizer"
	"github.com/lg-tool/lg/internal/types"
	"github.com/lg-tool/lg/internal/vcs"
)

// Request is everything one `report`/`render` invocation needs.
type Request struct {
	RepoRoot      string
	Cfg           *config.Config
	SectionSpecs  []manifest.SectionSpec
	Mode          types.Mode
	VCS           vcs.Provider
	Model       string
	CtxLimit    int // 0 = resolve from Model, falling back to Cfg.DefaultCtxLimit
	Ladder      budget.Ladder
	Adapters    func(ext string) (*langadapter.Adapter, bool)
	Counter     *tokenizer.Counter
	Cache       *cache.Store
	MaxParallel int // 0 = len(GOMAXPROCS)-equivalent default of 4

	// TemplateName/RootTemplateText drive the final assembly step: when
	// RootTemplateText is empty, the run falls back to a bare concatenation
	// of every processed file (spec.md's "no template configured" case).
	TemplateName     string
	RootTemplateText string
	UseFence         bool
}

// Run executes one end-to-end pipeline pass.
func Run(ctx context.Context, req Request) (types.RunResult, error) {
	var diag types.Diagnostics

	refs, warnings, err := manifest.Build(ctx, manifest.Request{
		RepoRoot:  req.RepoRoot,
		Sections:  req.SectionSpecs,
		Mode:      req.Mode,
		VCS:       req.VCS,
		Gitignore: req.Cfg.Gitignore,
	})
	if err != nil {
		return types.RunResult{}, fmt.Errorf("build manifest: %w", err)
	}
	for _, w := range warnings {
		diag.Warn("%v", w)
	}

	ctxLimit := req.CtxLimit
	if ctxLimit == 0 {
		if n, ok := tokenizer.ContextWindowForModel(req.Model); ok {
			ctxLimit = n
		} else {
			ctxLimit = req.Cfg.DefaultCtxLimit
		}
	}

	blobs, err := processFiles(ctx, req, refs, &diag)
	if err != nil {
		return types.RunResult{}, err
	}

	sort.SliceStable(blobs, func(i, j int) bool {
		bi, bj := blobs[i], blobs[j]
		return refOrder(refs, bi.RelPath) < refOrder(refs, bj.RelPath)
	})

	groups := render.GroupBlobs(blobs)
	rendered := render.Render(render.Plan{UseFence: req.UseFence, Groups: groups})
	sectionTexts := renderPerSection(blobs, refs, req.Cfg, req.UseFence)

	finalText := rendered.Text
	sectionsUsed := sectionNames(req.SectionSpecs)
	if req.RootTemplateText != "" {
		engine := &mdtemplate.Engine{
			Loader:  newSectionLoader(req.Cfg, sectionTexts),
			Locator: addressing.OSScopeLocator{},
		}
		rootCtx := addressing.Context{
			RepoRoot:   req.RepoRoot,
			ScopeDir:   req.Cfg.ScopeRoot,
			CfgRoot:    req.Cfg.CfgRoot,
			CurrentDir: "",
		}
		expanded, _, err := engine.Expand(req.RootTemplateText, rootCtx)
		if err != nil {
			return types.RunResult{}, fmt.Errorf("expand template %q: %w", req.TemplateName, err)
		}
		finalText = expanded
	}

	fileInputs := make([]stats.FileInput, 0, len(blobs))
	for _, b := range blobs {
		fileInputs = append(fileInputs, stats.FileInput{
			RelPath:       b.RelPath,
			Section:       sectionOf(refs, b.RelPath),
			RawText:       b.RawText,
			ProcessedText: b.ProcessedText,
			Multiplicity:  b.Multiplicity,
		})
	}
	fileStats := stats.ComputeFileStats(fileInputs, req.Counter)

	ctxStats, err := stats.ComputeContextStats(req.TemplateName, sectionsUsed, finalText, rendered.Text, ctxLimit, req.Counter)
	if err != nil {
		diag.Warn("context token count failed: %v", err)
	}

	total := 0
	for _, fs := range fileStats {
		if fs.TokensProcessed > 0 {
			total += fs.TokensProcessed
		}
	}

	return types.RunResult{
		FormatVersion: "1",
		Scope:         string(req.Mode),
		Model:         req.Model,
		CtxLimit:      ctxLimit,
		Total:         total,
		Files:         fileStats,
		Context:       ctxStats,
		RenderedText:  finalText,
		Diagnostics:   diag,
	}, nil
}

// processFiles runs the adapter+budget ladder for every manifest entry,
// bounded to req.MaxParallel concurrent files. A per-file failure degrades
// to raw text plus a diagnostic rather than aborting the run (spec.md §7).
func processFiles(ctx context.Context, req Request, refs []types.FileRef, diag *types.Diagnostics) ([]types.ProcessedBlob, error) {
	limit := req.MaxParallel
	if limit <= 0 {
		limit = 4
	}

	blobs := make([]types.ProcessedBlob, len(refs))
	warnCh := make(chan string, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			blob, warn := processOne(req, ref)
			blobs[i] = blob
			if warn != "" {
				warnCh <- warn
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(warnCh)
	for w := range warnCh {
		diag.Warn("%s", w)
	}
	return blobs, nil
}

func processOne(req Request, ref types.FileRef) (types.ProcessedBlob, string) {
	source, err := os.ReadFile(ref.AbsPath)
	if err != nil {
		return types.ProcessedBlob{RelPath: ref.RelPath, Multiplicity: ref.Multiplicity}, fmt.Sprintf("read %s: %v", ref.RelPath, err)
	}

	ext := filepath.Ext(ref.AbsPath)
	adapter, ok := req.Adapters(ext)
	if !ok || req.Ladder == nil {
		return types.ProcessedBlob{
			RelPath: ref.RelPath, SizeBytes: len(source), RawText: string(source),
			ProcessedText: string(source), Language: ref.LangHint, Multiplicity: ref.Multiplicity,
		}, ""
	}

	info, statErr := os.Stat(ref.AbsPath)
	var fp cache.Fingerprint
	var key string
	if statErr == nil {
		fp = cache.Fingerprint{
			Version: "1", Kind: cache.KindProcessed,
			File:    cache.FileFingerprint{AbsPath: ref.AbsPath, MtimeNs: info.ModTime().UnixNano(), Size: info.Size()},
			Adapter: adapter.Name,
		}
		if k, err := fp.Key(); err == nil {
			key = k
		}
	}

	if req.Cache != nil && key != "" {
		if raw, ok := req.Cache.Get(cache.KindProcessed, key); ok {
			var cached langadapter.Result
			if json.Unmarshal(raw, &cached) == nil {
				return types.ProcessedBlob{
					RelPath: ref.RelPath, SizeBytes: len(source), RawText: string(source),
					ProcessedText: cached.ProcessedText, Meta: cached.Meta,
					Language: ref.LangHint, Multiplicity: ref.Multiplicity,
					CacheKeyProcessed: key,
				}, ""
			}
		}
	}

	outcome, err := budget.Run(adapter, source, ref.RelPath, req.Ladder, maxTokensFor(ref, req), literalCounter{req.Counter}, countOrZero(req.Counter))
	warn := ""
	processedText := string(source)
	var meta map[string]any
	if err != nil {
		warn = fmt.Sprintf("adapter failed on %s, using raw text: %v", ref.RelPath, err)
		debug.Logf("adapter:"+adapter.Name, "fallback to raw text for %s: %v", ref.RelPath, err)
	} else {
		processedText = outcome.Result.ProcessedText
		meta = outcome.Result.Meta
		if !outcome.BudgetReached {
			warn = fmt.Sprintf("%s still exceeds token budget after full escalation (%d tokens)", ref.RelPath, outcome.Tokens)
		}
		if req.Cache != nil && key != "" {
			_ = req.Cache.Put(cache.KindProcessed, key, outcome.Result)
		}
	}

	return types.ProcessedBlob{
		RelPath: ref.RelPath, SizeBytes: len(source), RawText: string(source),
		ProcessedText: processedText, Meta: meta, Language: ref.LangHint,
		Multiplicity: ref.Multiplicity, CacheKeyProcessed: key,
	}, warn
}

// maxTokensFor resolves the per-file hard cap from the section's
// language_options for ref's extension, falling back to 0 (no hard stop
// here, defer entirely to the ladder) when the section or language isn't
// configured.
func maxTokensFor(ref types.FileRef, req Request) int {
	sec, ok := req.Cfg.Sections[ref.Section]
	if !ok {
		return 0
	}
	lc, ok := sec.LanguageOptions[ref.LangHint]
	if !ok {
		return 0
	}
	return lc.MaxTokens
}

// literalCounter adapts tokenizer.Counter's (int, error) shape to the
// literals package's simpler Count(text) int, treating a tokenizer
// failure as zero-cost rather than threading the error through the
// literal optimizer's budgeting math.
type literalCounter struct{ c *tokenizer.Counter }

func (lc literalCounter) Count(text string) int {
	n, err := lc.c.Count(text)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func countOrZero(counter *tokenizer.Counter) func(string) int {
	return func(s string) int {
		n, err := counter.Count(s)
		if err != nil || n < 0 {
			return 0
		}
		return n
	}
}

func refOrder(refs []types.FileRef, relPath string) int {
	for i, r := range refs {
		if r.RelPath == relPath {
			return i
		}
	}
	return len(refs)
}

func sectionOf(refs []types.FileRef, relPath string) string {
	for _, r := range refs {
		if r.RelPath == relPath {
			return r.Section
		}
	}
	return ""
}

// renderPerSection renders each configured section's own files in
// isolation, keyed by canonical section id, for the template engine's
// section-include placeholders. This is a second, section-scoped rendering
// pass distinct from the whole-document language-grouped rendering above.
func renderPerSection(blobs []types.ProcessedBlob, refs []types.FileRef, cfg *config.Config, useFence bool) map[string]string {
	bySection := map[string][]types.ProcessedBlob{}
	for _, b := range blobs {
		sec := sectionOf(refs, b.RelPath)
		bySection[sec] = append(bySection[sec], b)
	}
	out := make(map[string]string, len(bySection))
	for sec, sblobs := range bySection {
		fence := useFence
		if s, ok := cfg.Sections[sec]; ok {
			fence = s.CodeFence
		}
		groups := render.GroupBlobs(sblobs)
		doc := render.Render(render.Plan{UseFence: fence, Groups: groups})
		out[sec] = doc.Text
	}
	return out
}

func sectionNames(specs []manifest.SectionSpec) []string {
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.Section.CanonicalID)
	}
	sort.Strings(names)
	return names
}
