// Package langadapter implements the Language Adapter (C9): for one file
// it drives lex -> parse -> collect -> optimizers -> apply edits, in the
// fixed pipeline order public-API -> imports -> comments -> function-bodies
// -> literals (spec.md §5). Adapters are registered at compile time, keyed
// by file extension, per spec.md §9's "decorator-registered adapters"
// design note.
package langadapter

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/lg-tool/lg/internal/collector"
	"github.com/lg-tool/lg/internal/editbuf"
	"github.com/lg-tool/lg/internal/errs"
	"github.com/lg-tool/lg/internal/funcbody"
	"github.com/lg-tool/lg/internal/literals"
	"github.com/lg-tool/lg/internal/optimize"
	"github.com/lg-tool/lg/internal/tsdoc"
	"github.com/lg-tool/lg/internal/types"
)

// OptimizerConfig is one escalation step's full set of optimizer knobs
// (spec.md §4.9 "Budget controller" consumes a ladder of these).
type OptimizerConfig struct {
	PublicAPI     *optimize.PublicAPIConfig
	Imports       *optimize.ImportsConfig
	Comments      *optimize.CommentsConfig
	FuncBody      *funcbody.Config
	LiteralBudget int // per-node token budget fed to the literal optimizer; 0 disables it
}

// Adapter is one language's full descriptor set plus its parser/query
// setup, registered once at program init.
type Adapter struct {
	Name               string
	Extensions         []string
	SetupParser        func() (*tree_sitter.Parser, map[string]*tree_sitter.Query, error)
	CollectorDescriptor collector.LanguageCodeDescriptor
	LiteralDescriptor   literals.LanguageLiteralDescriptor
	NestedClassifier    literals.NestedClassifier
	LiteralNodes        func(doc *tsdoc.Document) []literals.Node
	ImportClassifier    optimize.ImportClassifier
	DocstringSentenceExtractor optimize.DocstringExtractor
}

var registry = map[string]*Adapter{}

// Register adds an adapter to the compile-time registry, keyed by each of
// its extensions (including the leading dot, e.g. ".go").
func Register(a *Adapter) {
	for _, ext := range a.Extensions {
		registry[ext] = a
	}
}

// ForExtension returns the adapter registered for ext, if any.
func ForExtension(ext string) (*Adapter, bool) {
	a, ok := registry[ext]
	return a, ok
}

// Registered returns the distinct set of registered adapters, one entry per
// language (not per extension), for diagnostics (internal/diag).
func Registered() []*Adapter {
	seen := map[string]bool{}
	var out []*Adapter
	for _, a := range registry {
		if seen[a.Name] {
			continue
		}
		seen[a.Name] = true
		out = append(out, a)
	}
	return out
}

// Result is one file's adapter output.
type Result struct {
	ProcessedText string
	Meta          map[string]any
}

// Run executes a.'s fixed pipeline against source using cfg, returning the
// processed text and per-file counters. A parse failure is non-fatal: it
// is wrapped in an AdapterError and the caller falls back to raw text.
func Run(a *Adapter, source []byte, relPath string, cfg OptimizerConfig, counter literals.TokenCounter) (Result, error) {
	parser, queries, err := a.SetupParser()
	if err != nil {
		return Result{}, &errs.AdapterError{RelPath: relPath, Lang: a.Name, Err: err}
	}
	defer parser.Close()

	tree := parser.Parse(source, nil)
	if tree == nil {
		return Result{}, &errs.AdapterError{RelPath: relPath, Lang: a.Name, Err: errNilTree}
	}
	defer tree.Close()

	doc := tsdoc.New(tree, source, queries)

	elems := collector.Collect(doc, a.CollectorDescriptor)

	buf := editbuf.New(source)
	meta := map[string]int{}

	if cfg.PublicAPI != nil {
		before := len(elems)
		optimize.RunPublicAPI(source, elems, *cfg.PublicAPI, buf)
		meta["removed.public_api_candidates"] = before
	}
	if cfg.Imports != nil {
		importsCfg := *cfg.Imports
		if importsCfg.Classify == nil {
			importsCfg.Classify = a.ImportClassifier
		}
		optimize.RunImports(source, elems, importsCfg, buf)
	}
	if cfg.Comments != nil {
		commentsCfg := *cfg.Comments
		if commentsCfg.ExtractFirstSentence == nil {
			commentsCfg.ExtractFirstSentence = a.DocstringSentenceExtractor
		}
		optimize.RunComments(source, elems, commentsCfg, buf)
	}
	if cfg.FuncBody != nil {
		funcbody.Run(source, elems, *cfg.FuncBody, buf)
		meta["literal_trimmed"] = 0
	}
	if cfg.LiteralBudget > 0 && a.LiteralNodes != nil {
		nodes := a.LiteralNodes(doc)
		literals.Run(source, nodes, a.LiteralDescriptor, a.NestedClassifier, cfg.LiteralBudget, counter, buf)
	}

	processed := buf.Apply()

	metaAny := make(map[string]any, len(meta))
	for k, v := range meta {
		metaAny[k] = v
	}

	return Result{ProcessedText: processed, Meta: metaAny}, nil
}

var errNilTree = adapterParseErr{}

type adapterParseErr struct{}

func (adapterParseErr) Error() string { return "parser produced no tree" }
