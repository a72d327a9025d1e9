// Package tokenizer wraps a token-counting backend. The pipeline never
// assumes a specific tokenizer: it depends on the small Backend interface
// below, with a tiktoken-based implementation as the concrete default.
package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/lg-tool/lg/internal/errs"
)

// Backend is the external tokenizer collaborator: count_tokens/encode/
// decode over raw text.
type Backend interface {
	Name() string
	CountTokens(text string) (int, error)
	Encode(text string) ([]int, error)
	Decode(tokens []int) (string, error)
}

// tiktokenBackend wraps a *tiktoken.Tiktoken. The underlying BPE tables are
// read-only after construction, so one instance may be shared across the
// per-file worker pool in C16 without a per-worker clone.
type tiktokenBackend struct {
	name string
	enc  *tiktoken.Tiktoken
}

// NewTiktoken returns a Backend for the given encoding name (e.g.
// "cl100k_base", "o200k_base"). Encodings are looked up once and cached by
// the tiktoken-go package itself.
func NewTiktoken(encodingName string) (Backend, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %q: %w", encodingName, err)
	}
	return &tiktokenBackend{name: encodingName, enc: enc}, nil
}

// NewForModel resolves a model name to its encoding the way tiktoken-go
// does for OpenAI-style model families, falling back to cl100k_base.
func NewForModel(model string) (Backend, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return NewTiktoken("cl100k_base")
	}
	return &tiktokenBackend{name: model, enc: enc}, nil
}

func (t *tiktokenBackend) Name() string { return t.name }

func (t *tiktokenBackend) CountTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	return len(t.enc.Encode(text, nil, nil)), nil
}

func (t *tiktokenBackend) Encode(text string) ([]int, error) {
	return t.enc.Encode(text, nil, nil), nil
}

func (t *tiktokenBackend) Decode(tokens []int) (string, error) {
	return t.enc.Decode(tokens), nil
}

// Counter is a convenience wrapper that turns a tokenizer failure into the
// documented non-fatal behavior: the count is "unknown" (represented as
// -1) and the failure is returned to the caller as a TokenizerError.
type Counter struct {
	backend Backend
	mu      sync.Mutex // guards nothing in tiktoken-go today, but keeps the
	// seam explicit per spec.md §5's "thread-safe or per-worker clone" rule
}

func NewCounter(backend Backend) *Counter {
	return &Counter{backend: backend}
}

// Count returns -1 and a TokenizerError if counting fails; callers must
// omit -1 results from aggregates rather than treating them as zero.
func (c *Counter) Count(text string) (int, error) {
	n, err := c.backend.CountTokens(text)
	if err != nil {
		return -1, &errs.TokenizerError{Context: "count_tokens", Err: err}
	}
	return n, nil
}

// modelContextWindows is a small static table of known context-window
// sizes, resolved by the --model flag so a run need not pass --ctx-limit
// explicitly (see SPEC_FULL.md §3, "model-aware context window share").
var modelContextWindows = map[string]int{
	"gpt-4o":            128000,
	"gpt-4o-mini":        128000,
	"gpt-4-turbo":        128000,
	"gpt-4":              8192,
	"gpt-3.5-turbo":       16385,
	"claude-3-5-sonnet":  200000,
	"claude-3-opus":      200000,
	"claude-3-haiku":     200000,
	"o1":                 200000,
	"o1-mini":            128000,
	"gemini-1.5-pro":     2000000,
	"gemini-1.5-flash":   1000000,
}

// ContextWindowForModel returns the known window size for model, and
// whether it was found. The orchestrator consults it only when no explicit
// --ctx-limit is given, and falls back to a configured default when this
// returns false.
func ContextWindowForModel(model string) (int, bool) {
	n, ok := modelContextWindows[model]
	return n, ok
}
