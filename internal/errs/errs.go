// Package errs implements the error taxonomy from the pipeline's error
// handling design: typed, wrapped errors that carry enough context to be
// reported back to a caller without a stack trace.
package errs

import "fmt"

// ConfigError indicates a schema mismatch, unknown field, or type
// coercion failure while loading lg-cfg/. Fatal for the run.
type ConfigError struct {
	Path string
	Msg  string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config error in %s: %s: %v", e.Path, e.Msg, e.Err)
	}
	return fmt.Sprintf("config error in %s: %s", e.Path, e.Msg)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// PathParseError indicates a malformed `${...}` address body.
type PathParseError struct {
	Raw string
	Pos int
	Msg string
}

func (e *PathParseError) Error() string {
	return fmt.Sprintf("cannot parse address %q at %d: %s", e.Raw, e.Pos, e.Msg)
}

// PathResolutionError indicates an address that parsed but could not be
// resolved against the current addressing context (traversal outside
// cfg_root, missing resource, etc).
type PathResolutionError struct {
	Raw string
	Msg string
}

func (e *PathResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve address %q: %s", e.Raw, e.Msg)
}

// ScopeNotFoundError indicates an `@origin` with no nested lg-cfg/.
type ScopeNotFoundError struct {
	Origin string
}

func (e *ScopeNotFoundError) Error() string {
	return fmt.Sprintf("no lg-cfg/ scope found for origin %q", e.Origin)
}

// TemplateProcessingError covers cycles, missing resources, and
// unsupported placeholders encountered while expanding a template.
type TemplateProcessingError struct {
	Resource string
	Msg      string
	Err      error
}

func (e *TemplateProcessingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("template error in %s: %s: %v", e.Resource, e.Msg, e.Err)
	}
	return fmt.Sprintf("template error in %s: %s", e.Resource, e.Msg)
}

func (e *TemplateProcessingError) Unwrap() error { return e.Err }

// FilterWarning is emitted (not raised) when an allow-mode FilterNode has
// an empty allow list, which denies every path under it.
type FilterWarning struct {
	Dir string
}

func (e *FilterWarning) Error() string {
	return fmt.Sprintf("filter node for %q is allow-mode with an empty allow list; it denies everything", e.Dir)
}

// AdapterError wraps a per-file parse/processing failure. Non-fatal: the
// caller falls back to raw text and records the error as a diagnostic.
type AdapterError struct {
	RelPath string
	Lang    string
	Err     error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("adapter(%s) failed on %s: %v", e.Lang, e.RelPath, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }

// CacheError wraps any cache I/O failure. Always swallowed by the caller;
// the run continues uncached.
type CacheError struct {
	Op  string
	Key string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s(%s) failed: %v", e.Op, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }

// TokenizerError indicates counting failed for a specific text. The count
// is treated as unknown and omitted from aggregates; non-fatal.
type TokenizerError struct {
	Context string
	Err     error
}

func (e *TokenizerError) Error() string {
	return fmt.Sprintf("tokenizer failed for %s: %v", e.Context, e.Err)
}

func (e *TokenizerError) Unwrap() error { return e.Err }

// EditOverlapError indicates a programming bug: two non-composing edits
// overlap in the edit buffer. Always fatal.
type EditOverlapError struct {
	A, B [2]int
}

func (e *EditOverlapError) Error() string {
	return fmt.Sprintf("overlapping non-composing edits: [%d,%d) and [%d,%d)", e.A[0], e.A[1], e.B[0], e.B[1])
}
