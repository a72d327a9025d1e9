// Package stats implements the Statistics component (C14): per-file and
// per-context token accounting.
package stats

import "github.com/lg-tool/lg/internal/types"

// TokenCounter is the narrow tokenizer dependency stats needs.
type TokenCounter interface {
	Count(text string) (int, error)
}

// FileInput is one file's raw and processed text, plus the multiplicity
// ComputeFileStats multiplies the resulting token counts by.
type FileInput struct {
	RelPath      string
	Section      string
	RawText      string
	ProcessedText string
	Multiplicity int
}

// ComputeFileStats tokenizes raw and processed text for every input.
// Tokenizer failures are non-fatal: the affected count is -1 and omitted
// from any aggregate the caller computes afterward (spec.md §7).
func ComputeFileStats(inputs []FileInput, counter TokenCounter) []types.FileStats {
	out := make([]types.FileStats, 0, len(inputs))
	for _, in := range inputs {
		raw, err := counter.Count(in.RawText)
		if err != nil {
			raw = -1
		}
		processed, err := counter.Count(in.ProcessedText)
		if err != nil {
			processed = -1
		}
		out = append(out, types.FileStats{
			RelPath:         in.RelPath,
			Section:         in.Section,
			TokensRaw:       multiplyOrSkip(raw, in.Multiplicity),
			TokensProcessed: multiplyOrSkip(processed, in.Multiplicity),
			Multiplicity:    in.Multiplicity,
		})
	}
	return out
}

func multiplyOrSkip(n, mult int) int {
	if n < 0 {
		return n
	}
	if mult < 1 {
		mult = 1
	}
	return n * mult
}

// ComputeContextStats computes the final document's token accounting:
// renderedTokens for the full document, templateOnlyTokens for a
// "sections-only" variant built by the caller (same blobs, no template
// glue), and the derived overhead percentage and ctx-limit share.
func ComputeContextStats(templateName string, sectionsUsed []string, renderedText, sectionsOnlyText string, ctxLimit int, counter TokenCounter) (types.ContextStats, error) {
	rendered, err := counter.Count(renderedText)
	if err != nil {
		return types.ContextStats{}, err
	}
	sectionsOnly, err := counter.Count(sectionsOnlyText)
	if err != nil {
		return types.ContextStats{}, err
	}

	cs := types.ContextStats{
		TemplateName:        templateName,
		SectionsUsed:        sectionsUsed,
		FinalRenderedTokens: rendered,
		TemplateOnlyTokens:  rendered - sectionsOnly,
	}
	if sectionsOnly > 0 {
		cs.TemplateOverheadPct = float64(cs.TemplateOnlyTokens) / float64(sectionsOnly) * 100
	}
	if ctxLimit > 0 {
		cs.FinalCtxShare = float64(rendered) / float64(ctxLimit)
	}
	return cs, nil
}
