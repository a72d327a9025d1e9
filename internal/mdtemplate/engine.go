package mdtemplate

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/lg-tool/lg/internal/addressing"
	"github.com/lg-tool/lg/internal/errs"
	"github.com/lg-tool/lg/internal/types"
)

// ResourceLoader fetches the raw text for a resolved resource, and a
// section's already-rendered content blob when the placeholder is a
// section include.
type ResourceLoader interface {
	LoadMarkdownOrTemplate(resourcePath string) (string, error)
	LoadSection(canonicalID string) (string, error)
	Glob(cfgRoot, pattern string) ([]string, error)
}

const maxDepth = 64

// Engine expands placeholders in a root template into its final text.
type Engine struct {
	Loader  ResourceLoader
	Locator addressing.ScopeLocator
}

// visitKey is the cycle-detection key: (cfg_root, resource_rel), per
// spec.md §9's "Cycle detection" design note.
type visitKey struct{ cfgRoot, resourceRel string }

// Expand recursively substitutes every placeholder in text, starting from
// root's addressing context.
func (e *Engine) Expand(text string, root addressing.Context) (string, map[string]any, error) {
	meta := map[string]any{}
	visited := map[visitKey]bool{}
	out, err := e.expand(text, root, visited, 0, meta)
	return out, meta, err
}

func (e *Engine) expand(text string, ctx addressing.Context, visited map[visitKey]bool, depth int, meta map[string]any) (string, error) {
	if depth > maxDepth {
		return "", &errs.TemplateProcessingError{Resource: ctx.CfgRoot, Msg: "max expansion depth exceeded"}
	}

	placeholders := Scan(text)
	if len(placeholders) == 0 {
		return text, nil
	}

	var b strings.Builder
	cursor := 0
	for _, ph := range placeholders {
		b.WriteString(text[cursor:ph.Range.Start])

		parentLevel := parentHeadingLevel(text, ph.Range.Start)
		expanded, err := e.expandOne(ph, ctx, visited, depth, meta, parentLevel)
		if err != nil {
			return "", err
		}
		b.WriteString(expanded)
		cursor = ph.Range.End
	}
	b.WriteString(text[cursor:])
	return b.String(), nil
}

func (e *Engine) expandOne(ph Placeholder, ctx addressing.Context, visited map[visitKey]bool, depth int, meta map[string]any, parentLevel int) (string, error) {
	kind, body := classify(ph.Name)

	pp, err := addressing.Parse(body, kind)
	if err != nil {
		return "", err
	}

	if kind != types.ResourceSection {
		resolved, err := addressing.Resolve(pp, ctx, e.Locator)
		if err != nil {
			return "", err
		}
		key := visitKey{cfgRoot: resolved.CfgRoot, resourceRel: resolved.ResourceRel}
		if visited[key] {
			return "", &errs.TemplateProcessingError{Resource: resolved.ResourceRel, Msg: "cycle detected"}
		}
		visited[key] = true
		defer delete(visited, key)

		if kind == types.ResourceMarkdown || kind == types.ResourceMarkdownExternal {
			return e.expandMarkdown(pp, resolved, ctx, visited, depth, meta, parentLevel)
		}

		raw, err := e.Loader.LoadMarkdownOrTemplate(resolved.ResourcePath)
		if err != nil {
			return "", &errs.TemplateProcessingError{Resource: resolved.ResourceRel, Msg: "missing resource", Err: err}
		}

		childCtx := ctx
		childCtx.CfgRoot = resolved.CfgRoot
		childCtx.ScopeDir = resolved.ScopeDir
		childCtx.CurrentDir = filepath.ToSlash(filepath.Dir(resolved.ResourceRel))
		if childCtx.CurrentDir == "." {
			childCtx.CurrentDir = ""
		}
		return e.expand(raw, childCtx, visited, depth+1, meta)
	}

	resolved, err := addressing.Resolve(pp, ctx, e.Locator)
	if err != nil {
		return "", err
	}

	content, err := e.Loader.LoadSection(resolved.CanonicalID)
	if err != nil {
		// Section fallback (spec.md §4.11): a bare section name first
		// resolves against the current template's directory
		// (current_dir/name); when that canonical id isn't a real
		// section, retry as a global (root-relative) lookup before
		// giving up.
		global := pp
		global.Path = strings.TrimPrefix(pp.Path, ctx.CurrentDir+"/")
		globalCtx := addressing.Context{RepoRoot: ctx.RepoRoot, ScopeDir: ctx.ScopeDir, CfgRoot: ctx.CfgRoot, CurrentDir: ""}
		if resolved2, err2 := addressing.Resolve(global, globalCtx, e.Locator); err2 == nil {
			if content2, err3 := e.Loader.LoadSection(resolved2.CanonicalID); err3 == nil {
				return content2, nil
			}
		}
		return "", &errs.TemplateProcessingError{Resource: resolved.CanonicalID, Msg: "missing section", Err: err}
	}
	return content, nil
}

func (e *Engine) expandMarkdown(pp types.ParsedPath, resolved types.ResolvedPath, ctx addressing.Context, visited map[visitKey]bool, depth int, meta map[string]any, parentLevel int) (string, error) {
	if strings.ContainsAny(pp.Path, "*?[") {
		if pp.Anchor != "" {
			return "", &errs.TemplateProcessingError{Resource: pp.Path, Msg: "glob combined with anchor is not supported"}
		}
		matches, err := e.Loader.Glob(resolved.CfgRoot, pp.Path)
		if err != nil {
			return "", &errs.TemplateProcessingError{Resource: pp.Path, Msg: "glob failed", Err: err}
		}
		sort.Strings(matches)
		var parts []string
		for _, m := range matches {
			raw, err := e.Loader.LoadMarkdownOrTemplate(m)
			if err != nil {
				return "", &errs.TemplateProcessingError{Resource: m, Msg: "missing resource", Err: err}
			}
			normalized := e.normalizeOne(raw, pp, len(matches) == 1, meta, parentLevel)
			parts = append(parts, normalized)
		}
		return strings.Join(parts, "\n\n"), nil
	}

	raw, err := e.Loader.LoadMarkdownOrTemplate(resolved.ResourcePath)
	if err != nil {
		return "", &errs.TemplateProcessingError{Resource: resolved.ResourceRel, Msg: "missing resource", Err: err}
	}

	if pp.Anchor != "" {
		sub, ok := ExtractAnchor(raw, pp.Anchor)
		if !ok {
			return "", &errs.TemplateProcessingError{Resource: resolved.ResourceRel, Msg: "anchor not found: " + pp.Anchor}
		}
		raw = sub
	}

	return e.normalizeOne(raw, pp, true, meta, parentLevel), nil
}

// normalizeOne applies heading normalization using either explicit
// parameters or the surrounding template's detected defaults. Per
// spec.md §4.11, max_heading_level defaults to parent_level+1, where
// parent_level is the level of the nearest heading preceding the
// placeholder in the template doing the including.
func (e *Engine) normalizeOne(raw string, pp types.ParsedPath, singleFile bool, meta map[string]any, parentLevel int) string {
	maxLevel := parentLevel + 1
	stripH1 := true
	if v, ok := pp.Parameters["level"]; ok {
		if n, ok := v.(int); ok {
			maxLevel = n
		}
	}
	if v, ok := pp.Parameters["strip_h1"]; ok {
		if b, ok := v.(bool); ok {
			stripH1 = b
		}
	}
	out, m := NormalizeHeadings(raw, maxLevel, stripH1, singleFile)
	for k, v := range m {
		meta[k] = v
	}
	return out
}

// parentHeadingLevel returns the level of the nearest ATX heading
// preceding byte offset pos in text, skipping headings found inside
// fenced code blocks. Returns 0 when no heading precedes pos, so the
// top-level default (parent_level+1) comes out to 1.
func parentHeadingLevel(text string, pos int) int {
	if pos > len(text) {
		pos = len(text)
	}
	fences := fencedRanges(text)

	level := 0
	offset := 0
	for _, line := range splitKeepEnds(text[:pos]) {
		lineStart := offset
		offset += len(line)
		if inAnyRange(lineStart, fences) {
			continue
		}
		if m := atxHeadingRe.FindStringSubmatch(strings.TrimRight(line, "\n")); m != nil {
			level = len(m[1])
		}
	}
	return level
}

// classify implements spec.md §4.11's prefix dispatch: tpl/ctx/md or
// (default) section include.
func classify(name string) (types.ResourceKind, string) {
	switch {
	case strings.HasPrefix(name, "tpl["):
		return types.ResourceTemplate, strings.TrimSuffix(strings.TrimPrefix(name, "tpl["), "]")
	case strings.HasPrefix(name, "tpl:"):
		return types.ResourceTemplate, strings.TrimPrefix(name, "tpl:")
	case strings.HasPrefix(name, "tpl@"):
		return types.ResourceTemplate, strings.TrimPrefix(name, "tpl")
	case strings.HasPrefix(name, "ctx["):
		return types.ResourceContext, strings.TrimSuffix(strings.TrimPrefix(name, "ctx["), "]")
	case strings.HasPrefix(name, "ctx:"):
		return types.ResourceContext, strings.TrimPrefix(name, "ctx:")
	case strings.HasPrefix(name, "ctx@"):
		return types.ResourceContext, strings.TrimPrefix(name, "ctx")
	case strings.HasPrefix(name, "md["):
		return types.ResourceMarkdown, strings.TrimSuffix(strings.TrimPrefix(name, "md["), "]")
	case strings.HasPrefix(name, "md:"):
		return types.ResourceMarkdown, strings.TrimPrefix(name, "md:")
	case strings.HasPrefix(name, "md@"):
		return types.ResourceMarkdown, strings.TrimPrefix(name, "md")
	default:
		return types.ResourceSection, name
	}
}
