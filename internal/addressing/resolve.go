package addressing

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/lg-tool/lg/internal/errs"
	"github.com/lg-tool/lg/internal/types"
)

// ScopeLocator finds the nested lg-cfg/ for an origin directory name,
// searching under the current scope's parent (spec.md §4.10 step 1). It is
// a collaborator rather than a hard filesystem dependency so tests can
// fake a tree.
type ScopeLocator interface {
	// FindScope returns the absolute path to a directory's lg-cfg/, or
	// ok=false if none exists.
	FindScope(dir string) (cfgRoot string, ok bool)
}

// OSScopeLocator looks for a literal lg-cfg subdirectory on disk.
type OSScopeLocator struct{}

func (OSScopeLocator) FindScope(dir string) (string, bool) {
	candidate := filepath.Join(dir, "lg-cfg")
	info, err := os.Stat(candidate)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return candidate, true
}

// Context is the addressing stack's current frame plus enough of the repo
// layout to resolve an origin.
type Context struct {
	RepoRoot   string
	ScopeDir   string // the scope directory that owns CfgRoot (its parent)
	CfgRoot    string
	CurrentDir string // directory-within-cfg the top stack frame resolves relative paths against
}

// Resolve implements spec.md §4.10's resolver algorithm.
func Resolve(pp types.ParsedPath, ctx Context, locator ScopeLocator) (types.ResolvedPath, error) {
	scopeDir, cfgRoot, err := resolveScope(pp, ctx, locator)
	if err != nil {
		return types.ResolvedPath{}, err
	}

	base := ""
	if !pp.IsAbsolute {
		base = ctx.CurrentDir
	}

	normalized, err := normalizeWithinRoot(base, pp.Path)
	if err != nil {
		return types.ResolvedPath{}, &errs.PathResolutionError{Raw: pp.Path, Msg: err.Error()}
	}

	normalized = appendExtension(normalized, pp.Kind)

	resourcePath := filepath.Join(cfgRoot, filepath.FromSlash(normalized))

	res := types.ResolvedPath{
		ScopeDir:     scopeDir,
		ScopeRel:     relOrEmpty(ctx.RepoRoot, scopeDir),
		CfgRoot:      cfgRoot,
		ResourcePath: resourcePath,
		ResourceRel:  normalized,
	}
	if pp.Kind == types.ResourceSection {
		res.CanonicalID = normalized
	}
	return res, nil
}

func resolveScope(pp types.ParsedPath, ctx Context, locator ScopeLocator) (scopeDir, cfgRoot string, err error) {
	switch {
	case !pp.OriginExplicit || pp.Origin == "" || pp.Origin == "self":
		return ctx.ScopeDir, ctx.CfgRoot, nil
	case pp.Origin == "/":
		root, ok := locator.FindScope(ctx.RepoRoot)
		if !ok {
			return "", "", &errs.ScopeNotFoundError{Origin: pp.Origin}
		}
		return ctx.RepoRoot, root, nil
	default:
		candidate := filepath.Join(ctx.ScopeDir, filepath.FromSlash(pp.Origin))
		root, ok := locator.FindScope(candidate)
		if !ok {
			return "", "", &errs.ScopeNotFoundError{Origin: pp.Origin}
		}
		return candidate, root, nil
	}
}

// normalizeWithinRoot joins base and p (POSIX-style), resolving `..`
// components while tracking depth, and rejects any traversal that would
// escape the cfg_root (spec.md §4.10 step 3).
func normalizeWithinRoot(base, p string) (string, error) {
	joined := p
	if base != "" {
		joined = path.Join(base, p)
	}
	joined = path.Clean(joined)
	joined = strings.TrimPrefix(joined, "/")

	segs := strings.Split(joined, "/")
	var stack []string
	for _, s := range segs {
		switch s {
		case "", ".":
			continue
		case "..":
			if len(stack) == 0 {
				return "", errTraversal
			}
			stack = stack[:len(stack)-1]
		default:
			stack = append(stack, s)
		}
	}
	return strings.Join(stack, "/"), nil
}

var errTraversal = traversalErr{}

type traversalErr struct{}

func (traversalErr) Error() string { return "path traversal escapes cfg_root" }

func appendExtension(p string, kind types.ResourceKind) string {
	var ext string
	switch kind {
	case types.ResourceTemplate:
		ext = ".tpl.md"
	case types.ResourceContext:
		ext = ".ctx.md"
	case types.ResourceMarkdown, types.ResourceMarkdownExternal:
		ext = ".md"
	default:
		return p // sections have no extension
	}
	if strings.HasSuffix(p, ext) {
		return p
	}
	return p + ext
}

func relOrEmpty(base, target string) string {
	r, err := filepath.Rel(base, target)
	if err != nil {
		return target
	}
	return filepath.ToSlash(r)
}
