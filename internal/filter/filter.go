// Package filter implements the declarative allow/block path filter tree
// (C1): given a relative path, decide whether it is included, and whether
// a directory is worth descending into at all.
package filter

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/lg-tool/lg/internal/errs"
	"github.com/lg-tool/lg/internal/types"
)

// Engine evaluates one FilterNode tree. It performs no I/O.
type Engine struct {
	root     *types.FilterNode
	warnings []error
}

func New(root *types.FilterNode) *Engine {
	if root == nil {
		root = &types.FilterNode{Mode: types.FilterBlock}
	}
	return &Engine{root: root}
}

// Warnings returns FilterWarning instances accumulated while evaluating,
// e.g. for an allow-mode node with an empty allow list.
func (e *Engine) Warnings() []error { return e.warnings }

// deepestNode walks from the root as deep as explicit children exist for the
// path's directory components, returning the deepest matching node and the
// directory components still unconsumed (always empty for a node match,
// since children map is keyed by single path components one at a time).
func (e *Engine) deepestNode(relDir string) (*types.FilterNode, string) {
	node := e.root
	if relDir == "" || relDir == "." {
		return node, ""
	}
	parts := strings.Split(path.Clean(relDir), "/")
	for i, part := range parts {
		child, ok := node.Children[part]
		if !ok {
			return node, strings.Join(parts[i:], "/")
		}
		node = child
	}
	return node, ""
}

// decide runs the block-then-allow procedure from spec.md §4.1 step 3
// against node for the given path (the full path relative to the section
// root, as Includes passes it, whichever node is doing the matching).
func (e *Engine) decide(node *types.FilterNode, p string) bool {
	for _, pat := range node.Block {
		if matchGlob(pat, p) {
			return false
		}
	}
	switch node.Mode {
	case types.FilterAllow:
		if len(node.Allow) == 0 {
			e.warnings = append(e.warnings, &errs.FilterWarning{Dir: p})
			return false
		}
		for _, pat := range node.Allow {
			if matchGlob(pat, p) {
				return true
			}
		}
		return false
	default: // block mode: non-match of allow (if any) still allows
		if len(node.Allow) == 0 {
			return true
		}
		for _, pat := range node.Allow {
			if matchGlob(pat, p) {
				return true
			}
		}
		return true
	}
}

func matchGlob(pattern, p string) bool {
	ok, err := doublestar.Match(pattern, p)
	if err != nil {
		return false
	}
	return ok
}

// Includes decides whether relPath (POSIX, relative to the section root)
// is included.
func (e *Engine) Includes(relPath string) bool {
	relPath = path.Clean(relPath)
	dir := path.Dir(relPath)
	if dir == "." {
		dir = ""
	}
	node, _ := e.deepestNode(dir)
	return e.decide(node, relPath)
}

// MayDescend decides whether a directory is worth walking into: either the
// node it maps to is not allow-mode-with-nothing, or some descendant child
// node might allow something beneath it.
func (e *Engine) MayDescend(relDir string) bool {
	relDir = path.Clean(relDir)
	if relDir == "." {
		relDir = ""
	}
	node, remainder := e.deepestNode(relDir)
	if remainder != "" {
		// No explicit child node for the remaining components: whatever
		// decision `node` makes governs, since nothing overrides it below.
		return e.nodeMayAllowSomething(node)
	}
	if e.nodeMayAllowSomething(node) {
		return true
	}
	for _, child := range node.Children {
		if e.subtreeMayAllowSomething(child) {
			return true
		}
	}
	return false
}

func (e *Engine) nodeMayAllowSomething(node *types.FilterNode) bool {
	if node.Mode == types.FilterAllow && len(node.Allow) == 0 {
		return false
	}
	return true
}

func (e *Engine) subtreeMayAllowSomething(node *types.FilterNode) bool {
	if e.nodeMayAllowSomething(node) {
		return true
	}
	for _, child := range node.Children {
		if e.subtreeMayAllowSomething(child) {
			return true
		}
	}
	return false
}
