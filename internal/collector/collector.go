// Package collector implements the Element Collector (C5): it runs a
// language's configured queries over a tsdoc.Document and turns raw query
// captures into types.Element values the optimizers (C6-C8) consume.
package collector

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/lg-tool/lg/internal/tsdoc"
	"github.com/lg-tool/lg/internal/types"
)

// NameExtractor pulls the declared name out of a matched element node.
type NameExtractor func(node *tree_sitter.Node, doc *tsdoc.Document) string

// AdditionalCheck further disambiguates a query match beyond what the
// S-expression itself can express (e.g. "only top-level, not nested").
type AdditionalCheck func(node *tree_sitter.Node, doc *tsdoc.Document) bool

// VisibilityPredicate encodes a language's public/private convention.
type VisibilityPredicate func(node *tree_sitter.Node, doc *tsdoc.Document, name string) bool

// BodyResolver locates a function/class-like node's body node, when the
// element has one.
type BodyResolver func(node *tree_sitter.Node) *tree_sitter.Node

// BodyRangeComputer refines the raw body node span into the byte range an
// optimizer should treat as "the body" (e.g. excluding braces).
type BodyRangeComputer func(body *tree_sitter.Node, doc *tsdoc.Document) types.ByteRange

// DocstringExtractor finds the docstring range within a body, if any.
type DocstringExtractor func(body *tree_sitter.Node, doc *tsdoc.Document) *types.ByteRange

// ExtendElementRange lets a profile grow the matched node's range to
// include trailing syntax the grammar places outside it (e.g. a
// statement-terminating semicolon).
type ExtendElementRange func(node *tree_sitter.Node, kind types.ElementKind, doc *tsdoc.Document) types.ByteRange

// ElementProfile describes one structural shape a language's grammar
// exposes (spec.md §4.5).
type ElementProfile struct {
	Kind               types.ElementKind
	Query              string // query name, pre-registered on the Document
	Capture            string // capture name within that query identifying the element node
	AdditionalCheck    AdditionalCheck
	IsPublic           VisibilityPredicate
	HasBody            bool
	BodyResolver       BodyResolver
	BodyRangeComputer  BodyRangeComputer
	DocstringExtractor DocstringExtractor
	InheritPrevious    bool
}

// resolve fills any zero-valued field of p by copying it from prev, when
// p.InheritPrevious is set (spec.md §4.5 "inherit_previous").
func resolve(p ElementProfile, prev *ElementProfile) ElementProfile {
	if !p.InheritPrevious || prev == nil {
		return p
	}
	if p.Kind == "" {
		p.Kind = prev.Kind
	}
	if p.Query == "" {
		p.Query = prev.Query
	}
	if p.Capture == "" {
		p.Capture = prev.Capture
	}
	if p.AdditionalCheck == nil {
		p.AdditionalCheck = prev.AdditionalCheck
	}
	if p.IsPublic == nil {
		p.IsPublic = prev.IsPublic
	}
	if p.BodyResolver == nil {
		p.BodyResolver = prev.BodyResolver
	}
	if p.BodyRangeComputer == nil {
		p.BodyRangeComputer = prev.BodyRangeComputer
	}
	if p.DocstringExtractor == nil {
		p.DocstringExtractor = prev.DocstringExtractor
	}
	if !p.HasBody {
		p.HasBody = prev.HasBody
	}
	return p
}

// LanguageCodeDescriptor is one language's full collector configuration.
type LanguageCodeDescriptor struct {
	Profiles           []ElementProfile
	DecoratorTypes     map[string]struct{} // tree-sitter node types treated as decorators/annotations
	CommentTypes       map[string]struct{}
	NameExtractor      NameExtractor
	ExtendElementRange ExtendElementRange
}

// Collect runs every profile's query against doc and returns all matched
// elements plus standalone comments, in document order by start offset.
func Collect(doc *tsdoc.Document, desc LanguageCodeDescriptor) []types.Element {
	var out []types.Element

	var prev *ElementProfile
	for i := range desc.Profiles {
		p := resolve(desc.Profiles[i], prev)
		prevCopy := p
		prev = &prevCopy

		for _, m := range doc.Query(p.Query) {
			if m.CaptureName != p.Capture {
				continue
			}
			node := m.Node
			if p.AdditionalCheck != nil && !p.AdditionalCheck(node, doc) {
				continue
			}

			name := ""
			if desc.NameExtractor != nil {
				name = desc.NameExtractor(node, doc)
			}

			rng := rangeOf(node)
			if desc.ExtendElementRange != nil {
				rng = desc.ExtendElementRange(node, p.Kind, doc)
			}

			elem := types.Element{
				Kind:       p.Kind,
				Name:       name,
				Range:      rng,
				Visibility: true,
			}
			if p.IsPublic != nil {
				elem.Visibility = p.IsPublic(node, doc, name)
			}

			if p.HasBody && p.BodyResolver != nil {
				if body := p.BodyResolver(node); body != nil {
					elem.HasBody = true
					bodyRange := rangeOf(body)
					if p.BodyRangeComputer != nil {
						bodyRange = p.BodyRangeComputer(body, doc)
					}
					elem.BodyRange = &bodyRange

					if p.DocstringExtractor != nil {
						if ds := p.DocstringExtractor(body, doc); ds != nil {
							elem.DocstringRange = ds
						}
					}
				}
			}

			elem.DecoratorRanges = collectDecorators(node, desc.DecoratorTypes, doc)

			out = append(out, elem)
		}
	}

	for _, m := range doc.Query("comments") {
		if _, ok := desc.CommentTypes[m.CaptureName]; !ok {
			if _, ok2 := desc.CommentTypes[m.Node.Kind()]; !ok2 {
				continue
			}
		}
		out = append(out, types.Element{
			Kind:  types.ElementComment,
			Range: rangeOf(m.Node),
		})
	}

	sortByStart(out)
	return out
}

func rangeOf(n *tree_sitter.Node) types.ByteRange {
	return types.ByteRange{Start: int(n.StartByte()), End: int(n.EndByte())}
}

// collectDecorators walks the matched node's preceding siblings, gathering
// any contiguous run of decorator/annotation nodes immediately above it —
// the shape Python decorators, Java annotations, and Rust attributes all
// share.
func collectDecorators(node *tree_sitter.Node, decoratorTypes map[string]struct{}, doc *tsdoc.Document) []types.ByteRange {
	if len(decoratorTypes) == 0 {
		return nil
	}
	var ranges []types.ByteRange
	sib := node.PrevSibling()
	for sib != nil {
		if _, ok := decoratorTypes[sib.Kind()]; !ok {
			break
		}
		ranges = append([]types.ByteRange{rangeOf(sib)}, ranges...)
		sib = sib.PrevSibling()
	}
	return ranges
}

func sortByStart(elems []types.Element) {
	for i := 1; i < len(elems); i++ {
		for j := i; j > 0 && elems[j].Range.Start < elems[j-1].Range.Start; j-- {
			elems[j], elems[j-1] = elems[j-1], elems[j]
		}
	}
}
