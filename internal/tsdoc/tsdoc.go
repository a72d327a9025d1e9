// Package tsdoc wraps a parsed tree-sitter tree with the read-only query
// and range utilities the Element Collector (C5) and Literal Optimizer
// (C6) need (C3). A Document never mutates the tree or the source buffer
// it was built from.
package tsdoc

import (
	"sort"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Document wraps one parsed file.
type Document struct {
	tree    *tree_sitter.Tree
	source  []byte
	queries map[string]*tree_sitter.Query
	lineStarts []int // byte offset of the start of each line
}

// New builds a Document from a parsed tree, its source buffer, and the
// language's named queries (registered once per language by the adapter).
func New(tree *tree_sitter.Tree, source []byte, queries map[string]*tree_sitter.Query) *Document {
	return &Document{
		tree:       tree,
		source:     source,
		queries:    queries,
		lineStarts: computeLineStarts(source),
	}
}

func computeLineStarts(src []byte) []int {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// Close releases the underlying tree-sitter tree.
func (d *Document) Close() {
	if d.tree != nil {
		d.tree.Close()
	}
}

// RootNode returns the tree's root.
func (d *Document) RootNode() *tree_sitter.Node {
	n := d.tree.RootNode()
	return &n
}

// Source returns the original byte buffer (read-only).
func (d *Document) Source() []byte { return d.source }

// NodeText returns the verbatim source text spanned by node.
func (d *Document) NodeText(node *tree_sitter.Node) string {
	return string(d.source[node.StartByte():node.EndByte()])
}

// NodeRange returns the (start_byte, end_byte) span of node.
func (d *Document) NodeRange(node *tree_sitter.Node) (int, int) {
	return int(node.StartByte()), int(node.EndByte())
}

// ByteToCharPosition converts a byte offset into a UTF-8 rune index. It is
// the mutual inverse of CharToBytePosition for any offset that lands on a
// rune boundary, which every tree-sitter node boundary does.
func (d *Document) ByteToCharPosition(byteOffset int) int {
	if byteOffset > len(d.source) {
		byteOffset = len(d.source)
	}
	chars := 0
	i := 0
	for i < byteOffset {
		_, size := decodeRuneSize(d.source[i:])
		i += size
		chars++
	}
	return chars
}

// CharToBytePosition converts a rune index back to a byte offset.
func (d *Document) CharToBytePosition(charOffset int) int {
	chars := 0
	i := 0
	for i < len(d.source) && chars < charOffset {
		_, size := decodeRuneSize(d.source[i:])
		i += size
		chars++
	}
	return i
}

func decodeRuneSize(b []byte) (rune, int) {
	if len(b) == 0 {
		return 0, 0
	}
	c := b[0]
	switch {
	case c < 0x80:
		return rune(c), 1
	case c&0xE0 == 0xC0:
		return rune(c), 2
	case c&0xF0 == 0xE0:
		return rune(c), 3
	case c&0xF8 == 0xF0:
		return rune(c), 4
	default:
		return rune(c), 1
	}
}

// GetLineNumber returns the 1-based line number of a byte offset.
func (d *Document) GetLineNumber(byteOffset int) int {
	idx := sort.Search(len(d.lineStarts), func(i int) bool { return d.lineStarts[i] > byteOffset })
	return idx // lineStarts[0]=0 means offset 0 is on line 1, idx already 1-based here
}

// GetLineRange returns the 1-based [startLine, endLine] a node spans.
func (d *Document) GetLineRange(node *tree_sitter.Node) (int, int) {
	start, end := d.NodeRange(node)
	return d.GetLineNumber(start), d.GetLineNumber(end)
}

// QueryMatch is one capture within a named query's results.
type QueryMatch struct {
	Node        *tree_sitter.Node
	CaptureName string
}

// Query runs the named, pre-registered query (an S-expression compiled at
// adapter setup time) over the document and returns every capture in
// document order.
func (d *Document) Query(name string) []QueryMatch {
	q, ok := d.queries[name]
	if !ok || q == nil {
		return nil
	}
	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	root := d.RootNode()
	matches := cursor.Matches(q, *root, d.source)
	captureNames := q.CaptureNames()

	var out []QueryMatch
	for {
		m := matches.Next()
		if m == nil {
			break
		}
		for _, c := range m.Captures {
			node := c.Node
			out = append(out, QueryMatch{Node: &node, CaptureName: captureNames[c.Index]})
		}
	}
	return out
}
