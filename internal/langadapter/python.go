package langadapter

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/lg-tool/lg/internal/collector"
	"github.com/lg-tool/lg/internal/literals"
	"github.com/lg-tool/lg/internal/tsdoc"
	"github.com/lg-tool/lg/internal/types"
)

const pyElementQuery = `
(class_definition
    body: (block
        (function_definition name: (identifier) @method.name body: (block) @method.body) @method.node))
(function_definition name: (identifier) @function.name body: (block) @function.body) @function
(class_definition name: (identifier) @class.name body: (block) @class.body) @class
(import_statement) @import
(import_from_statement) @import
`

const pyCommentQuery = `
(comment) @comment
(expression_statement (string) @docstring)
`

func init() {
	Register(&Adapter{
		Name:       "python",
		Extensions: []string{".py", ".pyi"},
		SetupParser: func() (*tree_sitter.Parser, map[string]*tree_sitter.Query, error) {
			parser := tree_sitter.NewParser()
			lang := tree_sitter.NewLanguage(tree_sitter_python.Language())
			if err := parser.SetLanguage(lang); err != nil {
				return nil, nil, err
			}
			elementQuery, err := tree_sitter.NewQuery(lang, pyElementQuery)
			if err != nil {
				return nil, nil, err
			}
			commentQuery, err := tree_sitter.NewQuery(lang, pyCommentQuery)
			if err != nil {
				return nil, nil, err
			}
			return parser, map[string]*tree_sitter.Query{
				"elements": elementQuery,
				"comments": commentQuery,
			}, nil
		},
		CollectorDescriptor: collector.LanguageCodeDescriptor{
			Profiles: []collector.ElementProfile{
				{
					Kind:         types.ElementFunction,
					Query:        "elements",
					Capture:      "function",
					IsPublic:     pyIsPublic,
					HasBody:      true,
					BodyResolver: resolvePyBody,
				},
				{
					Kind:         types.ElementMethod,
					Query:        "elements",
					Capture:      "method.node",
					IsPublic:     pyIsPublic,
					HasBody:      true,
					BodyResolver: resolvePyBody,
				},
				{
					Kind:         types.ElementClass,
					Query:        "elements",
					Capture:      "class",
					IsPublic:     pyIsPublic,
				},
				{
					Kind:    types.ElementImport,
					Query:   "elements",
					Capture: "import",
				},
			},
			CommentTypes: map[string]struct{}{"comment": {}},
			NameExtractor: func(node *tree_sitter.Node, doc *tsdoc.Document) string {
				if n := node.ChildByFieldName("name"); n != nil {
					return doc.NodeText(n)
				}
				return ""
			},
		},
		LiteralDescriptor: literals.LanguageLiteralDescriptor{
			Patterns: map[string]*types.LiteralPattern{
				"string": {
					Category:            types.CategoryString,
					OpenDelim:           `"`,
					CloseDelim:          `"`,
					PlaceholderPosition: types.PlaceholderInline,
					CommentName:         "literal string",
					InterpolationMarkers: []types.InterpolationMarker{{Open: "{", Close: "}"}},
				},
				"list": {
					Category:            types.CategorySequence,
					OpenDelim:           "[",
					CloseDelim:          "]",
					Separator:           ",",
					PlaceholderPosition: types.PlaceholderEnd,
					PlaceholderTemplate: "# … (%d more, −%d tokens)",
					MinElements:         1,
					CommentName:         "literal list",
				},
				"dictionary": {
					Category:            types.CategoryMapping,
					OpenDelim:           "{",
					CloseDelim:          "}",
					Separator:           ",",
					KVSeparator:         ":",
					PlaceholderPosition: types.PlaceholderEnd,
					PlaceholderTemplate: "# … (%d more, −%d tokens)",
					MinElements:         1,
					CommentName:         "literal dict",
				},
			},
		},
		NestedClassifier: literals.NestedClassifier{},
		LiteralNodes: func(doc *tsdoc.Document) []literals.Node {
			root := doc.RootNode()
			var nodes []literals.Node
			walkPyLiterals(root, doc.Source(), &nodes)
			return nodes
		},
		ImportClassifier: func(importText string) bool {
			return len(importText) > 0 && importText[0] == '.'
		},
		DocstringSentenceExtractor: firstSentenceBySentencePunct,
	})
}

func pyIsPublic(node *tree_sitter.Node, doc *tsdoc.Document, name string) bool {
	return !(len(name) >= 2 && name[0] == '_' && name[1] == '_') && !(len(name) >= 1 && name[0] == '_')
}

func resolvePyBody(node *tree_sitter.Node) *tree_sitter.Node {
	return node.ChildByFieldName("body")
}

// walkPyLiterals finds top-level list/dict/string literals that are not
// nested inside another literal already captured (nesting is handled by
// the literal parser's own recursive descent once it owns a top node).
func walkPyLiterals(node *tree_sitter.Node, src []byte, out *[]literals.Node) {
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		child := node.Child(uint(i))
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "list", "dictionary", "set":
			*out = append(*out, literals.Node{
				Range:    types.ByteRange{Start: int(child.StartByte()), End: int(child.EndByte())},
				ASTKind:  normalizePyKind(child.Kind()),
				TopLevel: true,
			})
			continue
		case "string":
			*out = append(*out, literals.Node{
				Range:    types.ByteRange{Start: int(child.StartByte()), End: int(child.EndByte())},
				ASTKind:  "string",
				TopLevel: true,
			})
			continue
		}
		walkPyLiterals(child, src, out)
	}
}

func normalizePyKind(kind string) string {
	if kind == "set" {
		return "list"
	}
	return kind
}

func firstSentenceBySentencePunct(doc string) (int, bool) {
	for i := 0; i < len(doc); i++ {
		if doc[i] == '.' && i+1 < len(doc) && (doc[i+1] == ' ' || doc[i+1] == '\n') {
			return i + 1, true
		}
	}
	return 0, false
}
