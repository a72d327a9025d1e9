package langadapter

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/lg-tool/lg/internal/collector"
	"github.com/lg-tool/lg/internal/literals"
	"github.com/lg-tool/lg/internal/tsdoc"
	"github.com/lg-tool/lg/internal/types"
)

const goFuncQuery = `
(function_declaration name: (identifier) @function.name body: (block) @function.body) @function
(method_declaration
    receiver: (parameter_list)
    name: (field_identifier) @method.name
    body: (block) @method.body) @method
(type_spec name: (type_identifier) @type.name type: (struct_type)) @struct
(type_spec name: (type_identifier) @type.name type: (interface_type)) @interface
(import_spec path: (interpreted_string_literal) @import.path) @import
`

const goCommentQuery = `(comment) @comment`

func init() {
	Register(&Adapter{
		Name:       "go",
		Extensions: []string{".go"},
		SetupParser: func() (*tree_sitter.Parser, map[string]*tree_sitter.Query, error) {
			parser := tree_sitter.NewParser()
			lang := tree_sitter.NewLanguage(tree_sitter_go.Language())
			if err := parser.SetLanguage(lang); err != nil {
				return nil, nil, err
			}
			elementQuery, err := tree_sitter.NewQuery(lang, goFuncQuery)
			if err != nil {
				return nil, nil, err
			}
			commentQuery, err := tree_sitter.NewQuery(lang, goCommentQuery)
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
					Kind:    types.ElementFunction,
					Query:   "elements",
					Capture: "function",
					IsPublic: func(node *tree_sitter.Node, doc *tsdoc.Document, name string) bool {
						return isExported(name)
					},
					HasBody:      true,
					BodyResolver: resolveGoBody,
				},
				{
					Kind:    types.ElementMethod,
					Query:   "elements",
					Capture: "method",
					IsPublic: func(node *tree_sitter.Node, doc *tsdoc.Document, name string) bool {
						return isExported(name)
					},
					HasBody:      true,
					BodyResolver: resolveGoBody,
				},
				{
					Kind:    types.ElementStruct,
					Query:   "elements",
					Capture: "struct",
					IsPublic: func(node *tree_sitter.Node, doc *tsdoc.Document, name string) bool {
						return isExported(name)
					},
				},
				{
					Kind:    types.ElementInterface,
					Query:   "elements",
					Capture: "interface",
					IsPublic: func(node *tree_sitter.Node, doc *tsdoc.Document, name string) bool {
						return isExported(name)
					},
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
				"interpreted_string_literal": {
					Category:   types.CategoryString,
					OpenDelim:  `"`,
					CloseDelim: `"`,
					PlaceholderPosition: types.PlaceholderInline,
					CommentName: "literal string",
				},
				"composite_literal": {
					Category:    types.CategoryBlockInit,
					OpenDelim:   "{",
					CloseDelim:  "}",
					Separator:   ",",
					KVSeparator: ":",
					PlaceholderPosition: types.PlaceholderEnd,
					PlaceholderTemplate: "// … (%d more, −%d tokens)",
					MinElements: 1,
					CommentName: "literal object",
				},
			},
		},
		NestedClassifier: literals.NestedClassifier{},
		LiteralNodes: func(doc *tsdoc.Document) []literals.Node {
			var nodes []literals.Node
			for _, m := range doc.Query("elements") {
				if m.CaptureName != "import.path" {
					continue
				}
				nodes = append(nodes, literals.Node{
					Range:    types.ByteRange{Start: int(m.Node.StartByte()), End: int(m.Node.EndByte())},
					ASTKind:  "interpreted_string_literal",
					TopLevel: true,
				})
			}
			return nodes
		},
		ImportClassifier: func(importText string) bool {
			return len(importText) > 0 && importText[0] == '.'
		},
	})
}

func isExported(name string) bool {
	if name == "" {
		return false
	}
	c := name[0]
	return c >= 'A' && c <= 'Z'
}

func resolveGoBody(node *tree_sitter.Node) *tree_sitter.Node {
	return node.ChildByFieldName("body")
}
