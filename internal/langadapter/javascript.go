package langadapter

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/lg-tool/lg/internal/collector"
	"github.com/lg-tool/lg/internal/literals"
	"github.com/lg-tool/lg/internal/tsdoc"
	"github.com/lg-tool/lg/internal/types"
)

const jsElementQuery = `
(function_declaration name: (identifier) @function.name body: (statement_block) @function.body) @function
(variable_declarator
    name: (identifier) @function.name
    value: [(arrow_function) (function_expression)] @function.body) @function
(method_definition name: (property_identifier) @method.name body: (statement_block) @method.body) @method
(class_declaration name: (identifier) @class.name body: (class_body) @class.body) @class
(import_statement source: (string) @import.source) @import
`

const jsCommentQuery = `(comment) @comment`

func init() {
	registerJSFamily("javascript", []string{".js", ".jsx", ".mjs"}, func() *tree_sitter.Language {
		return tree_sitter.NewLanguage(tree_sitter_javascript.Language())
	})
	registerJSFamily("typescript", []string{".ts", ".tsx"}, func() *tree_sitter.Language {
		return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	})
}

func registerJSFamily(name string, exts []string, newLang func() *tree_sitter.Language) {
	Register(&Adapter{
		Name:       name,
		Extensions: exts,
		SetupParser: func() (*tree_sitter.Parser, map[string]*tree_sitter.Query, error) {
			parser := tree_sitter.NewParser()
			lang := newLang()
			if err := parser.SetLanguage(lang); err != nil {
				return nil, nil, err
			}
			elementQuery, err := tree_sitter.NewQuery(lang, jsElementQuery)
			if err != nil {
				return nil, nil, err
			}
			commentQuery, err := tree_sitter.NewQuery(lang, jsCommentQuery)
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
				{Kind: types.ElementFunction, Query: "elements", Capture: "function", IsPublic: alwaysPublic, HasBody: true, BodyResolver: resolveJSBody},
				{Kind: types.ElementMethod, Query: "elements", Capture: "method", IsPublic: jsMethodIsPublic, HasBody: true, BodyResolver: resolveJSBody},
				{Kind: types.ElementClass, Query: "elements", Capture: "class", IsPublic: alwaysPublic},
				{Kind: types.ElementImport, Query: "elements", Capture: "import"},
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
				},
				"template_string": {
					Category:            types.CategoryString,
					OpenDelim:           "`",
					CloseDelim:          "`",
					PlaceholderPosition: types.PlaceholderInline,
					CommentName:         "template literal",
					InterpolationMarkers: []types.InterpolationMarker{{Open: "${", Close: "}"}},
				},
				"array": {
					Category:            types.CategorySequence,
					OpenDelim:           "[",
					CloseDelim:          "]",
					Separator:           ",",
					PlaceholderPosition: types.PlaceholderEnd,
					PlaceholderTemplate: "// … (%d more, −%d tokens)",
					MinElements:         1,
					CommentName:         "literal array",
				},
				"object": {
					Category:            types.CategoryMapping,
					OpenDelim:           "{",
					CloseDelim:          "}",
					Separator:           ",",
					KVSeparator:         ":",
					PlaceholderPosition: types.PlaceholderEnd,
					PlaceholderTemplate: "// … (%d more, −%d tokens)",
					MinElements:         1,
					CommentName:         "literal object",
				},
			},
		},
		NestedClassifier: literals.NestedClassifier{},
		LiteralNodes: func(doc *tsdoc.Document) []literals.Node {
			var nodes []literals.Node
			walkJSLiterals(doc.RootNode(), &nodes)
			return nodes
		},
		ImportClassifier: func(importText string) bool {
			return len(importText) > 0 && importText[0] == '.'
		},
	})
}

func alwaysPublic(node *tree_sitter.Node, doc *tsdoc.Document, name string) bool { return true }

func jsMethodIsPublic(node *tree_sitter.Node, doc *tsdoc.Document, name string) bool {
	return !(len(name) > 0 && name[0] == '#') && name != "constructor"
}

func resolveJSBody(node *tree_sitter.Node) *tree_sitter.Node {
	if n := node.ChildByFieldName("body"); n != nil {
		return n
	}
	return nil
}

func walkJSLiterals(node *tree_sitter.Node, out *[]literals.Node) {
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "array", "object", "string", "template_string":
			*out = append(*out, literals.Node{
				Range:    types.ByteRange{Start: int(child.StartByte()), End: int(child.EndByte())},
				ASTKind:  child.Kind(),
				TopLevel: true,
			})
			continue
		}
		walkJSLiterals(child, out)
	}
}
