// This file registers the lighter-weight adapters: languages where the
// listing pipeline supports structural collection (functions/methods/
// types/imports) and the four non-literal optimizer passes, but not a
// bespoke literal-optimizer descriptor. Each is grounded directly on its
// setupXxx() query in the teacher's parser_language_setup.go; they get a
// shared, simpler registration helper instead of one bespoke file apiece
// because none of them needs nested-literal DFS selection or an
// import-locality classifier beyond "starts with a relative path marker" —
// see DESIGN.md for the scope rationale.
package langadapter

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/lg-tool/lg/internal/collector"
	"github.com/lg-tool/lg/internal/tsdoc"
	"github.com/lg-tool/lg/internal/types"
)

type structuralSpec struct {
	name        string
	extensions  []string
	newLang     func() *tree_sitter.Language
	query       string
	profiles    []collector.ElementProfile
}

func init() {
	for _, spec := range []structuralSpec{
		rustSpec(), javaSpec(), cppSpec(), csharpSpec(), zigSpec(), phpSpec(),
	} {
		registerStructural(spec)
	}
}

func registerStructural(spec structuralSpec) {
	Register(&Adapter{
		Name:       spec.name,
		Extensions: spec.extensions,
		SetupParser: func() (*tree_sitter.Parser, map[string]*tree_sitter.Query, error) {
			parser := tree_sitter.NewParser()
			lang := spec.newLang()
			if err := parser.SetLanguage(lang); err != nil {
				return nil, nil, err
			}
			elementQuery, err := tree_sitter.NewQuery(lang, spec.query)
			if err != nil {
				return nil, nil, err
			}
			return parser, map[string]*tree_sitter.Query{"elements": elementQuery}, nil
		},
		CollectorDescriptor: collector.LanguageCodeDescriptor{
			Profiles: spec.profiles,
			NameExtractor: func(node *tree_sitter.Node, doc *tsdoc.Document) string {
				if n := node.ChildByFieldName("name"); n != nil {
					return doc.NodeText(n)
				}
				return ""
			},
		},
		ImportClassifier: func(importText string) bool {
			return len(importText) > 0 && (importText[0] == '.' || importText[0] == '"')
		},
	})
}

func rustSpec() structuralSpec {
	return structuralSpec{
		name:       "rust",
		extensions: []string{".rs"},
		newLang:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_rust.Language()) },
		query: `
(function_item name: (identifier) @function.name body: (block) @function.body) @function
(struct_item name: (type_identifier) @struct.name) @struct
(enum_item name: (type_identifier) @enum.name) @enum
(trait_item name: (type_identifier) @interface.name) @interface
(use_declaration) @import
`,
		profiles: []collector.ElementProfile{
			{Kind: types.ElementFunction, Query: "elements", Capture: "function", IsPublic: alwaysPublic, HasBody: true, BodyResolver: resolveJSBody},
			{Kind: types.ElementStruct, Query: "elements", Capture: "struct", IsPublic: alwaysPublic},
			{Kind: types.ElementType, Query: "elements", Capture: "enum", IsPublic: alwaysPublic},
			{Kind: types.ElementInterface, Query: "elements", Capture: "interface", IsPublic: alwaysPublic},
			{Kind: types.ElementImport, Query: "elements", Capture: "import"},
		},
	}
}

func javaSpec() structuralSpec {
	return structuralSpec{
		name:       "java",
		extensions: []string{".java"},
		newLang:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_java.Language()) },
		query: `
(method_declaration name: (identifier) @method.name body: (block) @method.body) @method
(class_declaration name: (identifier) @class.name body: (class_body) @class.body) @class
(interface_declaration name: (identifier) @interface.name) @interface
(enum_declaration name: (identifier) @enum.name) @enum
(import_declaration) @import
`,
		profiles: []collector.ElementProfile{
			{Kind: types.ElementMethod, Query: "elements", Capture: "method", IsPublic: alwaysPublic, HasBody: true, BodyResolver: resolveJSBody},
			{Kind: types.ElementClass, Query: "elements", Capture: "class", IsPublic: alwaysPublic},
			{Kind: types.ElementInterface, Query: "elements", Capture: "interface", IsPublic: alwaysPublic},
			{Kind: types.ElementType, Query: "elements", Capture: "enum", IsPublic: alwaysPublic},
			{Kind: types.ElementImport, Query: "elements", Capture: "import"},
		},
	}
}

func cppSpec() structuralSpec {
	return structuralSpec{
		name:       "cpp",
		extensions: []string{".cpp", ".cc", ".cxx", ".c", ".h", ".hpp"},
		newLang:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_cpp.Language()) },
		query: `
(function_definition declarator: (function_declarator declarator: (identifier) @function.name) body: (compound_statement) @function.body) @function
(class_specifier name: (type_identifier) @class.name) @class
(struct_specifier name: (type_identifier) @struct.name) @struct
(preproc_include) @import
`,
		profiles: []collector.ElementProfile{
			{Kind: types.ElementFunction, Query: "elements", Capture: "function", IsPublic: alwaysPublic, HasBody: true, BodyResolver: resolveJSBody},
			{Kind: types.ElementClass, Query: "elements", Capture: "class", IsPublic: alwaysPublic},
			{Kind: types.ElementStruct, Query: "elements", Capture: "struct", IsPublic: alwaysPublic},
			{Kind: types.ElementImport, Query: "elements", Capture: "import"},
		},
	}
}

func csharpSpec() structuralSpec {
	return structuralSpec{
		name:       "csharp",
		extensions: []string{".cs"},
		newLang:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_csharp.Language()) },
		query: `
(method_declaration name: (identifier) @method.name body: (block) @method.body) @method
(class_declaration name: (identifier) @class.name) @class
(interface_declaration name: (identifier) @interface.name) @interface
(struct_declaration name: (identifier) @struct.name) @struct
(using_directive (qualified_name) @import.name) @import
(using_directive (identifier) @import.name) @import
`,
		profiles: []collector.ElementProfile{
			{Kind: types.ElementMethod, Query: "elements", Capture: "method", IsPublic: alwaysPublic, HasBody: true, BodyResolver: resolveJSBody},
			{Kind: types.ElementClass, Query: "elements", Capture: "class", IsPublic: alwaysPublic},
			{Kind: types.ElementInterface, Query: "elements", Capture: "interface", IsPublic: alwaysPublic},
			{Kind: types.ElementStruct, Query: "elements", Capture: "struct", IsPublic: alwaysPublic},
			{Kind: types.ElementImport, Query: "elements", Capture: "import"},
		},
	}
}

func zigSpec() structuralSpec {
	return structuralSpec{
		name:       "zig",
		extensions: []string{".zig"},
		newLang:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_zig.Language()) },
		query: `
(function_declaration (identifier) @function.name) @function
(variable_declaration (identifier) @struct.name (struct_declaration) @struct.body)
`,
		profiles: []collector.ElementProfile{
			{Kind: types.ElementFunction, Query: "elements", Capture: "function", IsPublic: alwaysPublic},
			{Kind: types.ElementStruct, Query: "elements", Capture: "struct.name", IsPublic: alwaysPublic},
		},
	}
}

func phpSpec() structuralSpec {
	return structuralSpec{
		name:       "php",
		extensions: []string{".php", ".phtml"},
		newLang:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_php.LanguagePHP()) },
		query: `
(class_declaration name: (name) @class.name) @class
(interface_declaration name: (name) @interface.name) @interface
(trait_declaration name: (name) @trait.name) @trait
(function_definition name: (name) @function.name body: (compound_statement) @function.body) @function
(method_declaration name: (name) @method.name body: (compound_statement) @method.body) @method
`,
		profiles: []collector.ElementProfile{
			{Kind: types.ElementClass, Query: "elements", Capture: "class", IsPublic: alwaysPublic},
			{Kind: types.ElementInterface, Query: "elements", Capture: "interface", IsPublic: alwaysPublic},
			{Kind: types.ElementFunction, Query: "elements", Capture: "function", IsPublic: alwaysPublic, HasBody: true, BodyResolver: resolveJSBody},
			{Kind: types.ElementMethod, Query: "elements", Capture: "method", IsPublic: phpMethodIsPublic, HasBody: true, BodyResolver: resolveJSBody},
		},
	}
}

func phpMethodIsPublic(node *tree_sitter.Node, doc *tsdoc.Document, name string) bool {
	return name != "__construct"
}
