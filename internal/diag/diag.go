// Package diag implements the environment-diagnostics report carried over
// from the Python original's `lg_vnext/cli.py` `diag` command (SPEC_FULL.md
// §3): resolved cfg root, discovered nested scopes, tokenizer backend
// availability, cache directory occupancy, and the set of language adapters
// (tree-sitter grammars) linked into this build.
package diag

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/lg-tool/lg/internal/cache"
	"github.com/lg-tool/lg/internal/config"
	"github.com/lg-tool/lg/internal/langadapter"
	"github.com/lg-tool/lg/internal/tokenizer"
)

// Adapter summarizes one registered language adapter.
type Adapter struct {
	Language   string   `json:"language"`
	Extensions []string `json:"extensions"`
}

// Report is the full diagnostics snapshot.
type Report struct {
	ScopeRoot       string    `json:"scope_root"`
	CfgRoot         string    `json:"cfg_root"`
	SchemaVersion   int       `json:"schema_version"`
	DiscoveredScopes []string `json:"discovered_scopes"`
	Sections        []string  `json:"sections"`

	TokenizerBackend    string `json:"tokenizer_backend"`
	TokenizerAvailable  bool   `json:"tokenizer_available"`
	TokenizerError      string `json:"tokenizer_error,omitempty"`

	CacheDir     string `json:"cache_dir"`
	CacheEntries int    `json:"cache_entries"`

	Adapters []Adapter `json:"adapters"`
}

// Build assembles a Report for an already-loaded config, resolving model to
// a tokenizer backend the same way runPipeline does (spec.md §6).
func Build(cfg *config.Config, model string, store *cache.Store) Report {
	r := Report{
		ScopeRoot:        cfg.ScopeRoot,
		CfgRoot:          cfg.CfgRoot,
		SchemaVersion:    cfg.SchemaVersion,
		DiscoveredScopes: discoverScopes(cfg.ScopeRoot),
		Sections:         sectionNames(cfg),
		Adapters:         adapters(),
	}

	if model == "" {
		model = cfg.DefaultModel
	}
	backend, err := tokenizer.NewForModel(model)
	if err != nil {
		r.TokenizerAvailable = false
		r.TokenizerError = err.Error()
	} else {
		r.TokenizerAvailable = true
		r.TokenizerBackend = backend.Name()
	}

	if store != nil {
		r.CacheDir = store.Dir
		r.CacheEntries = store.CountEntries()
	}

	return r
}

func sectionNames(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.Sections))
	for id := range cfg.Sections {
		names = append(names, id)
	}
	sort.Strings(names)
	return names
}

func adapters() []Adapter {
	regs := langadapter.Registered()
	out := make([]Adapter, 0, len(regs))
	for _, a := range regs {
		out = append(out, Adapter{Language: a.Name, Extensions: a.Extensions})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Language < out[j].Language })
	return out
}

// discoverScopes walks scopeRoot for nested lg-cfg/ directories below the
// top scope (multi-scope monorepos addressed via `@origin:` paths,
// spec.md §4.10), skipping the scope's own lg-cfg and anything under it.
func discoverScopes(scopeRoot string) []string {
	var found []string
	ownCfg := filepath.Join(scopeRoot, "lg-cfg")

	filepath.WalkDir(scopeRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil || d == nil {
			return nil
		}
		if path == ownCfg {
			return filepath.SkipDir
		}
		if d.IsDir() && d.Name() == "lg-cfg" {
			rel, relErr := filepath.Rel(scopeRoot, filepath.Dir(path))
			if relErr == nil {
				found = append(found, rel)
			}
			return filepath.SkipDir
		}
		if d.IsDir() && (d.Name() == ".git" || d.Name() == "node_modules") {
			return filepath.SkipDir
		}
		return nil
	})

	sort.Strings(found)
	return found
}
