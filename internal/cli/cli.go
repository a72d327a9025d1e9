// Package cli builds the urfave/cli/v2 application for lg, wiring
// lg-cfg/ loading, the Manifest Builder, the Budget Controller, and the
// Pipeline Orchestrator into the commands spec.md §6 describes: report,
// render, list, and diag.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/lg-tool/lg/internal/budget"
	"github.com/lg-tool/lg/internal/cache"
	"github.com/lg-tool/lg/internal/config"
	"github.com/lg-tool/lg/internal/debug"
	"github.com/lg-tool/lg/internal/diag"
	"github.com/lg-tool/lg/internal/langadapter"
	"github.com/lg-tool/lg/internal/manifest"
	"github.com/lg-tool/lg/internal/optimize"
	"github.com/lg-tool/lg/internal/funcbody"
	"github.com/lg-tool/lg/internal/pipeline"
	"github.com/lg-tool/lg/internal/tokenizer"
	"github.com/lg-tool/lg/internal/types"
	"github.com/lg-tool/lg/internal/vcs"
	"github.com/lg-tool/lg/internal/version"
)

// NewApp builds the lg CLI application.
func NewApp() *cli.App {
	return &cli.App{
		Name:                   "lg",
		Usage:                  "Compress a repository into a deterministic, budget-aware listing for LLM context",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "Repository root (default: current directory)", Value: "."},
			&cli.BoolFlag{Name: "debug", Usage: "Write debug diagnostics to a temp log file"},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				if path, err := debug.InitLogFile(); err == nil {
					fmt.Fprintf(os.Stderr, "debug log: %s\n", path)
				}
			}
			return nil
		},
		Commands: []*cli.Command{
			reportCommand(),
			renderCommand(),
			listCommand(),
			diagCommand(),
		},
	}
}

func commonRunFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "mode", Usage: "all|changes", Value: "all"},
		&cli.StringFlag{Name: "model", Usage: "Target model name, used to resolve a context window"},
		&cli.IntFlag{Name: "ctx-limit", Usage: "Explicit context window override in tokens"},
		&cli.BoolFlag{Name: "no-fence", Usage: "Disable fenced code blocks in the rendered output"},
		&cli.BoolFlag{Name: "dry-run", Usage: "Build the manifest and print file counts without processing any file"},
		&cli.StringFlag{Name: "base-ref", Usage: "Git ref mode=changes diffs against (default HEAD)"},
		&cli.IntFlag{Name: "parallel", Usage: "Max concurrent file adapters", Value: 4},
	}
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Run the full pipeline and print a JSON run summary",
		ArgsUsage: "<target>",
		Flags:     commonRunFlags(),
		Action: func(c *cli.Context) error {
			result, err := runPipeline(c)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Run the full pipeline and print the rendered document text",
		ArgsUsage: "<target>",
		Flags:     commonRunFlags(),
		Action: func(c *cli.Context) error {
			result, err := runPipeline(c)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			fmt.Print(result.RenderedText)
			if len(result.Diagnostics.Warnings) > 0 {
				for _, w := range result.Diagnostics.Warnings {
					fmt.Fprintf(os.Stderr, "warning: %s\n", w)
				}
			}
			return nil
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List configured contexts or sections",
		Subcommands: []*cli.Command{
			{
				Name: "sections",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return cli.Exit(err.Error(), 2)
					}
					names := make([]string, 0, len(cfg.Sections))
					for id := range cfg.Sections {
						names = append(names, id)
					}
					sort.Strings(names)
					for _, n := range names {
						fmt.Println(n)
					}
					return nil
				},
			},
			{
				Name: "contexts",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return cli.Exit(err.Error(), 2)
					}
					matches, _ := filepath.Glob(filepath.Join(cfg.CfgRoot, "*.ctx.md"))
					sort.Strings(matches)
					for _, m := range matches {
						rel, _ := filepath.Rel(cfg.CfgRoot, m)
						fmt.Println(rel)
					}
					return nil
				},
			},
		},
	}
}

func diagCommand() *cli.Command {
	return &cli.Command{
		Name:  "diag",
		Usage: "Print environment and manifest diagnostics without rendering (cfg root, scopes, tokenizer, cache, adapters)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Usage: "all|changes", Value: "all"},
			&cli.StringFlag{Name: "model", Usage: "Model used to resolve the tokenizer backend"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			root := repoRoot(c)
			store := cache.NewStore(filepath.Join(cfg.CfgRoot, ".lg-cache"))

			specs := allSectionSpecs(cfg)
			refs, warnings, err := manifest.Build(context.Background(), manifest.Request{
				RepoRoot:  root,
				Sections:  specs,
				Mode:      types.Mode(c.String("mode")),
				VCS:       &vcs.GitProvider{},
				Gitignore: cfg.Gitignore,
			})
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}

			report := diag.Build(cfg, c.String("model"), store)
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(struct {
				diag.Report
				ManifestFiles int `json:"manifest_files"`
			}{Report: report, ManifestFiles: len(refs)}); err != nil {
				return cli.Exit(err.Error(), 2)
			}
			for _, w := range warnings {
				fmt.Fprintf(os.Stderr, "warning: %v\n", w)
			}
			return nil
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	return config.Load(repoRoot(c))
}

func repoRoot(c *cli.Context) string {
	root := c.String("root")
	abs, err := filepath.Abs(root)
	if err != nil {
		return root
	}
	return abs
}

func allSectionSpecs(cfg *config.Config) []manifest.SectionSpec {
	specs := make([]manifest.SectionSpec, 0, len(cfg.Sections))
	for _, sec := range cfg.Sections {
		specs = append(specs, manifest.SectionSpec{Section: sec, Multiplicity: 1})
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Section.CanonicalID < specs[j].Section.CanonicalID })
	return specs
}

// runPipeline builds the shared request/config plumbing for report and
// render: load lg-cfg/, resolve the tokenizer, assemble the escalation
// ladder, and invoke the orchestrator.
func runPipeline(c *cli.Context) (types.RunResult, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return types.RunResult{}, err
	}
	root := repoRoot(c)

	model := c.String("model")
	if model == "" {
		model = cfg.DefaultModel
	}
	backend, err := tokenizer.NewForModel(model)
	if err != nil {
		return types.RunResult{}, fmt.Errorf("load tokenizer: %w", err)
	}
	counter := tokenizer.NewCounter(backend)

	var vcsProvider vcs.Provider = &vcs.GitProvider{BaseRef: c.String("base-ref")}

	cacheDir := filepath.Join(cfg.CfgRoot, ".lg-cache")
	store := cache.NewStore(cacheDir)
	_ = cache.EnsureGitignore(root, filepath.Join(filepath.Base(cfg.CfgRoot), ".lg-cache"))

	req := pipeline.Request{
		RepoRoot:     root,
		Cfg:          cfg,
		SectionSpecs: allSectionSpecs(cfg),
		Mode:         types.Mode(c.String("mode")),
		VCS:          vcsProvider,
		Model:        model,
		CtxLimit:     c.Int("ctx-limit"),
		Ladder:       defaultLadder(),
		Adapters:     langadapter.ForExtension,
		Counter:      counter,
		Cache:        store,
		MaxParallel:  c.Int("parallel"),
		UseFence:     !c.Bool("no-fence"),
	}

	if c.Bool("dry-run") {
		refs, warnings, err := manifest.Build(context.Background(), manifest.Request{
			RepoRoot: root, Sections: req.SectionSpecs, Mode: req.Mode, VCS: req.VCS, Gitignore: cfg.Gitignore,
		})
		if err != nil {
			return types.RunResult{}, err
		}
		var diag types.Diagnostics
		for _, w := range warnings {
			diag.Warn("%v", w)
		}
		return types.RunResult{FormatVersion: "1", Total: len(refs), Diagnostics: diag}, nil
	}

	return pipeline.Run(context.Background(), req)
}

// defaultLadder is the fixed, three-rung escalation ladder (spec.md §4.9):
// as-is, then structural trims, then an aggressive literal-budget pass.
func defaultLadder() budget.Ladder {
	publicOnly := &optimize.PublicAPIConfig{
		Kinds:            map[types.ElementKind]struct{}{types.ElementFunction: {}, types.ElementMethod: {}},
		GroupWithinLines: 2,
		Placeholder:      "// … %d private %s omitted (%d lines)",
	}
	imports := &optimize.ImportsConfig{StripLocal: true, Placeholder: "// … %d local imports omitted (%d lines)"}
	comments := &optimize.CommentsConfig{Policy: optimize.CommentKeepDoc}
	trimBody := &funcbody.Config{Policy: funcbody.PolicyTrim, TrimMaxLines: 40, Placeholder: "// … body omitted"}
	stripBody := &funcbody.Config{Policy: funcbody.PolicyStripAll, Placeholder: "// … body omitted"}

	return budget.Ladder{
		{Name: "as-is", Config: langadapter.OptimizerConfig{Comments: comments}},
		{Name: "trim-bodies", Config: langadapter.OptimizerConfig{Comments: comments, FuncBody: trimBody, LiteralBudget: 60}},
		{Name: "strip-bodies", Config: langadapter.OptimizerConfig{
			PublicAPI: publicOnly, Imports: imports, Comments: comments, FuncBody: stripBody, LiteralBudget: 20,
		}},
	}
}
