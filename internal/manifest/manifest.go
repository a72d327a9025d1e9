// Package manifest implements the Manifest Builder (C2): it walks a repo
// root, applies .gitignore, the per-section filter tree, extension and
// change-set predicates, and the empty-content policy, producing a stable,
// ordered list of FileRef.
package manifest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lg-tool/lg/internal/config"
	"github.com/lg-tool/lg/internal/filter"
	"github.com/lg-tool/lg/internal/types"
	"github.com/lg-tool/lg/internal/vcs"
)

// SectionSpec pairs a configured Section with the multiplicity a context
// requested for it.
type SectionSpec struct {
	Section      *types.Section
	Multiplicity int
}

// Request describes one manifest build.
type Request struct {
	RepoRoot string
	Sections []SectionSpec
	Mode     types.Mode
	VCS      vcs.Provider
	Gitignore *config.GitignoreMatcher
}

// Build walks the repo once per section (sections may overlap in practice,
// but each owns its own filter tree) and returns a single ordered manifest.
func Build(ctx context.Context, req Request) ([]types.FileRef, []error, error) {
	var refs []types.FileRef
	var warnings []error

	var changed map[string]struct{}
	if req.Mode == types.ModeChanges {
		if req.VCS == nil {
			return nil, nil, vcs.ErrNoProvider
		}
		var err error
		changed, err = req.VCS.ChangedFiles(ctx, req.RepoRoot)
		if err != nil {
			return nil, nil, err
		}
	}

	for _, spec := range req.Sections {
		sectionRefs, sectionWarnings, err := buildSection(ctx, req.RepoRoot, spec, req.Mode, changed, req.Gitignore)
		if err != nil {
			return nil, nil, err
		}
		refs = append(refs, sectionRefs...)
		warnings = append(warnings, sectionWarnings...)
	}

	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Section != refs[j].Section {
			return refs[i].Section < refs[j].Section
		}
		return refs[i].RelPath < refs[j].RelPath
	})

	return refs, warnings, nil
}

func buildSection(ctx context.Context, root string, spec SectionSpec, mode types.Mode, changed map[string]struct{}, gi *config.GitignoreMatcher) ([]types.FileRef, []error, error) {
	sec := spec.Section
	eng := filter.New(sec.Filters)

	var refs []types.FileRef

	var walk func(dir string) error
	walk = func(dir string) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil // unreadable directory: skip rather than abort the run
		}

		// Separate dirs and files so files are visited only after all
		// subdirectories have been walked (leaves-first order per spec.md
		// §4.2), matching the deterministic sort applied at the end.
		var dirs, files []os.DirEntry
		for _, e := range entries {
			if e.IsDir() {
				dirs = append(dirs, e)
			} else {
				files = append(files, e)
			}
		}

		for _, d := range dirs {
			name := d.Name()
			absChild := filepath.Join(dir, name)
			relChild, _ := filepath.Rel(root, absChild)
			relChild = filepath.ToSlash(relChild)

			if name == "lg-cfg" {
				continue // never treated as indexable source
			}
			if gi != nil && gi.ShouldIgnore(relChild, true) {
				continue
			}
			if !eng.MayDescend(relChild) {
				continue
			}
			if err := walk(absChild); err != nil {
				return err
			}
		}

		for _, f := range files {
			name := f.Name()
			absChild := filepath.Join(dir, name)
			relChild, _ := filepath.Rel(root, absChild)
			relChild = filepath.ToSlash(relChild)

			ext := filepath.Ext(name)
			if _, ok := sec.Extensions[ext]; !ok {
				continue
			}
			if gi != nil && gi.ShouldIgnore(relChild, false) {
				continue
			}
			if !eng.Includes(relChild) {
				continue
			}
			if mode == types.ModeChanges {
				if _, ok := changed[relChild]; !ok {
					continue
				}
			}

			info, err := f.Info()
			if err != nil {
				continue
			}
			if !emptyAllowed(sec, ext, info.Size()) {
				continue
			}

			refs = append(refs, types.FileRef{
				AbsPath:      absChild,
				RelPath:      relChild,
				Section:      sec.CanonicalID,
				Multiplicity: spec.Multiplicity,
				LangHint:     strings.TrimPrefix(ext, "."),
			})
		}
		return nil
	}

	if err := walk(root); err != nil {
		return nil, nil, err
	}

	return refs, eng.Warnings(), nil
}

// emptyAllowed applies the per-language empty_policy override (falling
// back to the section's skip_empty) to a candidate file's size.
func emptyAllowed(sec *types.Section, ext string, size int64) bool {
	if size > 0 {
		return true
	}
	lang := strings.TrimPrefix(ext, ".")
	if lc, ok := sec.LanguageOptions[lang]; ok {
		switch lc.EmptyPolicy {
		case types.EmptyInclude:
			return true
		case types.EmptyExclude:
			return false
		}
	}
	return !sec.SkipEmpty
}
