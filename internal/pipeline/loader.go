package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/lg-tool/lg/internal/config"
)

// sectionLoader implements mdtemplate.ResourceLoader: markdown/template
// resources come straight off disk (already scoped by the Addressing
// system's cfg_root resolution), while section includes resolve against
// the already-rendered per-section text from this run, keyed by canonical
// section id.
type sectionLoader struct {
	cfg       *config.Config
	bySection map[string]string
}

func newSectionLoader(cfg *config.Config, bySection map[string]string) *sectionLoader {
	return &sectionLoader{cfg: cfg, bySection: bySection}
}

func (l *sectionLoader) LoadMarkdownOrTemplate(resourcePath string) (string, error) {
	data, err := os.ReadFile(resourcePath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (l *sectionLoader) LoadSection(canonicalID string) (string, error) {
	if _, ok := l.cfg.Sections[canonicalID]; !ok {
		return "", fmt.Errorf("unknown section %q", canonicalID)
	}
	return l.bySection[canonicalID], nil
}

func (l *sectionLoader) Glob(cfgRoot, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(cfgRoot), pattern)
	if err != nil {
		return nil, err
	}
	abs := make([]string, len(matches))
	for i, m := range matches {
		abs[i] = filepath.Join(cfgRoot, m)
	}
	return abs, nil
}
