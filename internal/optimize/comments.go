package optimize

import (
	"strings"

	"github.com/lg-tool/lg/internal/editbuf"
	"github.com/lg-tool/lg/internal/types"
)

// CommentPolicy selects how standalone and doc comments are treated.
type CommentPolicy string

const (
	CommentKeepAll           CommentPolicy = "keep_all"
	CommentKeepDoc           CommentPolicy = "keep_doc"
	CommentKeepFirstSentence CommentPolicy = "keep_first_sentence"
	CommentStripAll          CommentPolicy = "strip_all"
)

// DocstringExtractor finds the byte offset just past the first sentence of
// a docstring's text, using a language-specific rule; langadapter.Run
// supplies it from the adapter's DocstringSentenceExtractor.
type DocstringExtractor func(doc string) (firstSentenceEnd int, ok bool)

// CommentsConfig is one section's comment-handling settings.
type CommentsConfig struct {
	Policy    CommentPolicy
	ExtractFirstSentence DocstringExtractor
}

// RunComments applies cfg to every comment/docstring element. Plain
// standalone comments (types.ElementComment) are removed entirely under
// strip_all and keep_doc (they are not docstrings), and kept otherwise.
// Docstrings attached to an element (el.DocstringRange) are shortened or
// stripped in place according to the same policy.
func RunComments(src []byte, elems []types.Element, cfg CommentsConfig, buf *editbuf.Buffer) {
	if cfg.Policy == CommentKeepAll {
		return
	}

	for _, e := range elems {
		if e.Kind == types.ElementComment {
			if cfg.Policy == CommentStripAll || cfg.Policy == CommentKeepDoc {
				_ = buf.AddReplacement(e.Range.Start, e.Range.End, "", "comment-strip")
			}
			continue
		}
		if e.DocstringRange == nil {
			continue
		}
		applyDocstringPolicy(src, *e.DocstringRange, cfg, buf)
	}
}

func applyDocstringPolicy(src []byte, rng types.ByteRange, cfg CommentsConfig, buf *editbuf.Buffer) {
	switch cfg.Policy {
	case CommentStripAll:
		_ = buf.AddReplacement(rng.Start, rng.End, "", "docstring-strip")
	case CommentKeepDoc:
		// kept verbatim
	case CommentKeepFirstSentence:
		text := string(src[rng.Start:rng.End])
		cut := firstSentenceCut(text, cfg.ExtractFirstSentence)
		if cut >= len(text) {
			return
		}
		_ = buf.AddReplacement(rng.Start, rng.End, text[:cut], "docstring-trim")
	}
}

// firstSentenceCut finds the byte offset just past the first sentence
// terminator (a language-specific extractor wins when provided; otherwise
// fall back to the first '.', '!' or '?' followed by whitespace or EOS).
func firstSentenceCut(text string, extract DocstringExtractor) int {
	if extract != nil {
		if cut, ok := extract(text); ok {
			return cut
		}
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '.' || c == '!' || c == '?' {
			if i+1 >= len(text) || text[i+1] == ' ' || text[i+1] == '\n' {
				return i + 1
			}
		}
	}
	return len(strings.TrimRight(text, " \t\n"))
}
