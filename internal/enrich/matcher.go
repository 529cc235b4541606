// Package enrich implements the enrichment core: matching a corpus entry
// against the translation store, synthesizing Vietnamese sense blocks, and
// splicing them into the entry. The Pipeline type runs the whole corpus
// through a fixed worker pool.
package enrich

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hungdoba/jmdict-vi/internal/model"
	"github.com/hungdoba/jmdict-vi/internal/store"
)

// Matcher resolves the best translation record and character records for one
// entry. It holds a worker's private store handle.
type Matcher struct {
	lex store.Lexicon
	log *zap.Logger
}

// NewMatcher creates a matcher over the given lexicon handle.
func NewMatcher(lex store.Lexicon, log *zap.Logger) *Matcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Matcher{lex: lex, log: log}
}

// FindWord returns the best word record for the entry, or nil when no form
// matches. Kanji forms are tried first, then reading forms, each in document
// order; the first form that yields an accepted candidate wins. Store errors
// degrade to "no result" for that query.
func (m *Matcher) FindWord(ctx context.Context, e model.Entry) *model.Word {
	for _, form := range e.KanjiForms() {
		if w := m.lookup(ctx, form); w != nil {
			return w
		}
	}
	for _, form := range e.ReadingForms() {
		if w := m.lookup(ctx, form); w != nil {
			return w
		}
	}
	return nil
}

// lookup tries an exact headword match first, then a phonetic-token match.
// Candidates are taken in store order; no further ranking.
func (m *Matcher) lookup(ctx context.Context, form string) *model.Word {
	words, err := m.lex.WordsByHeadword(ctx, form)
	if err != nil {
		m.log.Warn("headword query failed", zap.String("form", form), zap.Error(err))
		words = nil
	}
	for i := range words {
		if words[i].Word == form {
			return &words[i]
		}
	}

	words, err = m.lex.WordsByPhonetic(ctx, form)
	if err != nil {
		m.log.Warn("phonetic query failed", zap.String("form", form), zap.Error(err))
		return nil
	}
	for i := range words {
		if hasToken(words[i].Phonetic, form) {
			return &words[i]
		}
	}
	return nil
}

func hasToken(phonetic, form string) bool {
	for _, tok := range strings.Fields(phonetic) {
		if tok == form {
			return true
		}
	}
	return false
}

// CollectKanji scans every kanji form of the entry character by character and
// looks up each ideograph in the character table. Each character contributes
// at most once, in first-seen order across all forms.
func (m *Matcher) CollectKanji(ctx context.Context, e model.Entry) []model.Kanji {
	seen := make(map[string]bool)
	var out []model.Kanji
	for _, form := range e.KanjiForms() {
		for _, r := range form {
			if !isKanji(r) {
				continue
			}
			c := string(r)
			if seen[c] {
				continue
			}
			k, err := m.lex.KanjiByChar(ctx, c)
			if err != nil {
				m.log.Warn("kanji query failed", zap.String("char", c), zap.Error(err))
				continue
			}
			seen[c] = true
			if k != nil {
				out = append(out, *k)
			}
		}
	}
	return out
}

// isKanji reports whether r falls in the CJK unified ideographs block
// U+4E00..U+9FFF.
func isKanji(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}
