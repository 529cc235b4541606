package enrich

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/hungdoba/jmdict-vi/internal/model"
)

// Synthesized senses are tagged so a later run can replace them instead of
// appending duplicates.
const (
	senseSourceAttr  = "source"
	senseSourceValue = "jdvi"
)

// BuildGlosses aggregates the match results for one entry.
func BuildGlosses(word *model.Word, kanjis []model.Kanji) model.Glosses {
	var g model.Glosses
	if word != nil {
		if word.Mean != "" {
			g.Mean = vietnameseMean(word.Mean)
		}
		g.MeanAnki = word.Anki
	}

	var hanzi []string
	for _, k := range kanjis {
		if k.Hanzi != "" {
			hanzi = append(hanzi, k.Hanzi)
		}
	}
	g.Hanzi = strings.Join(hanzi, " | ")

	for _, k := range kanjis {
		if k.Anki != "" {
			g.HanziAnki = append(g.HanziAnki, k.Kanji+" : "+k.Anki)
		}
	}
	return g
}

// vietnameseMean keeps only the clauses of a semicolon-delimited meaning that
// contain Vietnamese script. When no clause qualifies the full original
// meaning is kept unchanged.
func vietnameseMean(mean string) string {
	var kept []string
	for _, clause := range strings.Split(mean, ";") {
		clause = strings.TrimSpace(clause)
		if hasVietnamese(clause) {
			kept = append(kept, clause)
		}
	}
	if len(kept) == 0 {
		return mean
	}
	return strings.Join(kept, "; ")
}

// hasVietnamese reports whether s contains a character in the Vietnamese
// extended Latin band U+00C0..U+1EF9.
func hasVietnamese(s string) bool {
	for _, r := range s {
		if r >= 0x00C0 && r <= 0x1EF9 {
			return true
		}
	}
	return false
}

// Synthesize turns glosses into sense elements: a Vietnamese meaning sense
// first, then a character-variant sense. Either may be absent.
func Synthesize(g model.Glosses) []*etree.Element {
	var senses []*etree.Element

	if g.Mean != "" {
		s := newSense()
		gl := s.CreateElement("gloss")
		gl.CreateAttr("xml:lang", "vi")
		gl.SetText(g.Mean)
		if g.MeanAnki != "" {
			s.CreateElement("misc").SetText(g.MeanAnki)
		}
		senses = append(senses, s)
	}

	if g.Hanzi != "" {
		s := newSense()
		s.CreateElement("gloss").SetText(g.Hanzi)
		for _, note := range g.HanziAnki {
			s.CreateElement("misc").SetText(note)
		}
		senses = append(senses, s)
	}

	return senses
}

func newSense() *etree.Element {
	s := etree.NewElement("sense")
	s.CreateAttr(senseSourceAttr, senseSourceValue)
	return s
}
