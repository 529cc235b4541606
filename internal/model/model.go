// Package model defines the core lexicon data types.
package model

import "github.com/beevik/etree"

// Word is one row of the translation store's words table. Several rows may
// share a headword (homographs); all of them are candidates during matching.
type Word struct {
	Word     string
	Phonetic string // space-separated transliteration tokens
	Mean     string // semicolon-delimited gloss clauses
	IsCommon bool
	Priority string
	Info     string
	Anki     string // annotation reference, carried into synthesized notes
}

// Kanji is one row of the character store, keyed by a single character.
type Kanji struct {
	Kanji    string
	Hanzi    string // alternate-script rendering
	Onyomi   string
	Kunyomi  string
	Mean     string
	Level    string
	Priority string
	Info     string
	Anki     string
}

// Glosses aggregates everything matched for one entry: the joined
// alternate-script string, per-character notes, and the selected meaning.
// Built fresh per entry, never persisted.
type Glosses struct {
	Hanzi     string   // hanzi renderings joined with " | "
	HanziAnki []string // "<kanji> : <anki>" per annotated character, discovery order
	Mean      string
	MeanAnki  string
}

// Empty reports whether the glosses would produce no sense blocks.
func (g Glosses) Empty() bool {
	return g.Hanzi == "" && g.Mean == ""
}

// Entry is a read/write view over a single <entry> element of the corpus.
// Its identity is the element's position in the corpus; the element is only
// ever mutated by the merger.
type Entry struct {
	el *etree.Element
}

// WrapEntry wraps an existing <entry> element.
func WrapEntry(el *etree.Element) Entry {
	return Entry{el: el}
}

// Element returns the underlying XML element.
func (e Entry) Element() *etree.Element {
	return e.el
}

// KanjiForms returns the entry's headword forms (k_ele/keb) in document order.
func (e Entry) KanjiForms() []string {
	return childTexts(e.el, "k_ele", "keb")
}

// ReadingForms returns the entry's reading forms (r_ele/reb) in document order.
func (e Entry) ReadingForms() []string {
	return childTexts(e.el, "r_ele", "reb")
}

// Senses returns the entry's existing sense elements in document order.
func (e Entry) Senses() []*etree.Element {
	return e.el.SelectElements("sense")
}

func childTexts(el *etree.Element, parent, child string) []string {
	var out []string
	for _, p := range el.SelectElements(parent) {
		if c := p.SelectElement(child); c != nil {
			out = append(out, c.Text())
		}
	}
	return out
}
