package enrich

import (
	"github.com/beevik/etree"

	"github.com/hungdoba/jmdict-vi/internal/model"
)

// Merge splices synthesized senses into the entry. With no senses the entry
// is left untouched. Otherwise senses produced by a previous run are removed
// first, then the new blocks are inserted, in order, immediately before the
// first remaining sense element, or appended when the entry has none. No
// other child is moved.
func Merge(e model.Entry, senses []*etree.Element) {
	if len(senses) == 0 {
		return
	}
	el := e.Element()

	for _, s := range el.SelectElements("sense") {
		if s.SelectAttrValue(senseSourceAttr, "") == senseSourceValue {
			el.RemoveChild(s)
		}
	}

	existing := el.SelectElements("sense")
	if len(existing) == 0 {
		for _, s := range senses {
			el.AddChild(s)
		}
		return
	}

	idx := existing[0].Index()
	for i, s := range senses {
		el.InsertChildAt(idx+i, s)
	}
}
