// Package store provides read-only access to the translation and character
// tables of the dictionary database.
package store

import (
	"context"

	"github.com/hungdoba/jmdict-vi/internal/model"
)

// Lexicon is the query surface the enrichment pipeline needs. All queries are
// read-only; a handle is owned by exactly one goroutine at a time and is never
// shared between workers.
type Lexicon interface {
	// WordsByHeadword returns all rows whose headword equals w exactly,
	// in store order.
	WordsByHeadword(ctx context.Context, w string) ([]model.Word, error)

	// WordsByPhonetic returns all rows whose phonetic field contains w as
	// a substring, in store order.
	WordsByPhonetic(ctx context.Context, w string) ([]model.Word, error)

	// KanjiByChar looks up a single character. Returns (nil, nil) when the
	// character is not in the table.
	KanjiByChar(ctx context.Context, c string) (*model.Kanji, error)

	// Close releases the underlying handle.
	Close() error
}
