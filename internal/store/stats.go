package store

import (
	"context"
	"os"
)

// Stats holds dictionary database statistics.
type Stats struct {
	DBPath      string `json:"db_path"`
	DBSizeBytes int64  `json:"db_size_bytes"`
	Words       int    `json:"words"`
	CommonWords int    `json:"common_words"`
	Annotated   int    `json:"annotated_words"`
	Kanji       int    `json:"kanji"`
}

// Stats returns row counts for the words and kanji tables.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words`).Scan(&st.Words); err != nil {
		return nil, err
	}
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words WHERE is_common`).Scan(&st.CommonWords)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words WHERE anki IS NOT NULL AND anki != ''`).Scan(&st.Annotated)
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kanji`).Scan(&st.Kanji); err != nil {
		return nil, err
	}

	return st, nil
}
