package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/hungdoba/jmdict-vi/internal/model"
)

// SQLiteStore implements Lexicon over a SQLite dictionary database.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens the dictionary database at the given path read-only. The file
// must already exist; an unreadable or missing database is reported here so
// a worker fails at startup rather than mid-run.
func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open db %s: %w", dbPath, err)
	}
	return &SQLiteStore{db: db}, nil
}

const wordColumns = `word, phonetic, mean, is_common, priority, info, anki`

func (s *SQLiteStore) WordsByHeadword(ctx context.Context, w string) ([]model.Word, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+wordColumns+` FROM words WHERE word = ?`, w)
	if err != nil {
		return nil, fmt.Errorf("query words by headword: %w", err)
	}
	defer rows.Close()
	return scanWords(rows)
}

func (s *SQLiteStore) WordsByPhonetic(ctx context.Context, w string) ([]model.Word, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+wordColumns+` FROM words WHERE phonetic LIKE ?`, "%"+w+"%")
	if err != nil {
		return nil, fmt.Errorf("query words by phonetic: %w", err)
	}
	defer rows.Close()
	return scanWords(rows)
}

func (s *SQLiteStore) KanjiByChar(ctx context.Context, c string) (*model.Kanji, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT kanji, hanzi, onyomi, kunyomi, mean, level, priority, info, anki
		 FROM kanji WHERE kanji = ?`, c)

	var k model.Kanji
	var hanzi, onyomi, kunyomi, mean, level, priority, info, anki sql.NullString
	err := row.Scan(&k.Kanji, &hanzi, &onyomi, &kunyomi, &mean, &level, &priority, &info, &anki)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query kanji: %w", err)
	}
	k.Hanzi = hanzi.String
	k.Onyomi = onyomi.String
	k.Kunyomi = kunyomi.String
	k.Mean = mean.String
	k.Level = level.String
	k.Priority = priority.String
	k.Info = info.String
	k.Anki = anki.String
	return &k, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanWords(rows *sql.Rows) ([]model.Word, error) {
	var words []model.Word
	for rows.Next() {
		var w model.Word
		var phonetic, mean, priority, info, anki sql.NullString
		var isCommon sql.NullBool
		err := rows.Scan(&w.Word, &phonetic, &mean, &isCommon, &priority, &info, &anki)
		if err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		w.Phonetic = phonetic.String
		w.Mean = mean.String
		w.IsCommon = isCommon.Bool
		w.Priority = priority.String
		w.Info = info.String
		w.Anki = anki.String
		words = append(words, w)
	}
	return words, rows.Err()
}
