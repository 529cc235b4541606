package enrich

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/hungdoba/jmdict-vi/internal/corpus"
)

const fixtureSchema = `
CREATE TABLE words (
	word     TEXT NOT NULL,
	phonetic TEXT,
	mean     TEXT,
	is_common INTEGER,
	priority TEXT,
	info     TEXT,
	anki     TEXT
);
CREATE TABLE kanji (
	kanji    TEXT PRIMARY KEY,
	hanzi    TEXT,
	onyomi   TEXT,
	kunyomi  TEXT,
	mean     TEXT,
	level    TEXT,
	priority TEXT,
	info     TEXT,
	anki     TEXT
);
`

func newFixtureDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dict.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(fixtureSchema)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO words (word, phonetic, mean, is_common, priority, info, anki) VALUES
		('日本語', 'nihongo', 'tiếng Nhật; Japanese language', 1, NULL, NULL, 'nhat-ngu'),
		('先生', 'sensei せんせい', 'thầy giáo; teacher', 1, NULL, NULL, NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO kanji (kanji, hanzi, onyomi, kunyomi, mean, level, priority, info, anki) VALUES
		('日', '日', 'ニチ', 'ひ', 'nhật', 'N5', '1', NULL, 'day-note'),
		('語', '語', 'ゴ', 'かたる', 'ngữ', 'N5', '2', NULL, NULL)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	return path
}

const fixtureCorpus = `<?xml version="1.0" encoding="UTF-8"?>
<JMdict>
<entry><ent_seq>1</ent_seq><k_ele><keb>日本語</keb></k_ele><r_ele><reb>にほんご</reb></r_ele><sense><gloss>Japanese</gloss></sense></entry>
<entry><ent_seq>2</ent_seq><k_ele><keb>林檎飴</keb></k_ele><r_ele><reb>りんごあめ</reb></r_ele><sense><gloss>candy apple</gloss></sense></entry>
<entry><ent_seq>3</ent_seq><r_ele><reb>せんせい</reb></r_ele><sense><gloss>teacher</gloss></sense></entry>
</JMdict>
`

func writeFixtureCorpus(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "corpus.xml")
	require.NoError(t, os.WriteFile(path, []byte(fixtureCorpus), 0o644))
	return path
}

func TestPipelineRun(t *testing.T) {
	dir := t.TempDir()
	in := writeFixtureCorpus(t, dir)
	out := filepath.Join(dir, "out.xml")

	p := New(Config{StorePath: newFixtureDB(t), Workers: 4, Log: zap.NewNop()})
	sum, err := p.Run(context.Background(), in, out)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Entries)
	assert.Equal(t, 2, sum.Modified)
	assert.Equal(t, 0, sum.Fallbacks)
	assert.NotEmpty(t, sum.RunID)

	got, err := corpus.Read(out)
	require.NoError(t, err)
	entries := got.Entries()
	require.Len(t, entries, 3)

	// Order preserved regardless of worker completion order.
	for i, seq := range []string{"1", "2", "3"} {
		assert.Equal(t, seq, entries[i].SelectElement("ent_seq").Text())
	}

	// Entry 1: meaning sense then character sense, before the original one.
	senses := entries[0].SelectElements("sense")
	require.Len(t, senses, 3)
	assert.Equal(t, "tiếng Nhật", senses[0].SelectElement("gloss").Text())
	assert.Equal(t, "vi", senses[0].SelectElement("gloss").SelectAttrValue("xml:lang", ""))
	assert.Equal(t, "nhat-ngu", senses[0].SelectElement("misc").Text())
	assert.Equal(t, "日 | 語", senses[1].SelectElement("gloss").Text())
	assert.Equal(t, "日 : day-note", senses[1].SelectElement("misc").Text())
	assert.Equal(t, "Japanese", senses[2].SelectElement("gloss").Text())

	// Entry 2 has no match at all and must be structurally identical.
	src, err := corpus.Read(in)
	require.NoError(t, err)
	want, err := corpus.EntryString(src.Entries()[1])
	require.NoError(t, err)
	have, err := corpus.EntryString(entries[1])
	require.NoError(t, err)
	assert.Equal(t, want, have)

	// Entry 3 matched through its reading's phonetic token.
	senses = entries[2].SelectElements("sense")
	require.Len(t, senses, 2)
	assert.Equal(t, "thầy giáo", senses[0].SelectElement("gloss").Text())
}

func TestPipelineRunMissingCorpus(t *testing.T) {
	p := New(Config{StorePath: newFixtureDB(t), Workers: 1, Log: zap.NewNop()})
	_, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "nope.xml"), "out.xml")
	assert.Error(t, err)
}

func TestPipelineRunMissingStoreAborts(t *testing.T) {
	dir := t.TempDir()
	in := writeFixtureCorpus(t, dir)

	p := New(Config{StorePath: filepath.Join(dir, "no-such.db"), Workers: 2, Log: zap.NewNop()})
	_, err := p.Run(context.Background(), in, filepath.Join(dir, "out.xml"))
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "out.xml"))
}

func TestPipelineRunCancelled(t *testing.T) {
	dir := t.TempDir()
	in := writeFixtureCorpus(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(Config{StorePath: newFixtureDB(t), Workers: 2, Log: zap.NewNop()})
	_, err := p.Run(ctx, in, filepath.Join(dir, "out.xml"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAssembleFaultIsolation(t *testing.T) {
	dir := t.TempDir()
	in := writeFixtureCorpus(t, dir)

	doc, err := corpus.Read(in)
	require.NoError(t, err)
	entries := doc.Entries()
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i], err = corpus.EntryString(e)
		require.NoError(t, err)
	}

	results := []result{
		{status: statusCompleted, text: `<entry><ent_seq>1</ent_seq><sense source="jdvi"><gloss xml:lang="vi">x</gloss></sense></entry>`},
		{status: statusCompleted, text: "<entry><broken"}, // corrupted in flight
		{status: statusFailed, text: texts[2], err: assert.AnError},
	}

	modified, fallbacks := assemble(zap.NewNop(), doc, entries, texts, results)
	assert.Equal(t, 1, modified)
	assert.Equal(t, 2, fallbacks)

	// The corrupted and failed entries keep their original form.
	after := doc.Entries()
	require.Len(t, after, 3)
	s, err := corpus.EntryString(after[1])
	require.NoError(t, err)
	assert.Equal(t, texts[1], s)
	s, err = corpus.EntryString(after[2])
	require.NoError(t, err)
	assert.Equal(t, texts[2], s)
}

func TestPipelineRunDirSkipsExisting(t *testing.T) {
	dir := t.TempDir()
	inDir := filepath.Join(dir, "parts")
	outDir := filepath.Join(dir, "done")
	require.NoError(t, os.MkdirAll(inDir, 0o755))
	require.NoError(t, os.MkdirAll(outDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(inDir, "a.xml"), []byte(fixtureCorpus), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "b.xml"), []byte(fixtureCorpus), 0o644))
	// Pre-existing output: b must be skipped.
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "b.xml"), []byte("done"), 0o644))

	p := New(Config{StorePath: newFixtureDB(t), Workers: 2, Log: zap.NewNop()})
	sums, err := p.RunDir(context.Background(), inDir, outDir)
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.Equal(t, filepath.Join(inDir, "a.xml"), sums[0].Corpus)

	data, err := os.ReadFile(filepath.Join(outDir, "b.xml"))
	require.NoError(t, err)
	assert.Equal(t, "done", string(data))
}

func TestProcessEntryMalformed(t *testing.T) {
	lex := &fakeLexicon{}
	m := NewMatcher(lex, zap.NewNop())
	_, err := processEntry(context.Background(), m, "<entry><keb>")
	assert.Error(t, err)
}
