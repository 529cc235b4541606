package enrich

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/beevik/etree"
	"github.com/oklog/ulid/v2"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hungdoba/jmdict-vi/internal/corpus"
	"github.com/hungdoba/jmdict-vi/internal/model"
	"github.com/hungdoba/jmdict-vi/internal/store"
)

// Config configures a Pipeline.
type Config struct {
	StorePath string
	Workers   int  // <= 0 means runtime.NumCPU()
	Progress  bool // entry-level progress bar on stderr
	Log       *zap.Logger
}

// Pipeline runs the enrichment over a whole corpus with a fixed worker pool.
// Each worker opens one private read-only store handle at startup and reuses
// it for every entry it processes.
type Pipeline struct {
	storePath string
	workers   int
	progress  bool
	log       *zap.Logger
}

// New creates a pipeline from cfg.
func New(cfg Config) *Pipeline {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		storePath: cfg.StorePath,
		workers:   workers,
		progress:  cfg.Progress,
		log:       log,
	}
}

// An entry moves Pending -> Dispatched -> {Completed | Failed}, exactly one
// terminal transition. Completed carries the modified serialized form; Failed
// carries the original so the entry is restored verbatim.
type status int

const (
	statusPending status = iota
	statusCompleted
	statusFailed
)

type task struct {
	index int
	text  string
}

type result struct {
	status status
	text   string
	err    error
}

type indexedResult struct {
	index int
	result
}

// Summary reports one completed run.
type Summary struct {
	RunID     string        `json:"run_id"`
	Corpus    string        `json:"corpus"`
	Output    string        `json:"output"`
	Entries   int           `json:"entries"`
	Modified  int           `json:"modified"`
	Fallbacks int           `json:"fallbacks"`
	Elapsed   time.Duration `json:"elapsed"`
}

// PerEntry returns the average processing time per entry.
func (s *Summary) PerEntry() time.Duration {
	if s.Entries == 0 {
		return 0
	}
	return s.Elapsed / time.Duration(s.Entries)
}

// Run enriches the corpus at inPath and writes the augmented corpus to
// outPath, preserving entry order exactly. A missing corpus or a store that
// cannot be opened at worker startup aborts the run; per-entry failures
// degrade to the original entry.
func (p *Pipeline) Run(ctx context.Context, inPath, outPath string) (*Summary, error) {
	start := time.Now()
	runID := ulid.Make().String()
	log := p.log.With(zap.String("run", runID))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := corpus.Read(inPath)
	if err != nil {
		return nil, err
	}
	entries := doc.Entries()
	n := len(entries)
	log.Info("corpus loaded", zap.String("corpus", inPath), zap.Int("entries", n))

	// Serialize every entry up front; an entry that cannot be serialized is
	// terminal-Failed without ever being dispatched.
	results := make([]result, n)
	texts := make([]string, n)
	for i, e := range entries {
		s, err := corpus.EntryString(e)
		if err != nil {
			results[i] = result{status: statusFailed, err: err}
			continue
		}
		texts[i] = s
	}

	var bar *progressbar.ProgressBar
	if p.progress {
		bar = progressbar.NewOptions(n,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("enriching"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("entries"),
		)
	}

	tasks := make(chan task)
	resCh := make(chan indexedResult, p.workers)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(tasks)
		for i := 0; i < n; i++ {
			if results[i].status != statusPending {
				continue
			}
			select {
			case tasks <- task{index: i, text: texts[i]}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < p.workers; w++ {
		g.Go(func() error {
			lex, err := store.Open(p.storePath)
			if err != nil {
				return fmt.Errorf("worker startup: %w", err)
			}
			defer lex.Close()
			m := NewMatcher(lex, log)

			for t := range tasks {
				r := result{status: statusCompleted}
				r.text, err = processEntry(gctx, m, t.text)
				if err != nil {
					r = result{status: statusFailed, text: t.text, err: err}
				}
				select {
				case resCh <- indexedResult{index: t.index, result: r}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	// Collection is single-threaded; the result table is written only here.
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for r := range resCh {
			results[r.index] = r.result
			if bar != nil {
				bar.Add(1)
			}
		}
	}()

	err = g.Wait()
	close(resCh)
	<-collected
	if bar != nil {
		bar.Close()
	}
	if err != nil {
		return nil, err
	}

	modified, fallbacks := assemble(log, doc, entries, texts, results)

	if err := doc.Write(outPath); err != nil {
		return nil, err
	}

	sum := &Summary{
		RunID:     runID,
		Corpus:    inPath,
		Output:    outPath,
		Entries:   n,
		Modified:  modified,
		Fallbacks: fallbacks,
		Elapsed:   time.Since(start),
	}
	log.Info("enrichment complete",
		zap.Int("entries", sum.Entries),
		zap.Int("modified", sum.Modified),
		zap.Int("fallbacks", sum.Fallbacks),
		zap.Duration("elapsed", sum.Elapsed),
		zap.Duration("per_entry", sum.PerEntry()),
	)
	return sum, nil
}

// processEntry runs one entry through match, synthesis and merge, returning
// the re-serialized form.
func processEntry(ctx context.Context, m *Matcher, text string) (string, error) {
	el, err := corpus.ParseEntry(text)
	if err != nil {
		return "", err
	}
	entry := model.WrapEntry(el)

	word := m.FindWord(ctx, entry)
	kanjis := m.CollectKanji(ctx, entry)

	Merge(entry, Synthesize(BuildGlosses(word, kanjis)))
	return corpus.EntryString(el)
}

// assemble writes results back into the document strictly by index. A result
// that cannot be re-parsed falls back to the original entry with a warning;
// the run never aborts here.
func assemble(log *zap.Logger, doc *corpus.Document, entries []*etree.Element, texts []string, results []result) (modified, fallbacks int) {
	for i, e := range entries {
		r := results[i]
		if r.status != statusCompleted {
			fallbacks++
			log.Warn("entry kept unmodified", zap.Int("index", i), zap.Error(r.err))
			continue
		}
		if r.text == texts[i] {
			continue // nothing was added
		}
		el, err := corpus.ParseEntry(r.text)
		if err != nil {
			fallbacks++
			log.Warn("re-parse failed, entry kept unmodified", zap.Int("index", i), zap.Error(err))
			continue
		}
		doc.ReplaceEntry(e, el)
		modified++
	}
	return modified, fallbacks
}

// RunDir enriches every *.xml corpus file under inDir, writing each result
// under outDir with the same base name. Files whose output already exists
// are skipped so an interrupted batch can resume.
func (p *Pipeline) RunDir(ctx context.Context, inDir, outDir string) ([]*Summary, error) {
	paths, err := filepath.Glob(filepath.Join(inDir, "*.xml"))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", inDir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no xml files under %s", inDir)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var summaries []*Summary
	for _, in := range paths {
		out := filepath.Join(outDir, filepath.Base(in))
		if _, err := os.Stat(out); err == nil {
			p.log.Info("output exists, skipping", zap.String("file", out))
			continue
		}
		sum, err := p.Run(ctx, in, out)
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}
