// Package corpus reads and writes JMdict-style corpus documents and
// implements the split/merge helpers that shard a corpus into fixed-size
// chunk files and reassemble them.
package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

const xmlDeclaration = `version="1.0" encoding="UTF-8"`

// Document is a parsed corpus file. The root element holds the ordered
// sequence of <entry> elements.
type Document struct {
	doc *etree.Document
}

// Read parses the corpus file at path.
func Read(path string) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("read corpus %s: no root element", path)
	}
	return &Document{doc: doc}, nil
}

// Root returns the corpus root element.
func (d *Document) Root() *etree.Element {
	return d.doc.Root()
}

// Entries returns the corpus entries in document order.
func (d *Document) Entries() []*etree.Element {
	return d.doc.Root().SelectElements("entry")
}

// ReplaceEntry swaps old for repl at old's position under the root.
func (d *Document) ReplaceEntry(old, repl *etree.Element) {
	idx := old.Index()
	root := d.doc.Root()
	root.RemoveChild(old)
	root.InsertChildAt(idx, repl)
}

// Write serializes the document to path, UTF-8 with an XML declaration.
func (d *Document) Write(path string) error {
	ensureDeclaration(d.doc)
	if err := d.doc.WriteToFile(path); err != nil {
		return fmt.Errorf("write corpus %s: %w", path, err)
	}
	return nil
}

// EntryString serializes a single entry element to its standalone XML text,
// the transportable form handed to pipeline workers.
func EntryString(el *etree.Element) (string, error) {
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	s, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("serialize entry: %w", err)
	}
	return s, nil
}

// ParseEntry parses the transportable form back into an element.
func ParseEntry(s string) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(s); err != nil {
		return nil, fmt.Errorf("parse entry: %w", err)
	}
	if doc.Root() == nil {
		return nil, errors.New("parse entry: no root element")
	}
	root := doc.Root()
	doc.RemoveChild(root)
	return root, nil
}

// Split shards the corpus at inputPath into files of at most perChunk entries
// each, named jmdict_part_<n>.xml under outDir. The root tag and attributes
// are copied onto every chunk. Returns the number of chunk files written.
func Split(inputPath, outDir string, perChunk int) (int, error) {
	if perChunk <= 0 {
		return 0, fmt.Errorf("split: entries per chunk must be positive, got %d", perChunk)
	}

	src, err := Read(inputPath)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("split: create output dir: %w", err)
	}

	entries := src.Entries()
	files := 0
	for start := 0; start < len(entries); start += perChunk {
		end := start + perChunk
		if end > len(entries) {
			end = len(entries)
		}

		chunk := newDocumentLike(src.Root())
		for _, e := range entries[start:end] {
			chunk.Root().AddChild(e.Copy())
		}

		files++
		out := filepath.Join(outDir, fmt.Sprintf("jmdict_part_%d.xml", files))
		if err := chunk.Write(out); err != nil {
			return files - 1, err
		}
	}
	return files, nil
}

// MergeDir concatenates the entries of every *.xml file under inDir into one
// corpus at outPath. Chunk files are visited in lexical discovery order;
// files that fail to parse are logged and skipped. Returns the number of
// entries written.
func MergeDir(inDir, outPath string, log *zap.Logger) (int, error) {
	paths, err := filepath.Glob(filepath.Join(inDir, "*.xml"))
	if err != nil {
		return 0, fmt.Errorf("merge: scan %s: %w", inDir, err)
	}
	if len(paths) == 0 {
		return 0, fmt.Errorf("merge: no xml files under %s", inDir)
	}

	var merged *Document
	total := 0
	for _, p := range paths {
		chunk, err := Read(p)
		if err != nil {
			log.Warn("skipping malformed chunk", zap.String("file", p), zap.Error(err))
			continue
		}
		if merged == nil {
			merged = newDocumentLike(chunk.Root())
		}
		for _, e := range chunk.Entries() {
			merged.Root().AddChild(e.Copy())
			total++
		}
	}
	if merged == nil {
		return 0, fmt.Errorf("merge: no well-formed chunk files under %s", inDir)
	}

	if err := merged.Write(outPath); err != nil {
		return 0, err
	}
	return total, nil
}

// newDocumentLike creates an empty document whose root copies the tag and
// attributes of src.
func newDocumentLike(src *etree.Element) *Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", xmlDeclaration)
	root := doc.CreateElement(src.Tag)
	for _, a := range src.Attr {
		key := a.Key
		if a.Space != "" {
			key = a.Space + ":" + a.Key
		}
		root.CreateAttr(key, a.Value)
	}
	return &Document{doc: doc}
}

func ensureDeclaration(doc *etree.Document) {
	for _, tok := range doc.Child {
		if pi, ok := tok.(*etree.ProcInst); ok && pi.Target == "xml" {
			return
		}
	}
	doc.InsertChildAt(0, etree.NewProcInst("xml", xmlDeclaration))
}
