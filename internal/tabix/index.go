package tabix

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/bgzf/index"
	"github.com/biogo/hts/tabix"

	"github.com/inodb/wgs-report/internal/genome"
)

// formatVCF is the tabix preset code for VCF.
const formatVCF = 2

// Index is a tabix index keyed by normalised chromosome name.
type Index struct {
	tbi   *tabix.Index
	names map[string]string // normalised chromosome -> name in the file
}

func wrapIndex(tbi *tabix.Index) *Index {
	idx := &Index{tbi: tbi, names: make(map[string]string, len(tbi.Names()))}
	for _, n := range tbi.Names() {
		idx.names[genome.NormalizeChrom(n)] = n
	}
	return idx
}

// span is a 0-based half-open interval on one sequence.
type span struct {
	chrom    string
	beg, end int
}

func (s span) RefName() string { return s.chrom }
func (s span) Start() int      { return s.beg }
func (s span) End() int        { return s.end }

// builder accumulates index entries for records written in sorted order.
type builder struct {
	tbi     *tabix.Index
	current string
	seen    map[string]bool
}

func newBuilder() *builder {
	tbi := tabix.New()
	tbi.Format = formatVCF
	tbi.NameColumn = 1
	tbi.BeginColumn = 2
	tbi.EndColumn = 0
	tbi.MetaChar = '#'
	return &builder{tbi: tbi, seen: make(map[string]bool)}
}

// add registers a record spanning [beg, end) (0-based) on chrom, stored
// between virtual offsets vbeg and vend.
func (b *builder) add(chrom string, beg, end int64, vbeg, vend uint64) error {
	if chrom != b.current {
		key := genome.NormalizeChrom(chrom)
		if b.seen[key] {
			return fmt.Errorf("chromosome %s is not contiguous", chrom)
		}
		b.seen[key] = true
		b.current = chrom
	}
	c := bgzf.Chunk{Begin: toOffset(vbeg), End: toOffset(vend)}
	return b.tbi.Add(span{chrom: chrom, beg: int(beg), end: int(end)}, c, true, true)
}

func (b *builder) finish() *Index {
	b.tbi.MergeChunks(index.Adjacent)
	return wrapIndex(b.tbi)
}

func toOffset(voff uint64) bgzf.Offset {
	return bgzf.Offset{File: int64(voff >> 16), Block: uint16(voff)}
}

// less orders virtual offsets.
func less(a, b bgzf.Offset) bool {
	if a.File != b.File {
		return a.File < b.File
	}
	return a.Block < b.Block
}

// firstOffset returns the virtual offset from which a scan for the record at
// 1-based pos on chrom must start, and false if chrom has no records there.
func (idx *Index) firstOffset(chrom string, pos int64) (bgzf.Offset, bool, error) {
	name, ok := idx.names[genome.NormalizeChrom(chrom)]
	if !ok {
		return bgzf.Offset{}, false, nil
	}
	chunks, err := idx.tbi.Chunks(name, int(pos-1), int(pos))
	switch {
	case errors.Is(err, index.ErrNoReference), errors.Is(err, index.ErrInvalid):
		// Past the last indexed window.
		return bgzf.Offset{}, false, nil
	case err != nil:
		return bgzf.Offset{}, false, err
	case len(chunks) == 0:
		return bgzf.Offset{}, false, nil
	}
	first := chunks[0].Begin
	for _, c := range chunks[1:] {
		if less(c.Begin, first) {
			first = c.Begin
		}
	}
	return first, true, nil
}

// Chromosomes returns the sequence names in file order.
func (idx *Index) Chromosomes() []string {
	return append([]string(nil), idx.tbi.Names()...)
}

// WriteTo serialises the index in the tabix binary layout, BGZF-compressed.
func (idx *Index) WriteTo(w io.Writer) error {
	bw := bgzf.NewWriter(w, 1)
	if err := tabix.WriteTo(bw, idx.tbi); err != nil {
		bw.Close()
		return err
	}
	return bw.Close()
}

// ReadIndex loads a .tbi file.
func ReadIndex(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tabix index: %w", err)
	}
	defer f.Close()

	br, err := bgzf.NewReader(f, 1)
	if err != nil {
		return nil, fmt.Errorf("read tabix index %s: %w", path, err)
	}
	defer br.Close()

	tbi, err := tabix.ReadFrom(br)
	if err != nil {
		return nil, fmt.Errorf("read tabix index %s: %w", path, err)
	}
	return wrapIndex(tbi), nil
}
