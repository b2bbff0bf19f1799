package tabix

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/biogo/hts/bgzf"

	"github.com/inodb/wgs-report/internal/genome"
)

// Reader answers point queries against a bgzipped file through its index.
// A Reader holds an open file handle until Close. Queries are serialised.
type Reader struct {
	mu  sync.Mutex
	f   *os.File
	bg  *bgzf.Reader
	idx *Index
}

// Open opens a bgzipped data file and its .tbi index. An empty indexPath
// defaults to path + ".tbi".
func Open(path, indexPath string) (*Reader, error) {
	if indexPath == "" {
		indexPath = path + ".tbi"
	}
	idx, err := ReadIndex(indexPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	bg, err := bgzf.NewReader(f, 1)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Reader{f: f, bg: bg, idx: idx}, nil
}

// Index returns the loaded index.
func (r *Reader) Index() *Index {
	return r.idx
}

// Query returns the raw lines whose first column names chrom and whose
// second column equals the 1-based pos. The scan starts at the first
// candidate block and stops at the first record past pos.
func (r *Reader) Query(chrom string, pos int64) ([]string, error) {
	off, ok, err := r.idx.firstOffset(chrom, pos)
	if err != nil {
		return nil, fmt.Errorf("query %s:%d: %w", chrom, pos, err)
	}
	if !ok {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.bg.Seek(off); err != nil {
		return nil, fmt.Errorf("seek %s: %w", r.f.Name(), err)
	}
	br := bufio.NewReader(r.bg)

	want := genome.NormalizeChrom(chrom)
	var lines []string
	for {
		line, err := br.ReadString('\n')
		if err != nil && !(err == io.EOF && line != "") {
			if err == io.EOF {
				return lines, nil
			}
			return nil, fmt.Errorf("scan %s: %w", r.f.Name(), err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" || line[0] == '#' {
			continue
		}

		c, p, err := position(line)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.f.Name(), err)
		}
		if genome.NormalizeChrom(c) != want || p > pos {
			return lines, nil
		}
		if p == pos {
			lines = append(lines, line)
		}
	}
}

// Close releases the file handle.
func (r *Reader) Close() error {
	err := r.bg.Close()
	if ferr := r.f.Close(); err == nil {
		err = ferr
	}
	return err
}

// position extracts the sequence name and 1-based position columns.
func position(line string) (string, int64, error) {
	fields := strings.SplitN(line, "\t", 3)
	if len(fields) < 3 {
		return "", 0, fmt.Errorf("record has fewer than 3 columns: %q", line)
	}
	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid position %q", fields[1])
	}
	return fields[0], pos, nil
}
