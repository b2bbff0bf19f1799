package tabix

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Build writes a bgzipped copy of the position-sorted VCF at src to dst and
// its index to dst + ".tbi". src may be plain or gzip-compressed.
func Build(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	r, err := maybeGzip(in)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	idx, err := compress(r, out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return fmt.Errorf("bgzip %s: %w", src, err)
	}

	tbi, err := os.Create(dst + ".tbi")
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	err = idx.WriteTo(tbi)
	if cerr := tbi.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst + ".tbi")
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

func maybeGzip(f *os.File) (io.Reader, error) {
	br := bufio.NewReader(f)
	head, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if len(head) == 2 && head[0] == 0x1f && head[1] == 0x8b {
		return gzip.NewReader(br)
	}
	return br, nil
}

// compress copies VCF text into BGZF blocks while indexing each record.
func compress(r io.Reader, w io.Writer) (*Index, error) {
	bw := NewWriter(w)
	b := newBuilder()
	br := bufio.NewReader(r)

	var (
		lastChrom string
		lastPos   int64
		lineNo    int
	)
	for {
		line, err := br.ReadString('\n')
		if err != nil && !(err == io.EOF && line != "") {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		lineNo++
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		if line[0] == '#' {
			if _, err := io.WriteString(bw, line+"\n"); err != nil {
				return nil, err
			}
			continue
		}

		chrom, pos, err := position(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if chrom == lastChrom && pos < lastPos {
			return nil, fmt.Errorf("line %d: records not sorted by position", lineNo)
		}
		lastChrom, lastPos = chrom, pos

		refLen := int64(1)
		if fields := strings.SplitN(line, "\t", 5); len(fields) >= 4 && len(fields[3]) > 0 {
			refLen = int64(len(fields[3]))
		}

		vbeg := bw.VirtualOffset()
		if _, err := io.WriteString(bw, line+"\n"); err != nil {
			return nil, err
		}
		if err := b.add(chrom, pos-1, pos-1+refLen, vbeg, bw.VirtualOffset()); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}

	if err := bw.Close(); err != nil {
		return nil, err
	}
	return b.finish(), nil
}
