// Package tabix reads and writes bgzipped, tab-delimited genome files with a
// tabix (.tbi) companion index, enough to seek straight to the records at a
// queried position. Index encoding and block decompression go through
// biogo/hts; the writer here exists because record indexing needs the
// virtual offset of every line as it is compressed.
package tabix

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// blockSize is the uncompressed payload per BGZF block.
	blockSize = 0xff00
	maxBlock  = 1 << 16
)

// eofBlock is the empty BGZF block that terminates every BGZF file.
var eofBlock = []byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00,
	0x00, 0xff, 0x06, 0x00, 0x42, 0x43, 0x02, 0x00,
	0x1b, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

// Writer compresses a stream into BGZF blocks and reports virtual offsets
// (compressed block start << 16 | offset within the uncompressed block).
type Writer struct {
	w       io.Writer
	buf     []byte
	block   bytes.Buffer
	coffset int64
}

// NewWriter returns a BGZF writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, buf: make([]byte, 0, blockSize)}
}

// VirtualOffset returns the virtual offset of the next byte written.
func (w *Writer) VirtualOffset() uint64 {
	return uint64(w.coffset)<<16 | uint64(len(w.buf))
}

func (w *Writer) Write(p []byte) (int, error) {
	n := 0
	for len(p) > 0 {
		k := min(blockSize-len(w.buf), len(p))
		w.buf = append(w.buf, p[:k]...)
		p = p[k:]
		n += k
		if len(w.buf) == blockSize {
			if err := w.flush(); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

func (w *Writer) flush() error {
	if len(w.buf) == 0 {
		return nil
	}

	w.block.Reset()
	zw := gzip.NewWriter(&w.block)
	// BSIZE is patched in once the compressed length is known.
	zw.Header.Extra = []byte{'B', 'C', 2, 0, 0, 0}
	if _, err := zw.Write(w.buf); err != nil {
		return fmt.Errorf("compress bgzf block: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compress bgzf block: %w", err)
	}

	b := w.block.Bytes()
	if len(b) > maxBlock {
		return fmt.Errorf("bgzf block of %d bytes exceeds %d", len(b), maxBlock)
	}
	binary.LittleEndian.PutUint16(b[16:18], uint16(len(b)-1))

	if _, err := w.w.Write(b); err != nil {
		return fmt.Errorf("write bgzf block: %w", err)
	}
	w.coffset += int64(len(b))
	w.buf = w.buf[:0]
	return nil
}

// Close flushes pending data and writes the EOF marker block. It does not
// close the underlying writer.
func (w *Writer) Close() error {
	if err := w.flush(); err != nil {
		return err
	}
	if _, err := w.w.Write(eofBlock); err != nil {
		return fmt.Errorf("write bgzf eof: %w", err)
	}
	w.coffset += int64(len(eofBlock))
	return nil
}
