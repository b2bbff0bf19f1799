package tabix

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biogo/hts/bgzf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vcfHeader = "##fileformat=VCFv4.1\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n"

func buildFromString(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "in.vcf")
	require.NoError(t, os.WriteFile(src, []byte(content), 0o644))
	dst := filepath.Join(dir, "out.vcf.gz")
	require.NoError(t, Build(src, dst))
	return dst
}

func TestWriter_ProducesValidGzip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	payload := strings.Repeat("7\t140753336\t13961\tA\tT\t.\t.\tCLNSIG=Pathogenic\n", 5000)
	_, err := io.WriteString(w, payload)
	require.NoError(t, err)
	assert.NotZero(t, w.VirtualOffset()>>16, "payload should span several blocks")
	require.NoError(t, w.Close())

	assert.True(t, bytes.HasSuffix(buf.Bytes(), eofBlock))

	zr, err := gzip.NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	got, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))

	bg, err := bgzf.NewReader(bytes.NewReader(buf.Bytes()), 1)
	require.NoError(t, err)
	defer bg.Close()
	got, err = io.ReadAll(bg)
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))
}

func TestBuildAndQuery_ClinVar(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "clinvar.vcf.gz")
	require.NoError(t, Build(filepath.Join("..", "..", "testdata", "clinvar_small.vcf"), dst))

	r, err := Open(dst, "")
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, []string{"7", "12", "17"}, r.Index().Chromosomes())

	tests := []struct {
		chrom string
		pos   int64
		want  []string
	}{
		{"7", 140753336, []string{"13961", "376069"}},
		{"chr7", 140753337, []string{"1030822"}},
		{"7", 140753335, nil},
		{"12", 25245350, []string{"12583"}},
		{"chr17", 7674220, []string{"12347"}},
		{"17", 7674221, nil},
		{"1", 100, nil},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s:%d", tt.chrom, tt.pos), func(t *testing.T) {
			lines, err := r.Query(tt.chrom, tt.pos)
			require.NoError(t, err)
			var ids []string
			for _, l := range lines {
				ids = append(ids, strings.Split(l, "\t")[2])
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestBuildAndQuery_ManyBlocks(t *testing.T) {
	var b strings.Builder
	b.WriteString(vcfHeader)
	// Two chromosomes, records every 37 bases, several BGZF blocks and many
	// linear-index windows.
	for _, chrom := range []string{"1", "2"} {
		for i := 0; i < 20000; i++ {
			pos := int64(1000 + i*37)
			fmt.Fprintf(&b, "%s\t%d\tid%s_%d\tA\tG\t.\t.\tCLNSIG=Benign;PAD=%s\n",
				chrom, pos, chrom, i, strings.Repeat("x", 20))
		}
	}
	dst := buildFromString(t, b.String())

	r, err := Open(dst, dst+".tbi")
	require.NoError(t, err)
	defer r.Close()

	for _, chrom := range []string{"1", "2"} {
		for _, i := range []int{0, 1, 441, 442, 9999, 19999} {
			pos := int64(1000 + i*37)
			lines, err := r.Query(chrom, pos)
			require.NoError(t, err)
			require.Len(t, lines, 1, "%s:%d", chrom, pos)
			assert.Contains(t, lines[0], fmt.Sprintf("id%s_%d\t", chrom, i))

			lines, err = r.Query(chrom, pos+1)
			require.NoError(t, err)
			assert.Empty(t, lines)
		}
	}

	lines, err := r.Query("2", 999)
	require.NoError(t, err)
	assert.Empty(t, lines)

	lines, err = r.Query("2", 10_000_000)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestBuild_RejectsUnsorted(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.vcf")
	content := vcfHeader + "1\t200\t.\tA\tG\t.\t.\t.\n1\t100\t.\tA\tG\t.\t.\t.\n"
	require.NoError(t, os.WriteFile(src, []byte(content), 0o644))

	err := Build(src, filepath.Join(dir, "out.vcf.gz"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not sorted")
	_, statErr := os.Stat(filepath.Join(dir, "out.vcf.gz"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestBuild_RejectsSplitChromosome(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.vcf")
	content := vcfHeader + "1\t100\t.\tA\tG\t.\t.\t.\n2\t100\t.\tA\tG\t.\t.\t.\n1\t300\t.\tA\tG\t.\t.\t.\n"
	require.NoError(t, os.WriteFile(src, []byte(content), 0o644))

	err := Build(src, filepath.Join(dir, "out.vcf.gz"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not contiguous")
}

func TestReadIndex_NotTabix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tbi")
	var buf bytes.Buffer
	w := NewWriter(&buf)
	_, err := w.Write([]byte("BAI\x01garbage"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	_, err = ReadIndex(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read tabix index")
}

func TestBuildAndQuery_Headerless(t *testing.T) {
	// The first record sits at virtual offset zero.
	dst := buildFromString(t,
		"1\t100\trs1\tA\tT\t.\t.\t.\n"+
			"1\t200\trs2\tC\tG\t.\t.\t.\n")

	r, err := Open(dst, "")
	require.NoError(t, err)
	defer r.Close()

	lines, err := r.Query("1", 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"1\t100\trs1\tA\tT\t.\t.\t."}, lines)

	lines, err = r.Query("chr1", 200)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "rs2")
}

func TestReadIndex_RoundTrip(t *testing.T) {
	dst := buildFromString(t, vcfHeader+
		"chr3\t10\t.\tA\tT\t.\t.\t.\n"+
		"chrX\t20\t.\tA\tT\t.\t.\t.\n")

	idx, err := ReadIndex(dst + ".tbi")
	require.NoError(t, err)
	assert.Equal(t, []string{"chr3", "chrX"}, idx.Chromosomes())

	_, ok, err := idx.firstOffset("X", 20)
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = idx.firstOffset("5", 20)
	require.NoError(t, err)
	assert.False(t, ok)
}
