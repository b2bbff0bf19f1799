package genome

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeChrom(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"chr7", "7"},
		{"7", "7"},
		{"CHR12", "12"},
		{"chrX", "X"},
		{"x", "X"},
		{"chrMT", "M"},
		{"MT", "M"},
		{" chr1 ", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeChrom(tt.in))
		})
	}
}

func TestParseLocus(t *testing.T) {
	l, err := ParseLocus("chr7:140753336")
	require.NoError(t, err)
	assert.Equal(t, Locus{Chrom: "7", Pos: 140753336}, l)
	assert.Equal(t, "chr7:140753336", l.String())

	l, err = ParseLocus("12:25,245,350")
	require.NoError(t, err)
	assert.Equal(t, int64(25245350), l.Pos)

	for _, bad := range []string{"", "chr7", ":12", "chr7:abc", "chr7:0", "chr7:-5"} {
		_, err := ParseLocus(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseRegion(t *testing.T) {
	r, err := ParseRegion("chr1:1000-2000")
	require.NoError(t, err)
	assert.Equal(t, Region{Chrom: "1", Start: 1000, End: 2000}, r)
	assert.True(t, r.Contains(1000))
	assert.True(t, r.Contains(2000))
	assert.False(t, r.Contains(2001))

	r, err = ParseRegion("chrX:55")
	require.NoError(t, err)
	assert.Equal(t, Region{Chrom: "X", Start: 55, End: 55}, r)

	_, err = ParseRegion("chr1:2000-1000")
	assert.Error(t, err)
}

func TestLocus_IsZero(t *testing.T) {
	assert.True(t, Locus{}.IsZero())
	assert.Equal(t, "", Locus{}.String())
	assert.False(t, Locus{Chrom: "1", Pos: 1}.IsZero())
}
