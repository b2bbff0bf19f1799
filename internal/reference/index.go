package reference

import (
	"slices"
	"sort"
	"strings"

	"github.com/inodb/wgs-report/internal/genome"
)

// NormalizeSymbol returns the lookup key for a gene symbol.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// SymbolIndex maps gene symbols to records in load order. A symbol may
// legitimately map to several records (one per panel or group).
type SymbolIndex[T any] struct {
	bySymbol map[string][]T
}

// NewSymbolIndex indexes items by the symbol returned from key. Items with
// an empty symbol are not indexed.
func NewSymbolIndex[T any](items []T, key func(T) string) *SymbolIndex[T] {
	idx := &SymbolIndex[T]{bySymbol: make(map[string][]T)}
	for _, it := range items {
		s := NormalizeSymbol(key(it))
		if s == "" {
			continue
		}
		idx.bySymbol[s] = append(idx.bySymbol[s], it)
	}
	return idx
}

// Lookup returns the records for symbol. The returned slice is a copy.
func (x *SymbolIndex[T]) Lookup(symbol string) []T {
	return slices.Clone(x.bySymbol[NormalizeSymbol(symbol)])
}

// Len returns the number of distinct symbols.
func (x *SymbolIndex[T]) Len() int {
	return len(x.bySymbol)
}

// IntervalIndex provides O(log n + k) containment queries per chromosome
// using a sorted slice with a prefix-max array. Records are loaded once and
// never modified after build.
type IntervalIndex[T any] struct {
	byChrom map[string]*intervals[T]
}

type intervals[T any] struct {
	items  []interval[T]
	maxEnd []int64 // maxEnd[i] = max(end) for items[:i+1]
}

type interval[T any] struct {
	start, end int64
	ord        int // load order
	item       T
}

// NewIntervalIndex indexes items by the region returned from span.
func NewIntervalIndex[T any](items []T, span func(T) genome.Region) *IntervalIndex[T] {
	grouped := make(map[string][]interval[T])
	for i, it := range items {
		r := span(it)
		chrom := genome.NormalizeChrom(r.Chrom)
		grouped[chrom] = append(grouped[chrom], interval[T]{start: r.Start, end: r.End, ord: i, item: it})
	}

	idx := &IntervalIndex[T]{byChrom: make(map[string]*intervals[T], len(grouped))}
	for chrom, ivs := range grouped {
		sort.SliceStable(ivs, func(i, j int) bool {
			return ivs[i].start < ivs[j].start
		})

		// Prefix max over ends, so the backwards scan can stop as soon as
		// nothing at or before i reaches pos.
		maxEnd := make([]int64, len(ivs))
		maxEnd[0] = ivs[0].end
		for i := 1; i < len(ivs); i++ {
			maxEnd[i] = max(ivs[i].end, maxEnd[i-1])
		}
		idx.byChrom[chrom] = &intervals[T]{items: ivs, maxEnd: maxEnd}
	}
	return idx
}

// Find returns every record whose [Start, End] contains pos on chrom, in
// load order.
func (x *IntervalIndex[T]) Find(chrom string, pos int64) []T {
	t := x.byChrom[genome.NormalizeChrom(chrom)]
	if t == nil {
		return nil
	}

	// hi is the first index with start > pos; candidates are [0, hi).
	hi := sort.Search(len(t.items), func(i int) bool {
		return t.items[i].start > pos
	})

	var hits []interval[T]
	for i := hi - 1; i >= 0; i-- {
		// If maxEnd[i] < pos, no interval from 0..i can contain pos.
		if t.maxEnd[i] < pos {
			break
		}
		if t.items[i].end >= pos {
			hits = append(hits, t.items[i])
		}
	}
	if len(hits) == 0 {
		return nil
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].ord < hits[j].ord })
	out := make([]T, len(hits))
	for i, h := range hits {
		out[i] = h.item
	}
	return out
}
