// Package bloom de-duplicates crawl URLs with Bloom filters.
package bloom

import (
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
)

// DefaultFalsePositiveRate sizes filters built by Unique. At this rate a
// source with a few thousand URLs is practically never affected.
const DefaultFalsePositiveRate = 1e-7

// Filter wraps a Bloom filter for URL deduplication.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected items
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(max(n, 1), fpRate),
	}
}

// Add adds a URL to the filter.
func (f *Filter) Add(url string) {
	f.f.AddString(url)
}

// Test returns true if the URL might be in the filter.
// False positives are possible; false negatives are not.
func (f *Filter) Test(url string) bool {
	return f.f.TestString(url)
}

// TestAndAdd reports whether url might already be in the filter and adds it.
func (f *Filter) TestAndAdd(url string) bool {
	return f.f.TestAndAddString(url)
}

// EstimatedCount returns the approximate number of items in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}

// Unique returns urls without repeats, keeping first occurrences in order.
// URLs differing only by fragment or a trailing slash are repeats. Blank
// entries are dropped.
func Unique(urls []string) []string {
	seen := NewFilter(uint(len(urls)), DefaultFalsePositiveRate)
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if seen.TestAndAdd(Key(u)) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// Key normalizes a URL for deduplication.
func Key(url string) string {
	if i := strings.Index(url, "#"); i != -1 {
		url = url[:i]
	}
	return strings.TrimSuffix(url, "/")
}
