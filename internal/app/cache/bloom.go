package cache

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Filter is a concurrency-safe bloom filter over stored shortlink keys. It
// sits in front of redis and Postgres so lookups for links that were never
// created skip both round trips. False positives fall through to the cache
// and repository; false negatives cannot occur as long as every created
// shortlink is added.
type Filter struct {
	mu       sync.RWMutex
	filter   *bloom.BloomFilter
	capacity uint
	fpRate   float64
}

// NewFilter sizes a bloom filter for the expected number of shortlinks and
// the acceptable false-positive rate.
func NewFilter(capacity uint, fpRate float64) *Filter {
	if capacity == 0 {
		capacity = 100000
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = 0.01
	}
	return &Filter{
		filter:   bloom.NewWithEstimates(capacity, fpRate),
		capacity: capacity,
		fpRate:   fpRate,
	}
}

// Add records a shortlink key.
func (f *Filter) Add(short string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter.AddString(short)
}

// MightContain reports whether short may exist. A false return is
// authoritative: the shortlink was never added.
func (f *Filter) MightContain(short string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.TestString(short)
}

// Reset replaces the filter contents with the given keys. Used at startup
// and by the periodic refresher, since bloom filters cannot forget deleted
// entries in place.
func (f *Filter) Reset(shorts []string) {
	fresh := bloom.NewWithEstimates(f.capacity, f.fpRate)
	for _, s := range shorts {
		fresh.AddString(s)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter = fresh
}

// ApproximatedSize estimates how many keys have been added.
func (f *Filter) ApproximatedSize() uint32 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.ApproximatedSize()
}
