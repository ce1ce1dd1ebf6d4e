package state

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Deduplicator tracks keys already seen. The Bloom filter answers "never
// seen" without touching the exact set; the exact set resolves its false
// positives, so every key is stored in both.
type Deduplicator struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
	exact  map[string]struct{} // resolves Bloom false positives
	count  int
}

// NewDeduplicator creates a new deduplicator sized for estimatedItems keys.
func NewDeduplicator(estimatedItems int) *Deduplicator {
	if estimatedItems < 256 {
		estimatedItems = 256
	}

	return &Deduplicator{
		filter: bloom.NewWithEstimates(uint(estimatedItems), 0.001),
		exact:  make(map[string]struct{}),
	}
}

// Add records a key and reports whether it was new.
func (d *Deduplicator) Add(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.filter.TestString(key) {
		if _, exists := d.exact[key]; exists {
			return false
		}
	}

	d.filter.AddString(key)
	d.exact[key] = struct{}{}
	d.count++
	return true
}

// HasSeen checks if a key has been recorded.
func (d *Deduplicator) HasSeen(key string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.filter.TestString(key) {
		return false
	}

	_, exists := d.exact[key]
	return exists
}

// Count returns the number of unique keys seen.
func (d *Deduplicator) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.count
}
