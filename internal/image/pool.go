package image

import (
	"sync"

	"github.com/gogpu/gputypes"
)

// Pool is a thread-safe pool for reusing Buf instances.
//
// Buffers are grouped by dimensions and format. The software bloom device
// returns released pyramid levels here, so a resolution that oscillates
// between two values reuses its old buffers instead of allocating.
type Pool struct {
	mu      sync.Mutex
	buckets map[poolKey][]*Buf
	maxSize int // max buffers per bucket
}

type poolKey struct {
	width  int
	height int
	format gputypes.TextureFormat
}

// NewPool creates a pool retaining at most maxPerBucket buffers of each
// size and format. Zero or negative means unlimited.
func NewPool(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[poolKey][]*Buf),
		maxSize: maxPerBucket,
	}
}

// Get returns a cleared buffer from the pool or allocates a new one.
func (p *Pool) Get(width, height int, format gputypes.TextureFormat) (*Buf, error) {
	key := poolKey{width: width, height: height, format: format}

	p.mu.Lock()
	bucket := p.buckets[key]
	if n := len(bucket); n > 0 {
		buf := bucket[n-1]
		p.buckets[key] = bucket[:n-1]
		p.mu.Unlock()

		buf.Clear()
		return buf, nil
	}
	p.mu.Unlock()

	return NewBuf(width, height, format)
}

// Put returns buf to the pool. Buffers beyond the bucket limit are dropped.
func (p *Pool) Put(buf *Buf) {
	if buf == nil {
		return
	}
	key := poolKey{width: buf.width, height: buf.height, format: buf.format}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[key]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[key] = append(bucket, buf)
}

// Len returns the number of pooled buffers across all buckets.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, bucket := range p.buckets {
		n += len(bucket)
	}
	return n
}
