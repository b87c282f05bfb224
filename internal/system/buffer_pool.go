package system

import (
	"image"
	"sync"
	"sync/atomic"
)

// FramePool recycles frame buffers per frame size. Every worker and every
// scene layer draws into a pooled buffer, so a render allocates roughly one
// batch worth of frames regardless of its length.
type FramePool struct {
	mu        sync.Mutex
	sizes     map[image.Rectangle]*sync.Pool
	allocated atomic.Int64
}

// NewFramePool returns an empty pool.
func NewFramePool() *FramePool {
	return &FramePool{sizes: make(map[image.Rectangle]*sync.Pool)}
}

func (p *FramePool) poolFor(rect image.Rectangle, create bool) *sync.Pool {
	p.mu.Lock()
	defer p.mu.Unlock()
	sp, ok := p.sizes[rect]
	if !ok && create {
		sp = &sync.Pool{New: func() any {
			p.allocated.Add(1)
			return image.NewRGBA(rect)
		}}
		p.sizes[rect] = sp
	}
	return sp
}

// Get returns a fully transparent buffer with bounds rect.
func (p *FramePool) Get(rect image.Rectangle) *image.RGBA {
	img := p.poolFor(rect, true).Get().(*image.RGBA)
	clear(img.Pix)
	return img
}

// Put hands a buffer back. Buffers the pool never handed out a size for
// are dropped.
func (p *FramePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	if sp := p.poolFor(img.Rect, false); sp != nil {
		sp.Put(img)
	}
}

// Allocated counts the buffers the pool has created so far.
func (p *FramePool) Allocated() int64 {
	return p.allocated.Load()
}
