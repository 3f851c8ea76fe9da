package heap

import (
	"github.com/rs/zerolog"

	"ownkit/infra/invariant"
)

// DefaultFreeRing is the free ring size used when none is configured.
const DefaultFreeRing = 64

// Stats counts block lifecycle events for one arena.
type Stats struct {
	Allocs uint64
	Frees  uint64
	Reused uint64
	Live   uint64
}

type config struct {
	ringSize uint64
	metrics  *Metrics
	logger   zerolog.Logger
}

// Option configures an Arena.
type Option func(*config)

// WithFreeRing sets the number of freed blocks kept for reuse.
// size must be a power of two.
func WithFreeRing(size uint64) Option {
	return func(c *config) { c.ringSize = size }
}

// WithMetrics reports lifecycle events to m.
func WithMetrics(m *Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// Arena hands out blocks and recycles freed ones.
//
// A nil *Arena is valid: it allocates standalone blocks and drops them on
// free without recycling or accounting.
type Arena[T any] struct {
	ring    *freeRing[T]
	stats   Stats
	metrics *Metrics
	logger  zerolog.Logger
}

// NewArena returns an empty arena.
func NewArena[T any](opts ...Option) *Arena[T] {
	cfg := config{
		ringSize: DefaultFreeRing,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Arena[T]{
		ring:    newFreeRing[T](cfg.ringSize),
		metrics: cfg.metrics,
		logger:  cfg.logger,
	}
}

// Alloc returns a live block holding value with a count of 1.
func (a *Arena[T]) Alloc(value T) *Block[T] {
	if a == nil {
		b := &Block[T]{}
		b.init(value)
		return b
	}

	b := a.ring.Pop()
	if b != nil {
		if b.live {
			invariant.Violation("heap: free ring held live block (gen %d)", b.gen)
		}
		a.stats.Reused++
		if a.metrics != nil {
			a.metrics.reused.Inc()
		}
	} else {
		b = &Block[T]{}
	}
	b.init(value)

	a.stats.Allocs++
	a.stats.Live++
	if a.metrics != nil {
		a.metrics.allocated.Inc()
		a.metrics.live.Inc()
	}
	return b
}

// Free destroys the payload of b and releases the block. Freeing a block
// that is not live is fatal.
func (a *Arena[T]) Free(b *Block[T]) {
	drop(a.release(b))
}

// Unwrap releases b like Free but moves the payload out to the caller
// instead of destroying it.
func (a *Arena[T]) Unwrap(b *Block[T]) T {
	return a.release(b)
}

func (a *Arena[T]) release(b *Block[T]) T {
	if !b.live {
		invariant.Violation("heap: double free of block (gen %d)", b.gen)
	}
	value := b.retire()
	if a == nil {
		return value
	}

	if a.stats.Live == 0 {
		invariant.Violation("heap: free with no live blocks (gen %d)", b.gen)
	}
	a.stats.Frees++
	a.stats.Live--
	if a.metrics != nil {
		a.metrics.freed.Inc()
		a.metrics.live.Dec()
	}

	if !a.ring.Push(b) {
		a.logger.Debug().Int("cap", a.ring.Cap()).Msg("free ring full, releasing block")
	}
	return value
}

// Stats returns a snapshot of the arena's counters.
func (a *Arena[T]) Stats() Stats {
	if a == nil {
		return Stats{}
	}
	return a.stats
}

// Pooled is the number of freed blocks waiting for reuse.
func (a *Arena[T]) Pooled() int {
	if a == nil {
		return 0
	}
	return a.ring.Len()
}

// Drain empties the free ring, leaving its blocks to the garbage collector.
func (a *Arena[T]) Drain() {
	if a == nil {
		return
	}
	n := 0
	for a.ring.Pop() != nil {
		n++
	}
	a.logger.Debug().Int("blocks", n).Msg("drained free ring")
}
