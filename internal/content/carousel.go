package content

import (
	"context"
	"sync"
	"time"
)

// PageSize is the number of testimonials shown at once.
const PageSize = 2

// DefaultInterval is how often the carousel advances.
const DefaultInterval = 5 * time.Second

// NextIndex returns the start of the page after i, wrapping to 0 once it
// passes the end of n items.
func NextIndex(i, n int) int {
	next := i + PageSize
	if next >= n {
		return 0
	}
	return next
}

// Carousel cycles through testimonials two at a time.
type Carousel struct {
	mu    sync.RWMutex
	items []Testimonial
	index int
}

// NewCarousel starts at index 0.
func NewCarousel(items []Testimonial) *Carousel {
	return &Carousel{items: items}
}

// Len returns the number of testimonials.
func (c *Carousel) Len() int {
	return len(c.items)
}

// Index returns the current page start.
func (c *Carousel) Index() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index
}

// Window returns up to PageSize testimonials starting at i. Out-of-range
// indexes yield nil.
func (c *Carousel) Window(i int) []Testimonial {
	if i < 0 || i >= len(c.items) {
		return nil
	}
	end := i + PageSize
	if end > len(c.items) {
		end = len(c.items)
	}
	out := make([]Testimonial, end-i)
	copy(out, c.items[i:end])
	return out
}

// Current returns the current index and its window.
func (c *Carousel) Current() (int, []Testimonial) {
	i := c.Index()
	return i, c.Window(i)
}

// Advance moves to the next page and returns its index.
func (c *Carousel) Advance() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = NextIndex(c.index, len(c.items))
	return c.index
}

// Run advances the carousel every interval until ctx is done.
func (c *Carousel) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Advance()
		}
	}
}
