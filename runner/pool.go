package runner

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/notargets/HeatKernel/partitions"
)

// chunk is one worker's share of a parallel-for
type chunk struct {
	lo, hi int
	body   func(lo, hi int)
}

// Pool is a fixed set of worker goroutines executing a parallel-for over a
// flattened index range. Each call to For splits the range statically into
// one contiguous chunk per worker and returns only after every chunk has
// finished, so For is the barrier. A Pool is not safe for concurrent use by
// multiple callers.
type Pool struct {
	workers int
	tasks   []chan chunk

	pending sync.WaitGroup // chunks in flight for the current For
	exited  sync.WaitGroup // worker goroutines still running
	closed  bool

	// Layout of the most recent range size; steps reuse the same n
	layout *partitions.Layout
}

// NewPool starts workers goroutines. workers <= 0 selects GOMAXPROCS.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		workers: workers,
		tasks:   make([]chan chunk, workers),
	}
	p.exited.Add(workers)
	for w := 0; w < workers; w++ {
		p.tasks[w] = make(chan chunk, 1)
		go p.work(p.tasks[w])
	}
	return p
}

func (p *Pool) work(tasks <-chan chunk) {
	defer p.exited.Done()
	for c := range tasks {
		c.body(c.lo, c.hi)
		p.pending.Done()
	}
}

// Workers returns the number of worker goroutines
func (p *Pool) Workers() int {
	return p.workers
}

// Layout returns the static partition For uses for a range of size n
func (p *Pool) Layout(n int) *partitions.Layout {
	if p.layout == nil || p.layout.Total != n {
		p.layout = partitions.NewLayout(n, p.workers)
	}
	return p.layout
}

// For calls body(lo, hi) for disjoint contiguous chunks covering [0, n),
// one per worker, and waits for all of them.
func (p *Pool) For(n int, body func(lo, hi int)) {
	if p.closed {
		panic("runner: For called on closed Pool")
	}
	if n <= 0 {
		return
	}

	layout := p.Layout(n)
	for _, part := range layout.Partitions {
		if part.Count == 0 {
			continue
		}
		p.pending.Add(1)
		p.tasks[part.ID] <- chunk{lo: part.Start, hi: part.End(), body: body}
	}
	p.pending.Wait()
}

// Close stops the workers and waits for them to exit
func (p *Pool) Close() {
	if p.closed {
		return
	}
	p.closed = true
	for _, ch := range p.tasks {
		close(ch)
	}
	p.exited.Wait()
}

func (p *Pool) String() string {
	return fmt.Sprintf("Pool(workers=%d)", p.workers)
}
