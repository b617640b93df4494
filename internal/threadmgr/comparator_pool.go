package threadmgr

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dupimg/dupimg/pkg/api"
)

// comparatorQueueSize bounds each comparator worker's queue. The
// comparator pool has no named size constant in the engine's tunables
// the way the collector pool does, so it reuses
// api.CollectThreadQueueSizeMax scaled up: broadcast fans one
// fingerprint out to every worker at once, so a comparator queue
// drains one design-owner insert plus N-1 compare-only reads per
// item, and wants more headroom than a collector's single-consumer
// queue.
const comparatorQueueSize = api.CollectThreadQueueSizeMax * 4

// comparatorItem is one broadcast fingerprint tagged with the id of
// the single worker designated to insert it into its bucket; every
// other worker only compares against it.
type comparatorItem struct {
	data  *api.ImageData
	owner int
}

// ComparatorPool runs accept(d, verdict) for every fingerprint handed
// to it by Broadcast, once per worker, with verdict telling that
// worker whether it is the one that must insert d into its own bucket
// set (DoOwn) or only compare against it (DoOther).
type ComparatorPool struct {
	queues []chan comparatorItem
	stopCh chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
	next   uint64

	accept func(d *api.ImageData, verdict Verdict)
}

// NewComparatorPool returns a ComparatorPool with workerCount workers.
// Per spec §4.9, the default worker count is the full CPU count when
// the collection is large or transform search is enabled, else half
// the CPU count; callers compute that and pass it in rather than this
// constructor guessing at collection size.
func NewComparatorPool(workerCount int, accept func(d *api.ImageData, verdict Verdict)) *ComparatorPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	if workerCount < 1 {
		workerCount = 1
	}
	p := &ComparatorPool{
		queues: make([]chan comparatorItem, workerCount),
		stopCh: make(chan struct{}),
		accept: accept,
	}
	for i := range p.queues {
		p.queues[i] = make(chan comparatorItem, comparatorQueueSize)
	}
	return p
}

// Start launches every worker goroutine.
func (p *ComparatorPool) Start() {
	for id, q := range p.queues {
		p.wg.Add(1)
		go p.run(id, q)
	}
}

func (p *ComparatorPool) run(id int, q chan comparatorItem) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopCh:
			return
		case item, ok := <-q:
			if !ok {
				return
			}
			verdict := DoOther
			if item.owner == id {
				verdict = DoOwn
			}
			p.accept(item.data, verdict)
		case <-time.After(api.DefaultThreadSleepInterval):
		}
	}
}

// Broadcast pushes d into every worker's queue, round-robin assigning
// exactly one worker as the owner that will insert it. Blocks (subject
// to Stop) on any queue that is currently full, so a slow worker
// applies backpressure to the whole pool rather than silently
// dropping comparisons.
func (p *ComparatorPool) Broadcast(d *api.ImageData) {
	owner := int(atomic.AddUint64(&p.next, 1)-1) % len(p.queues)
	item := comparatorItem{data: d, owner: owner}
	for _, q := range p.queues {
		select {
		case q <- item:
		case <-p.stopCh:
			return
		}
	}
}

// Stop cooperatively cancels the pool.
func (p *ComparatorPool) Stop() {
	p.once.Do(func() { close(p.stopCh) })
}

// CloseAndWait closes every worker queue and blocks until all workers
// have drained and exited.
func (p *ComparatorPool) CloseAndWait() {
	for _, q := range p.queues {
		close(q)
	}
	p.wg.Wait()
}
