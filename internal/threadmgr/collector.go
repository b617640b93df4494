// Package threadmgr implements the thread manager of spec §4.9: a
// collector worker pool and a comparator worker pool, each worker
// driving its own bounded queue, communicating with the producer and
// each other only through the {DoOwn, DoOther, Wait, Finish} verdicts
// a queue poll yields. Grounded on internal/scanner/worker_pool.go's
// channel-plus-WaitGroup pool idiom, generalized from a generic
// job/result pool into the engine's two purpose-built pools.
package threadmgr

import (
	"runtime"
	"sync"
	"time"

	"github.com/dupimg/dupimg/pkg/api"
)

// CollectorPool runs fill(d) on every fingerprint handed to it by
// Dispatch, then forwards the completed pointer to onDone — normally
// the comparator pool's Broadcast.
type CollectorPool struct {
	queues []chan *api.ImageData
	stopCh chan struct{}
	once   sync.Once
	wg     sync.WaitGroup

	fill   func(*api.ImageData)
	onDone func(*api.ImageData)
}

// NewCollectorPool returns a CollectorPool with workerCount workers
// (defaulting to cpus-1, floored at 1), each with a queue bounded by
// api.CollectThreadQueueSizeMax.
func NewCollectorPool(workerCount int, fill func(*api.ImageData), onDone func(*api.ImageData)) *CollectorPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU() - 1
	}
	if workerCount < 1 {
		workerCount = 1
	}
	p := &CollectorPool{
		queues: make([]chan *api.ImageData, workerCount),
		stopCh: make(chan struct{}),
		fill:   fill,
		onDone: onDone,
	}
	for i := range p.queues {
		p.queues[i] = make(chan *api.ImageData, api.CollectThreadQueueSizeMax)
	}
	return p
}

// Start launches every worker goroutine.
func (p *CollectorPool) Start() {
	for _, q := range p.queues {
		p.wg.Add(1)
		go p.run(q)
	}
}

// run is the worker's queue-poll loop: a poll either finds work
// (DoOwn), finds the queue closed and drained (Finish), or finds it
// empty and sleeps for api.DefaultThreadSleepInterval (Wait) before
// polling again.
func (p *CollectorPool) run(q chan *api.ImageData) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopCh:
			return
		case d, ok := <-q:
			if !ok {
				return
			}
			p.fill(d)
			p.onDone(d)
		case <-time.After(api.DefaultThreadSleepInterval):
		}
	}
}

// Dispatch hands d to whichever worker currently has the shortest
// queue, busy-waiting (subject to Stop) if every queue is saturated at
// api.CollectThreadQueueSizeMax.
func (p *CollectorPool) Dispatch(d *api.ImageData) {
	for {
		idx, shortest := -1, -1
		for i, q := range p.queues {
			if n := len(q); n < cap(q) && (shortest == -1 || n < shortest) {
				idx, shortest = i, n
			}
		}
		if idx >= 0 {
			select {
			case p.queues[idx] <- d:
				return
			case <-p.stopCh:
				return
			}
		}
		select {
		case <-p.stopCh:
			return
		case <-time.After(api.DefaultThreadSleepInterval):
		}
	}
}

// Stop cooperatively cancels the pool: workers exit at their next
// queue poll and Dispatch stops feeding.
func (p *CollectorPool) Stop() {
	p.once.Do(func() { close(p.stopCh) })
}

// CloseAndWait closes every worker queue and blocks until all workers
// have drained and exited.
func (p *CollectorPool) CloseAndWait() {
	for _, q := range p.queues {
		close(q)
	}
	p.wg.Wait()
}
