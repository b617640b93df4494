package threadmgr

import (
	"runtime"

	"github.com/dupimg/dupimg/pkg/api"
)

// ComparatorWorkerCount picks the comparator pool's default worker
// count per spec §4.9: every CPU when the collection is large enough
// that comparison dominates, or transform search (rotations/mirrors)
// multiplies the work per pair; half the CPUs otherwise, so the
// collector pool still gets a fair share of cores on small runs.
func ComparatorWorkerCount(searchedImageCount int, largeCollectionThreshold int, transformsEnabled bool) int {
	cpus := runtime.NumCPU()
	if transformsEnabled || searchedImageCount >= largeCollectionThreshold {
		return cpus
	}
	half := cpus / 2
	if half < 1 {
		half = 1
	}
	return half
}

// CollectorWorkerCount picks the collector pool's default worker
// count: all CPUs but one, left for the comparator pool and the main
// producer goroutine, floored at 1.
func CollectorWorkerCount() int {
	n := runtime.NumCPU() - 1
	if n < 1 {
		n = 1
	}
	return n
}

// Manager owns the collector and comparator pools and the single path
// a completed collection takes from one into the other: Dispatch a
// fingerprint job into the collector pool, let fill() run, then
// Broadcast the filled result into the comparator pool.
type Manager struct {
	Collector  *CollectorPool
	Comparator *ComparatorPool
}

// NewManager wires a CollectorPool whose onDone callback feeds
// directly into a ComparatorPool's Broadcast, matching spec §4.9's "if
// nothing needs filling, forward straight to the comparator pool"
// shortcut: callers with nothing left to fill can call
// m.Comparator.Broadcast directly instead of going through
// m.Collector.Dispatch.
//
// fill computes the fingerprint data for a collected image; accept is
// invoked once per comparator worker per broadcast item with the
// verdict telling that worker whether it owns the insert.
func NewManager(collectorWorkers, comparatorWorkers int, fill func(*api.ImageData), accept func(*api.ImageData, Verdict)) *Manager {
	m := &Manager{}
	m.Comparator = NewComparatorPool(comparatorWorkers, accept)
	m.Collector = NewCollectorPool(collectorWorkers, fill, m.Comparator.Broadcast)
	return m
}

// Start launches both pools.
func (m *Manager) Start() {
	m.Comparator.Start()
	m.Collector.Start()
}

// Stop cooperatively cancels both pools.
func (m *Manager) Stop() {
	m.Collector.Stop()
	m.Comparator.Stop()
}

// Close closes the collector pool first so any remaining fingerprints
// finish their trip to the comparator pool, then closes the
// comparator pool.
func (m *Manager) Close() {
	m.Collector.CloseAndWait()
	m.Comparator.CloseAndWait()
}
