package threadmgr_test

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dupimg/dupimg/internal/threadmgr"
	"github.com/dupimg/dupimg/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorPoolFillsAndForwardsEveryItem(t *testing.T) {
	var filled int64
	var forwarded int64
	done := make(chan struct{})

	const total = 50
	var wg sync.WaitGroup
	wg.Add(total)

	p := threadmgr.NewCollectorPool(3, func(d *api.ImageData) {
		atomic.AddInt64(&filled, 1)
	}, func(d *api.ImageData) {
		atomic.AddInt64(&forwarded, 1)
		wg.Done()
	})
	p.Start()

	for i := 0; i < total; i++ {
		p.Dispatch(&api.ImageData{Path: "x"})
	}

	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for all items to be filled and forwarded")
	}

	p.CloseAndWait()
	assert.EqualValues(t, total, atomic.LoadInt64(&filled))
	assert.EqualValues(t, total, atomic.LoadInt64(&forwarded))
}

func TestComparatorPoolBroadcastTagsExactlyOneOwnerPerItem(t *testing.T) {
	const workers = 4
	var mu sync.Mutex
	ownerCount := map[*api.ImageData]int{}
	otherCount := map[*api.ImageData]int{}
	var wg sync.WaitGroup
	wg.Add(workers)

	p := threadmgr.NewComparatorPool(workers, func(d *api.ImageData, v threadmgr.Verdict) {
		mu.Lock()
		defer mu.Unlock()
		if v == threadmgr.DoOwn {
			ownerCount[d]++
		} else {
			otherCount[d]++
		}
		wg.Done()
	})
	p.Start()

	item := &api.ImageData{Path: "shared"}
	p.Broadcast(item)
	wg.Wait()
	p.CloseAndWait()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, ownerCount[item], "exactly one worker must own the insert")
	assert.Equal(t, workers-1, otherCount[item])
}

func TestManagerWiresCollectorOutputIntoComparatorBroadcast(t *testing.T) {
	var wg sync.WaitGroup
	const total = 10
	wg.Add(total * 2)

	m := threadmgr.NewManager(2, 2, func(d *api.ImageData) {
		d.Width = 1
	}, func(d *api.ImageData, v threadmgr.Verdict) {
		wg.Done()
	})
	m.Start()

	for i := 0; i < total; i++ {
		m.Collector.Dispatch(&api.ImageData{Path: "y"})
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for broadcast fan-out")
	}
	m.Close()
}

func TestComparatorWorkerCountUsesAllCPUsWhenTransformsEnabled(t *testing.T) {
	n := threadmgr.ComparatorWorkerCount(10, 1000, true)
	assert.Equal(t, runtime.NumCPU(), n)
}

func TestCollectorWorkerCountIsAtLeastOne(t *testing.T) {
	assert.GreaterOrEqual(t, threadmgr.CollectorWorkerCount(), 1)
}
