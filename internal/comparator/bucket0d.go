package comparator

import (
	"sync"

	"github.com/dupimg/dupimg/pkg/api"
)

// Bucket0D is the single-bucket strategy: every fingerprint is compared
// against every other. Used below Strategy0DImageCountMax images.
type Bucket0D struct {
	base *base
	mu   sync.Mutex
	all  []*api.ImageData
}

// NewBucket0D returns a 0-D comparator.
func NewBucket0D(opts Options) *Bucket0D {
	return &Bucket0D{base: newBase(opts)}
}

// Accept runs d (and, if enabled, its transforms) against the single
// bucket, optionally inserting d afterward.
func (c *Bucket0D) Accept(d *api.ImageData, add bool) []Match {
	return accept(c.base, c, c, d, add)
}

func (c *Bucket0D) addToBucket(d *api.ImageData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.all = append(c.all, d)
}

func (c *Bucket0D) compareBucket(original, transformed *api.ImageData, transform api.Transform) []Match {
	c.mu.Lock()
	snapshot := append([]*api.ImageData(nil), c.all...)
	c.mu.Unlock()
	return c.base.compareSet(original, transformed, transform, snapshot)
}
