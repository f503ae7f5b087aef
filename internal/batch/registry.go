package batch

import (
	"log"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Registry holds one Batch per session owner. Batches idle for longer than
// the TTL are dropped. Appending to a batch counts as activity, and a batch
// that a run still owns is never dropped by the sweep.
type Registry struct {
	cache *gocache.Cache
}

// NewRegistry creates a registry with the given idle TTL and sweep interval.
func NewRegistry(ttl, cleanupInterval time.Duration) *Registry {
	r := &Registry{cache: gocache.New(ttl, cleanupInterval)}
	r.cache.OnEvicted(func(owner string, v interface{}) {
		b := v.(*Batch)
		if b.Running() {
			log.Printf("batch.Registry: kept batch for %s, a run still owns it", owner)
			r.cache.SetDefault(owner, b)
			return
		}
		b.setTouch(nil)
		log.Printf("batch.Registry: dropped idle batch for %s", owner)
	})
	return r
}

// Get returns the owner's batch, creating it on first use. Each call resets
// the idle timer.
func (r *Registry) Get(owner string) *Batch {
	if v, found := r.cache.Get(owner); found {
		b := v.(*Batch)
		r.cache.SetDefault(owner, b)
		return b
	}

	b := New()
	b.setTouch(func() { r.cache.SetDefault(owner, b) })
	if err := r.cache.Add(owner, b, gocache.DefaultExpiration); err != nil {
		// lost a race with a concurrent Get
		if v, found := r.cache.Get(owner); found {
			b.setTouch(nil)
			return v.(*Batch)
		}
		r.cache.SetDefault(owner, b)
	}
	return b
}

// Peek returns the owner's batch without creating one.
func (r *Registry) Peek(owner string) (*Batch, bool) {
	v, found := r.cache.Get(owner)
	if !found {
		return nil, false
	}
	return v.(*Batch), true
}

// Drop forgets the owner's batch. Callers refuse to drop a running batch;
// one that is still running when dropped is kept.
func (r *Registry) Drop(owner string) {
	r.cache.Delete(owner)
}

// Count reports the number of live batches.
func (r *Registry) Count() int {
	return r.cache.ItemCount()
}
