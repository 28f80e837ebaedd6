package store

import (
	"hash/fnv"
	"sync"
)

// lockShards is the number of shards in a KeyLocks table. Sharding keeps
// lock lookup cheap without one global mutex serializing unrelated learners.
const lockShards = 64

// KeyLocks is a sharded table of per-learner-id mutexes. Every mutation for
// one id acquires the same mutex, so concurrent updates to a single learner
// never interleave, while different learners proceed in parallel.
//
// The state store and the feedback store share one table: the id-level
// serialization guarantee spans both kinds of mutation for a learner.
type KeyLocks struct {
	shards [lockShards]lockShard
}

type lockShard struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyLocks creates an empty lock table.
func NewKeyLocks() *KeyLocks {
	kl := &KeyLocks{}
	for i := range kl.shards {
		kl.shards[i].locks = make(map[string]*sync.Mutex)
	}
	return kl
}

// Get returns the mutex for a key, creating it on first use. Mutexes are
// never removed: the table grows with the learner population, which is
// bounded and never shrinks (records are not deleted).
func (kl *KeyLocks) Get(key string) *sync.Mutex {
	shard := &kl.shards[shardIndex(key)]

	shard.mu.Lock()
	defer shard.mu.Unlock()

	if m, ok := shard.locks[key]; ok {
		return m
	}
	m := &sync.Mutex{}
	shard.locks[key] = m
	return m
}

func shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % lockShards)
}
