package ledger

import (
	"sort"
	"sync"
)

// accountLocks serializes mutations per account id. Transfer needs both
// parties, so acquisition is always in ascending id order to rule out
// deadlock between opposing transfers.
type accountLocks struct {
	mu sync.Mutex
	m  map[int64]*sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{m: make(map[int64]*sync.Mutex)}
}

func (l *accountLocks) get(id int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	mu, ok := l.m[id]
	if !ok {
		mu = &sync.Mutex{}
		l.m[id] = mu
	}
	return mu
}

// lock acquires the mutexes for the given ids (deduplicated, ascending)
// and returns the matching unlock.
func (l *accountLocks) lock(ids ...int64) (unlock func()) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	locked := make([]*sync.Mutex, 0, len(ids))
	var prev int64
	for i, id := range ids {
		if i > 0 && id == prev {
			continue
		}
		prev = id
		mu := l.get(id)
		mu.Lock()
		locked = append(locked, mu)
	}
	return func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].Unlock()
		}
	}
}
