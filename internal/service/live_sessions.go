package service

import (
	"container/list"
	"sync"
	"time"
)

// liveSessions is a bounded LRU of session stores keyed by client scope.
// An entry idle for longer than idleTTL is dropped on its next lookup, the
// same as a closed tab; the durable token survives and the next request
// bootstraps a fresh store from it.
type liveSessions struct {
	mu      sync.Mutex
	cap     int
	idleTTL time.Duration
	ll      *list.List // front = most recently used
	items   map[string]*list.Element
	now     func() time.Time
}

type liveEntry struct {
	scope    string
	store    *SessionStore
	lastSeen time.Time
}

// liveSessionsConfig groups constructor options.
type liveSessionsConfig struct {
	Capacity int
	IdleTTL  time.Duration
	Now      func() time.Time
}

const defaultLiveCapacity = 10000

func newLiveSessions(cfg liveSessionsConfig) *liveSessions {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = defaultLiveCapacity
	}
	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	return &liveSessions{
		cap:     capacity,
		idleTTL: cfg.IdleTTL,
		ll:      list.New(),
		items:   make(map[string]*list.Element),
		now:     nowFn,
	}
}

// get returns the live store for scope and marks it used.
func (c *liveSessions) get(scope string) (*SessionStore, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[scope]
	if !ok {
		return nil, false
	}
	ent := el.Value.(*liveEntry)
	now := c.now()
	if c.idle(ent, now) {
		c.remove(el)
		return nil, false
	}
	ent.lastSeen = now
	c.ll.MoveToFront(el)
	return ent.store, true
}

// put stores s as the live session for scope, replacing any previous one.
// It returns how many least recently used entries were dropped to make room.
func (c *liveSessions) put(scope string, s *SessionStore) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if el, ok := c.items[scope]; ok {
		ent := el.Value.(*liveEntry)
		ent.store = s
		ent.lastSeen = now
		c.ll.MoveToFront(el)
		return 0
	}

	c.items[scope] = c.ll.PushFront(&liveEntry{scope: scope, store: s, lastSeen: now})
	evicted := 0
	for c.ll.Len() > c.cap {
		c.remove(c.ll.Back())
		evicted++
	}
	return evicted
}

// take removes and returns the live store for scope, if any.
func (c *liveSessions) take(scope string) (*SessionStore, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[scope]
	if !ok {
		return nil, false
	}
	c.remove(el)
	return el.Value.(*liveEntry).store, true
}

func (c *liveSessions) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Helpers (caller must hold c.mu).
func (c *liveSessions) idle(e *liveEntry, now time.Time) bool {
	return c.idleTTL > 0 && now.Sub(e.lastSeen) > c.idleTTL
}

func (c *liveSessions) remove(el *list.Element) {
	c.ll.Remove(el)
	delete(c.items, el.Value.(*liveEntry).scope)
}
