package assets

import (
	"container/list"
	"sync"
)

// lruCache is a byte-budgeted LRU used for decoded images and video sources.
// The original design never evicted; a long editing session would grow
// without bound, so decoded assets are capped and the least recently used
// entries are released when the budget is exceeded.
type lruCache struct {
	mu      sync.Mutex
	budget  int64
	used    int64
	order   *list.List // front = most recently used
	entries map[string]*list.Element

	// onEvict releases resources held by the value (e.g. stops a video tap).
	onEvict func(value interface{})
}

type lruEntry struct {
	key   string
	value interface{}
	size  int64
}

func newLRUCache(budget int64, onEvict func(interface{})) *lruCache {
	return &lruCache{
		budget:  budget,
		order:   list.New(),
		entries: make(map[string]*list.Element),
		onEvict: onEvict,
	}
}

func (c *lruCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry).value, true
}

func (c *lruCache) Put(key string, value interface{}, size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		ent := el.Value.(*lruEntry)
		c.used += size - ent.size
		ent.value = value
		ent.size = size
		c.order.MoveToFront(el)
	} else {
		el := c.order.PushFront(&lruEntry{key: key, value: value, size: size})
		c.entries[key] = el
		c.used += size
	}

	for c.used > c.budget && c.order.Len() > 1 {
		c.evictOldest()
	}
}

func (c *lruCache) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	ent := el.Value.(*lruEntry)
	c.order.Remove(el)
	delete(c.entries, ent.key)
	c.used -= ent.size
	if c.onEvict != nil {
		c.onEvict(ent.value)
	}
}

// Each visits every cached value, most recently used first.
func (c *lruCache) Each(fn func(value interface{})) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for el := c.order.Front(); el != nil; el = el.Next() {
		fn(el.Value.(*lruEntry).value)
	}
}

func (c *lruCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *lruCache) UsedBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used
}

// Clear releases everything, used on session teardown.
func (c *lruCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.order.Len() > 0 {
		c.evictOldest()
	}
}
