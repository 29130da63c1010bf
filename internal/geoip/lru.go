// SPDX-License-Identifier: GPL-3.0
// Copyright (C) 2026 ebpflow Contributors

package geoip

import (
	"container/list"
	"sync"
)

type lruCache struct {
	mu      sync.Mutex
	cap     int
	list    *list.List
	entries map[[4]byte]*list.Element
}

type entry struct {
	key [4]byte
	val string
}

func newLRUCache(cap int) *lruCache {
	return &lruCache{
		cap:     cap,
		list:    list.New(),
		entries: make(map[[4]byte]*list.Element, cap),
	}
}

func (c *lruCache) get(k [4]byte) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[k]; ok {
		c.list.MoveToFront(e)
		return e.Value.(*entry).val, true
	}
	return "", false
}

func (c *lruCache) put(k [4]byte, v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[k]; ok {
		e.Value.(*entry).val = v
		c.list.MoveToFront(e)
		return
	}
	if c.list.Len() >= c.cap {
		old := c.list.Back()
		if old != nil {
			c.list.Remove(old)
			delete(c.entries, old.Value.(*entry).key)
		}
	}
	c.entries[k] = c.list.PushFront(&entry{key: k, val: v})
}
