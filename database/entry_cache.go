// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package database

import (
	"container/list"
	"sync"
)

type entryCacheItem struct {
	key   [32]byte
	entry *Entry
}

// EntryLRUCache is a thread-safe LRU cache of recently read or written
// decompilations, keyed by cache key. It sits in front of the blob and
// metadata stores.
type EntryLRUCache struct {
	mu         sync.Mutex
	maxEntries int
	cache      map[[32]byte]*list.Element
	lruList    *list.List
}

// NewEntryLRUCache creates a cache holding at most maxEntries entries. A
// non-positive size disables the cache.
func NewEntryLRUCache(maxEntries int) *EntryLRUCache {
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &EntryLRUCache{
		maxEntries: maxEntries,
		cache:      make(map[[32]byte]*list.Element),
		lruList:    list.New(),
	}
}

// Get returns the cached entry and marks it most recently used
func (c *EntryLRUCache) Get(key [32]byte) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.cache[key]
	if !ok {
		return nil, false
	}
	c.lruList.MoveToFront(elem)
	return elem.Value.(*entryCacheItem).entry, true
}

// Put adds or replaces an entry, evicting the least recently used entries
// over capacity
func (c *EntryLRUCache) Put(key [32]byte, entry *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maxEntries == 0 {
		return
	}
	if elem, ok := c.cache[key]; ok {
		c.lruList.MoveToFront(elem)
		elem.Value.(*entryCacheItem).entry = entry
		return
	}
	c.cache[key] = c.lruList.PushFront(&entryCacheItem{key: key, entry: entry})
	for c.lruList.Len() > c.maxEntries {
		oldest := c.lruList.Back()
		delete(c.cache, oldest.Value.(*entryCacheItem).key)
		c.lruList.Remove(oldest)
	}
}

// Remove drops an entry if present
func (c *EntryLRUCache) Remove(key [32]byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.cache[key]; ok {
		delete(c.cache, key)
		c.lruList.Remove(elem)
	}
}

// Len returns the number of cached entries
func (c *EntryLRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lruList.Len()
}
