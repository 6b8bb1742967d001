package reader

import (
	"container/list"
	"sync"
)

// chunkKey identifies one cached chunk's raw on-disk bytes (header +
// body, still compressed) by the file it came from and the byte offset
// its header starts at.
type chunkKey struct {
	fileID uint64
	offset int64
}

// ChunkCache is the LRU described in spec.md §5: capacity-bounded,
// guarded by a single mutex, eviction synchronous. Get returns a copy so
// a caller can retain it past the lock without racing a concurrent
// eviction; Put stores its own copy for the same reason.
type ChunkCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	elems    map[chunkKey]*list.Element
	data     map[chunkKey][]byte
}

// NewChunkCache builds a cache holding at most capacity chunks.
func NewChunkCache(capacity int) *ChunkCache {
	if capacity <= 0 {
		capacity = 1
	}

	return &ChunkCache{
		capacity: capacity,
		order:    list.New(),
		elems:    make(map[chunkKey]*list.Element, capacity),
		data:     make(map[chunkKey][]byte, capacity),
	}
}

// Get returns a copy of the cached bytes for (fileID, offset), if present.
func (c *ChunkCache) Get(fileID uint64, offset int64) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := chunkKey{fileID, offset}
	elem, ok := c.elems[k]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)

	stored := c.data[k]
	out := make([]byte, len(stored))
	copy(out, stored)

	return out, true
}

// Put inserts data under (fileID, offset), evicting the least-recently-
// used entry if the cache is full.
func (c *ChunkCache) Put(fileID uint64, offset int64, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := chunkKey{fileID, offset}
	if elem, ok := c.elems[k]; ok {
		c.order.MoveToFront(elem)
	} else {
		if c.order.Len() >= c.capacity {
			oldest := c.order.Back()
			if oldest != nil {
				evictKey := oldest.Value.(chunkKey) //nolint:forcetypeassert
				c.order.Remove(oldest)
				delete(c.elems, evictKey)
				delete(c.data, evictKey)
			}
		}
		c.elems[k] = c.order.PushFront(k)
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	c.data[k] = stored
}
