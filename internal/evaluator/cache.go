package evaluator

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/expr-lang/expr/vm"
)

// DefaultCacheSize is the default maximum number of compiled programs kept.
const DefaultCacheSize = 256

// programCache is a bounded LRU cache for compiled expr-lang programs.
// Keys combine the source text with the shape of the environment it was
// compiled against, since expr type-checks against concrete variable types.
type programCache struct {
	mu        sync.Mutex
	cache     map[string]*list.Element
	lru       *list.List
	maxSize   int
	hitCount  int64
	missCount int64
}

type cacheEntry struct {
	key     string
	program *vm.Program
}

func newProgramCache(maxSize int) *programCache {
	if maxSize < 1 {
		maxSize = DefaultCacheSize
	}
	return &programCache{
		cache:   make(map[string]*list.Element, maxSize),
		lru:     list.New(),
		maxSize: maxSize,
	}
}

// Get retrieves a compiled program, marking it most recently used.
func (c *programCache) Get(key string) (*vm.Program, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.cache[key]
	if !ok {
		c.missCount++
		return nil, false
	}

	c.hitCount++
	c.lru.MoveToFront(elem)
	return elem.Value.(*cacheEntry).program, true
}

// Put adds a compiled program, evicting the least recently used entry when full.
func (c *programCache) Put(key string, program *vm.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).program = program
		return
	}

	c.cache[key] = c.lru.PushFront(&cacheEntry{key: key, program: program})

	for c.lru.Len() > c.maxSize {
		elem := c.lru.Back()
		delete(c.cache, elem.Value.(*cacheEntry).key)
		c.lru.Remove(elem)
	}
}

// Len returns the current number of entries in the cache.
func (c *programCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns cache statistics.
func (c *programCache) Stats() (size int, hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len(), c.hitCount, c.missCount
}

func (c *programCache) String() string {
	size, hits, misses := c.Stats()
	return fmt.Sprintf("programCache{size=%d, hits=%d, misses=%d}", size, hits, misses)
}
