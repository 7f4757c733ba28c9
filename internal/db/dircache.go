package db

import (
	"container/list"
	"database/sql"
	"sync"
)

const dirCacheSize = 4096

// dirCache is a small LRU from directory path to dirs.id, shared by all
// lookups against the same *sql.DB.
type dirCache struct {
	mu    sync.Mutex
	max   int
	order *list.List // front = most recent
	index map[string]*list.Element
}

type dirCacheItem struct {
	path string
	id   int64
}

func newDirCache(max int) *dirCache {
	return &dirCache{
		max:   max,
		order: list.New(),
		index: make(map[string]*list.Element),
	}
}

func (c *dirCache) get(path string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[path]
	if !ok {
		return 0, false
	}
	c.order.MoveToFront(el)
	return el.Value.(dirCacheItem).id, true
}

func (c *dirCache) put(path string, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[path]; ok {
		el.Value = dirCacheItem{path: path, id: id}
		c.order.MoveToFront(el)
		return
	}

	c.index[path] = c.order.PushFront(dirCacheItem{path: path, id: id})
	for c.order.Len() > c.max {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.index, oldest.Value.(dirCacheItem).path)
	}
}

var dbDirCaches sync.Map // map[*sql.DB]*dirCache

func cacheFor(db *sql.DB) *dirCache {
	if existing, ok := dbDirCaches.Load(db); ok {
		return existing.(*dirCache)
	}
	actual, _ := dbDirCaches.LoadOrStore(db, newDirCache(dirCacheSize))
	return actual.(*dirCache)
}

// lookupDirID resolves a directory path to its id, consulting the cache
// first. It returns sql.ErrNoRows for unknown paths.
func lookupDirID(db *sql.DB, path string) (int64, error) {
	cache := cacheFor(db)
	if id, ok := cache.get(path); ok {
		return id, nil
	}
	var id int64
	if err := db.QueryRow(`SELECT id FROM dirs WHERE path = ?`, path).Scan(&id); err != nil {
		return 0, err
	}
	cache.put(path, id)
	return id, nil
}
