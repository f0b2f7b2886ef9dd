package plagiarism

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/RishiKendai/quill/internal/fingerprint"
	"golang.org/x/sync/singleflight"
)

type cacheKey struct {
	documentID  string
	contentHash string
	ngramSize   int
	windowSize  int
}

func (k cacheKey) String() string {
	return fmt.Sprintf("%s:%s:%d:%d", k.documentID, k.contentHash, k.ngramSize, k.windowSize)
}

// DefaultCacheDocuments bounds a SetCache created with a zero capacity
const DefaultCacheDocuments = 10000

// SetCache memoizes fingerprint sets per (documentId, contentHash, sizes).
// Each key is computed at most once; concurrent callers for the same key
// wait for the single computation. Cached sets are shared and must not be
// modified. Only the newest version of each document is kept, and at most
// maxDocuments documents are held; the least recently used is evicted first.
type SetCache struct {
	ngramSize    int
	windowSize   int
	maxDocuments int

	mu    sync.Mutex
	sets  map[cacheKey]*fingerprint.FingerprintSet
	byDoc map[string]*list.Element
	order *list.List // front is most recently used, values are cacheKey
	group singleflight.Group

	generate func(text, documentID string, ngramSize, windowSize int) (*fingerprint.FingerprintSet, error)
}

func NewSetCache(ngramSize, windowSize, maxDocuments int) (*SetCache, error) {
	if err := fingerprint.ValidateSizes(ngramSize, windowSize); err != nil {
		return nil, err
	}
	if maxDocuments <= 0 {
		maxDocuments = DefaultCacheDocuments
	}
	return &SetCache{
		ngramSize:    ngramSize,
		windowSize:   windowSize,
		maxDocuments: maxDocuments,
		sets:         make(map[cacheKey]*fingerprint.FingerprintSet),
		byDoc:        make(map[string]*list.Element),
		order:        list.New(),
		generate:     fingerprint.GenerateFingerprints,
	}, nil
}

// Get returns the fingerprint set of text, computing it on first use
func (c *SetCache) Get(documentID, text string) (*fingerprint.FingerprintSet, error) {
	key := cacheKey{
		documentID:  documentID,
		contentHash: fingerprint.ContentHash(text),
		ngramSize:   c.ngramSize,
		windowSize:  c.windowSize,
	}

	if set, ok := c.lookup(key); ok {
		return set, nil
	}

	v, err, _ := c.group.Do(key.String(), func() (interface{}, error) {
		if set, ok := c.lookup(key); ok {
			return set, nil
		}
		set, err := c.generate(text, documentID, c.ngramSize, c.windowSize)
		if err != nil {
			return nil, err
		}
		c.store(key, set)
		return set, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint document %s: %w", documentID, err)
	}

	return v.(*fingerprint.FingerprintSet), nil
}

func (c *SetCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sets)
}

func (c *SetCache) NgramSize() int {
	return c.ngramSize
}

func (c *SetCache) WindowSize() int {
	return c.windowSize
}

func (c *SetCache) lookup(key cacheKey) (*fingerprint.FingerprintSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.sets[key]
	if ok {
		c.order.MoveToFront(c.byDoc[key.documentID])
	}
	return set, ok
}

func (c *SetCache) store(key cacheKey, set *fingerprint.FingerprintSet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.byDoc[key.documentID]; ok {
		if old := elem.Value.(cacheKey); old != key {
			delete(c.sets, old)
		}
		elem.Value = key
		c.order.MoveToFront(elem)
	} else {
		c.byDoc[key.documentID] = c.order.PushFront(key)
	}
	c.sets[key] = set

	for c.order.Len() > c.maxDocuments {
		oldest := c.order.Back()
		evicted := c.order.Remove(oldest).(cacheKey)
		delete(c.sets, evicted)
		delete(c.byDoc, evicted.documentID)
	}
}
