package pipeline

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// resultCache holds validated payload bytes. Each hit is decoded again so
// callers never share a value.
type resultCache struct {
	entries *lru.Cache[string, []byte]
}

// newResultCache returns nil when size is not positive.
func newResultCache(size int) (*resultCache, error) {
	if size <= 0 {
		return nil, nil
	}
	entries, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &resultCache{entries: entries}, nil
}

func cacheKey(kind Kind, model, prompt string) string {
	h := sha256.New()
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}

func (c *resultCache) get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	return c.entries.Get(key)
}

func (c *resultCache) add(key string, data []byte) {
	if c == nil {
		return
	}
	c.entries.Add(key, data)
}

func (c *resultCache) len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}
