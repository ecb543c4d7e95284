package server

import (
	"fmt"
	"os"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const cacheEntries = 128

// responseCache memoizes parse responses keyed by the file's identity
// (path, size, mtime) and the request parameters, so repeated parses of an
// unchanged file skip conversion entirely.
type responseCache struct {
	lru *lru.Cache[string, *ParseResponse]
}

func newResponseCache() (*responseCache, error) {
	cache, err := lru.New[string, *ParseResponse](cacheEntries)
	if err != nil {
		return nil, err
	}
	return &responseCache{lru: cache}, nil
}

// key builds the cache key for a file and parameter set. Returns an error
// when the file cannot be stat'd; such requests bypass the cache.
func (c *responseCache) key(path string, size, overlap int, separators []string, relative bool) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s|%d|%d|%d|%d|%t|%s",
		path, info.Size(), info.ModTime().UnixNano(), size, overlap, relative,
		strings.Join(separators, "\x00")), nil
}

func (c *responseCache) get(key string) (*ParseResponse, bool) {
	return c.lru.Get(key)
}

func (c *responseCache) put(key string, resp *ParseResponse) {
	c.lru.Add(key, resp)
}
