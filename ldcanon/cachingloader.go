/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ldcanon

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/piprate/json-gold/ld"
)

const defaultCacheSize = 256

// CachingLoader wraps a document loader with an LRU cache. Contexts and
// verification method documents resolve once per cache lifetime.
type CachingLoader struct {
	inner ld.DocumentLoader
	cache *lru.Cache[string, *ld.RemoteDocument]
}

// NewCachingLoader wraps the given loader with an LRU cache of size entries.
// A size of 0 selects the default.
func NewCachingLoader(inner ld.DocumentLoader, size int) (*CachingLoader, error) {
	if size <= 0 {
		size = defaultCacheSize
	}

	cache, err := lru.New[string, *ld.RemoteDocument](size)
	if err != nil {
		return nil, err
	}

	return &CachingLoader{inner: inner, cache: cache}, nil
}

// LoadDocument implements ld.DocumentLoader.
func (l *CachingLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	if doc, ok := l.cache.Get(u); ok {
		return doc, nil
	}

	doc, err := l.inner.LoadDocument(u)
	if err != nil {
		return nil, err
	}

	l.cache.Add(u, doc)

	return doc, nil
}
