// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package shadercache caches compiled shader modules by source hash so
// graph rebuilds (resolution changes, hot reloads) never recompile
// unchanged WGSL.
package shadercache

import (
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/gogpu/framegraph/device"
)

const shardCount = 16

type shard struct {
	mu      sync.Mutex
	modules map[uint64]device.ShaderModule
}

// Cache is a sharded shader-module cache keyed by FNV-1a hash of the
// WGSL source. Safe for concurrent use; a failed compile caches nothing,
// so a later corrected source under the same label compiles fresh.
type Cache struct {
	shards [shardCount]shard

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates an empty cache.
func New() *Cache {
	c := &Cache{}
	for i := range c.shards {
		c.shards[i].modules = make(map[uint64]device.ShaderModule)
	}
	return c
}

func hashSource(src string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(src))
	return h.Sum64()
}

// Module returns the cached module for the given WGSL source, compiling
// and caching it on first sight.
func (c *Cache) Module(dev device.Device, label, src string) (device.ShaderModule, error) {
	key := hashSource(src)
	s := &c.shards[key%shardCount]

	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.modules[key]; ok {
		c.hits.Add(1)
		return m, nil
	}

	m, err := dev.CreateShaderModule(label, src)
	if err != nil {
		return nil, err
	}
	s.modules[key] = m
	c.misses.Add(1)
	return m, nil
}

// Stats returns cache hits and misses since creation.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of cached modules.
func (c *Cache) Len() int {
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		n += len(s.modules)
		s.mu.Unlock()
	}
	return n
}

// Purge destroys every cached module and empties the cache. Call when
// the device is torn down.
func (c *Cache) Purge(dev device.Device) {
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		for key, m := range s.modules {
			dev.DestroyShaderModule(m)
			delete(s.modules, key)
		}
		s.mu.Unlock()
	}
}
