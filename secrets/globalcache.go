// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package secrets

import (
	"sync"

	"github.com/coreplatform/secretcache/internal/logging"
	"github.com/coreplatform/secretcache/internal/secretcache"
)

var globalCacheMu sync.Mutex
var globalCache *secretcache.Cache

// GlobalCache returns the process-wide secret cache, constructing it
// lazily on first use against the current mount path, TTL, and vault
// registry (spec §4.H "Global secret cache").
func GlobalCache() *secretcache.Cache {
	globalCacheMu.Lock()
	defer globalCacheMu.Unlock()
	if globalCache == nil {
		globalCache = secretcache.New(MountPath(), currentRegistry(), TTL, logging.New())
	}
	return globalCache
}

// resetGlobalCache drops the lazily-built global cache so the next
// GlobalCache call picks up the registry just installed by Configure.
// Entries already resolved under the old cache are discarded, which is
// safe since they are in-memory only (spec §1 non-goal: "caching across
// process restarts").
func resetGlobalCache() {
	globalCacheMu.Lock()
	defer globalCacheMu.Unlock()
	globalCache = nil
}
