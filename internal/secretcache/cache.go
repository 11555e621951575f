// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package secretcache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/coreplatform/secretcache/internal/contents"
	"github.com/coreplatform/secretcache/internal/localsource"
	"github.com/coreplatform/secretcache/internal/metrics"
	"github.com/coreplatform/secretcache/internal/secerrors"
	"github.com/coreplatform/secretcache/internal/vaultregistry"
)

// LocalVaultID is the reserved vault id meaning "read from the local
// filesystem mount, never from a registered vault" (spec §4.F resolution
// policy).
const LocalVaultID = "k8s"

// Cache is the process-wide, never-evicting secret cache (spec §3, §4.F).
// A single mutex guards the entry map and every entry's mutable fields;
// it is never held across I/O (invariant 3): callers copy out what they
// need under the lock, then fetch and re-acquire to install results.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*Entry

	mount    string
	registry *vaultregistry.Registry
	logger   logr.Logger

	ttl func() time.Duration
}

// New builds a Cache reading local secrets from mount and falling back to
// vaults registered in registry. ttl is read on every refresh decision so
// callers can change it at runtime (spec §6 process configuration).
func New(mount string, registry *vaultregistry.Registry, ttl func() time.Duration, logger logr.Logger) *Cache {
	return &Cache{
		entries:  map[Key]*Entry{},
		mount:    mount,
		registry: registry,
		ttl:      ttl,
		logger:   logger,
	}
}

// resolveEntry returns the entry for key, creating it if this is the
// first time key has been seen (spec §3 invariant 1: stable identity for
// the lifetime of the process). accessedTimestamp is bumped under the
// same lock.
func (c *Cache) resolveEntry(key Key, now time.Time) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = newEntry(key, now)
		c.entries[key] = e
		metrics.CacheEntriesGauge.Set(float64(len(c.entries)))
	}
	e.accessedTimestamp = now
	return e
}

// snapshot is a point-in-time, lock-free copy of an entry's externally
// visible state.
type snapshot struct {
	contents    contents.Contents
	hasContents bool
	contentHash uint64
	stale       bool
}

func (c *Cache) getContents(e *Entry, now time.Time, ttl time.Duration) snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshot{
		contents:    e.contents,
		hasContents: e.hasContents,
		contentHash: e.contentHash,
		stale:       e.isStale(now, ttl),
	}
}

// updateContents installs new contents as the entry's current value and
// recomputes contentHash (invariant 2: contents are only ever replaced,
// never cleared, so a failed refresh must call noteFailedUpdate instead
// of updateContents with empty contents).
func (c *Cache) updateContents(e *Entry, newContents contents.Contents, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e.contents = newContents
	e.hasContents = true
	e.contentHash = contentHash(newContents)
	e.contentTimestamp = now
	e.checkedTimestamp = now
}

// noteFailedUpdate records that a refresh was attempted and failed:
// checkedTimestamp advances so the cache doesn't retry on every access,
// but contentTimestamp and contents are left untouched so the entry can
// continue serving stale-but-valid data through an outage (spec §3
// invariant 6, "stale survives an outage").
func (c *Cache) noteFailedUpdate(e *Entry, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e.checkedTimestamp = now
}

// Resolved is a point-in-time view of a cache entry returned by Resolve,
// rich enough for internal/views to implement the SecretView/
// CertificateView capability set (getTree, isStale, isValid, getVersion)
// without reaching into Entry's unexported fields.
type Resolved struct {
	Key      Key
	Contents contents.Contents
	Valid    bool   // hasContents ever been loaded
	Stale    bool   // contents older than TTL
	Version  uint64 // contentHash; 0 iff !Valid
}

// Get resolves the entry for (category, name, vaultID, version), refreshing
// it from its source if the TTL has elapsed since the last check, and
// returns its contents (possibly stale, possibly absent).
//
// Resolution policy (spec §4.F):
//   - vaultID == LocalVaultID: local filesystem mount only.
//   - vaultID != "": exactly that vault via the registry; no fallback.
//   - vaultID == "": local mount first, then registered vaults by category.
func (c *Cache) Get(ctx context.Context, category, name, vaultID, version string) (contents.Contents, bool, error) {
	r, err := c.Resolve(ctx, category, name, vaultID, version)
	if err != nil {
		return nil, false, err
	}
	return r.Contents, r.Valid, nil
}

// Resolve is the entry point used by getSecretEntry (spec §4.F): it
// returns the richer Resolved view used by SyncedViews to detect content
// changes (getVersion) and staleness without a second round trip.
func (c *Cache) Resolve(ctx context.Context, category, name, vaultID, version string) (Resolved, error) {
	now := time.Now()
	key := Key{Category: category, Name: name, VaultID: vaultID, Version: version}
	e := c.resolveEntry(key, now)

	ttl := c.ttl()
	snap := c.getContents(e, now, ttl)

	c.mu.Lock()
	needsRefresh := e.needsRefresh(now, ttl)
	c.mu.Unlock()

	if !needsRefresh {
		metrics.CacheRefreshTotal.WithLabelValues("hit").Inc()
		return Resolved{Key: key, Contents: snap.contents, Valid: snap.hasContents, Stale: snap.stale, Version: snap.contentHash}, nil
	}

	fresh, ok, err := c.fetch(ctx, category, name, vaultID, version)
	refreshedAt := time.Now()
	if err != nil {
		metrics.CacheRefreshTotal.WithLabelValues("failure").Inc()
		c.noteFailedUpdate(e, refreshedAt)

		var authErr *secerrors.VaultAuthError
		if errors.As(err, &authErr) {
			// VaultAuthError always propagates (spec §7): unlike a
			// transient BackendUnavailable failure, it is not swallowed
			// behind stale contents even when the entry has previously
			// loaded.
			return Resolved{Key: key, Contents: snap.contents, Valid: snap.hasContents, Stale: snap.stale, Version: snap.contentHash}, err
		}

		if snap.hasContents {
			// Stale survives an outage: log and serve what we have.
			c.logger.V(1).Info("secret refresh failed, serving stale contents", "key", key.String(), "error", err.Error())
			return Resolved{Key: key, Contents: snap.contents, Valid: true, Stale: true, Version: snap.contentHash}, nil
		}
		return Resolved{Key: key}, err
	}
	if !ok {
		metrics.CacheRefreshTotal.WithLabelValues("failure").Inc()
		c.noteFailedUpdate(e, refreshedAt)
		if snap.hasContents {
			return Resolved{Key: key, Contents: snap.contents, Valid: true, Stale: snap.stale, Version: snap.contentHash}, nil
		}
		return Resolved{Key: key}, nil
	}

	metrics.CacheRefreshTotal.WithLabelValues("success").Inc()
	c.updateContents(e, fresh, refreshedAt)
	return Resolved{Key: key, Contents: fresh, Valid: true, Stale: false, Version: contentHash(fresh)}, nil
}

func (c *Cache) fetch(ctx context.Context, category, name, vaultID, version string) (contents.Contents, bool, error) {
	if vaultID == LocalVaultID {
		return localsource.Read(c.mount, category, name)
	}

	if vaultID != "" {
		return c.registry.FetchByID(ctx, category, vaultID, name, version)
	}

	local, ok, err := localsource.Read(c.mount, category, name)
	if err != nil {
		return nil, false, err
	}
	if ok {
		return local, true, nil
	}

	return c.registry.FetchByCategory(ctx, category, name, version)
}
