// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package secretcache implements the stable-identity, never-evicting,
// TTL-driven secret cache (spec §3 CacheEntry, §4.F). Grounded on the
// teacher's ClientCache shape (internal/vault/client_factory.go): stable
// identities, lookup-or-insert under a lock, snapshot-outside-the-lock
// reads.
package secretcache

import (
	"fmt"
	"time"

	"github.com/coreplatform/secretcache/internal/contents"
)

// Key is the composite cache identity (spec §3 SecretKey):
// category "/" name ["@" vaultID] ["#" version].
type Key struct {
	Category string
	Name     string
	VaultID  string // optional
	Version  string // optional
}

// String renders the composite identity used for equality/map-keying.
func (k Key) String() string {
	s := k.Category + "/" + k.Name
	if k.VaultID != "" {
		s += "@" + k.VaultID
	}
	if k.Version != "" {
		s += "#" + k.Version
	}
	return s
}

// Entry is a stable-identity cache entry (spec §3 CacheEntry). Once
// created for a Key, an Entry lives for the lifetime of the process
// (invariant 1) and its contents, once non-absent, are only ever
// replaced, never cleared (invariant 2). Mutation happens only under the
// owning Cache's lock (invariant 3); contentHash is a pure function of
// contents (invariant 4).
type Entry struct {
	key         Key
	contents    contents.Contents
	hasContents bool
	contentHash uint64

	contentTimestamp  time.Time
	accessedTimestamp time.Time
	checkedTimestamp  time.Time
}

// Key returns the entry's composite identity.
func (e *Entry) Key() Key { return e.key }

// needsRefresh reports whether now-checkedTimestamp exceeds ttl
// (invariant 5).
func (e *Entry) needsRefresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.checkedTimestamp) > ttl
}

// isStale reports whether now-contentTimestamp exceeds ttl (invariant 6).
func (e *Entry) isStale(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.contentTimestamp) > ttl
}

// IsValid reports whether contents have ever been successfully loaded.
func (e *Entry) IsValid() bool { return e.hasContents }

// ContentHash returns the current deterministic content hash, 0 if absent.
func (e *Entry) ContentHash() uint64 { return e.contentHash }

// newEntry constructs the initial entry for key such that needsRefresh
// returns true immediately: contentTimestamp is now, checkedTimestamp is
// set far enough in the past to exceed any realistic TTL (invariant 7).
func newEntry(key Key, now time.Time) *Entry {
	return &Entry{
		key:              key,
		contentTimestamp: now,
		// Any duration in the past bigger than the cache's TTL forces
		// an immediate refresh attempt without needing to know the
		// TTL at construction time.
		checkedTimestamp:  now.Add(-24 * 365 * time.Hour),
		accessedTimestamp: now,
	}
}

func (e *Entry) String() string {
	return fmt.Sprintf("Entry{%s valid=%v staleCheck=%s}", e.key, e.hasContents, e.checkedTimestamp)
}
