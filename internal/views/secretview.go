// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package views implements synced views over cache entries (spec §4.G):
// live handles that refresh on access and expose a capability set
// {getTree, getProp(key), isStale, isValid, getVersion}. Grounded on the
// teacher's Response interface (vault/responses.go), which exposes a
// capability set over concrete variants rather than using inheritance.
package views

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/coreplatform/secretcache/internal/contents"
	"github.com/coreplatform/secretcache/internal/secretcache"
)

// Tree is the capability set shared by SecretView and CertificateView
// (spec §9 "polymorphic view"): a raw key/value bundle plus change
// detection. Implementations refresh themselves on access rather than
// via a background goroutine (spec §5 "refresh is synchronous in the
// caller's thread").
type Tree interface {
	GetTree(ctx context.Context) contents.Contents
	GetProp(ctx context.Context, key string) ([]byte, bool)
	GetPropString(ctx context.Context, key string) (string, bool)
	IsStale(ctx context.Context) bool
	IsValid(ctx context.Context) bool
	GetVersion(ctx context.Context) uint64
}

// SecretView wraps one cache entry identified by (category, name,
// vaultID, version). Each access resolves the entry via cache, which
// refreshes it if its TTL has elapsed; a failed refresh is logged and the
// previous contents (if any) are kept (spec §3 invariant 6).
type SecretView struct {
	cache    *secretcache.Cache
	category string
	name     string
	vaultID  string
	version  string
	logger   logr.Logger
}

// NewSecretView constructs a view over (category, name) in cache. vaultID
// and version are optional per spec §4.F resolution policy.
func NewSecretView(cache *secretcache.Cache, category, name, vaultID, version string, logger logr.Logger) *SecretView {
	return &SecretView{cache: cache, category: category, name: name, vaultID: vaultID, version: version, logger: logger}
}

func (v *SecretView) resolve(ctx context.Context) secretcache.Resolved {
	r, err := v.cache.Resolve(ctx, v.category, v.name, v.vaultID, v.version)
	if err != nil {
		v.logger.Error(err, "secret view refresh failed", "category", v.category, "name", v.name)
	}
	return r
}

// GetTree returns the current contents, or nil if never successfully loaded.
func (v *SecretView) GetTree(ctx context.Context) contents.Contents {
	return v.resolve(ctx).Contents
}

// GetProp returns the raw bytes for key, or false if the secret or key is absent.
func (v *SecretView) GetProp(ctx context.Context, key string) ([]byte, bool) {
	return v.resolve(ctx).Contents.Get(key)
}

// GetPropString returns key's value decoded as text.
func (v *SecretView) GetPropString(ctx context.Context, key string) (string, bool) {
	return v.resolve(ctx).Contents.GetString(key)
}

// IsStale reports whether the underlying contents are older than the TTL.
func (v *SecretView) IsStale(ctx context.Context) bool {
	return v.resolve(ctx).Stale
}

// IsValid reports whether contents have ever been successfully loaded.
func (v *SecretView) IsValid(ctx context.Context) bool {
	return v.resolve(ctx).Valid
}

// GetVersion returns the entry's current content hash, used by
// CertificateView to detect when its derived tree needs rebuilding.
func (v *SecretView) GetVersion(ctx context.Context) uint64 {
	return v.resolve(ctx).Version
}

var _ Tree = (*SecretView)(nil)
