// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package vaultregistry groups vaults by category and resolves fetches
// across them (spec §4.E). Grounded on the teacher's ClientCache
// lookup-or-fan-out-over-a-keyed-collection shape
// (internal/vault/client_factory.go).
package vaultregistry

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/coreplatform/secretcache/internal/contents"
	"github.com/coreplatform/secretcache/internal/vaultclient"
)

// Registry is a read-only, built-once map from category to an ordered
// set of vaults, populated from process configuration under `vaults/*`
// (spec §6). It is safe for concurrent use after construction: nothing
// mutates after New returns.
type Registry struct {
	byCategory map[string][]*vaultclient.Vault
	byID       map[string]*vaultclient.Vault // "category/vaultID" -> vault
}

// New builds a Registry from vaults, preserving the given order within
// each category (spec §4.E "iterate vaults within the category in
// insertion order; first Some wins").
func New(vaults []*vaultclient.Vault) *Registry {
	r := &Registry{
		byCategory: map[string][]*vaultclient.Vault{},
		byID:       map[string]*vaultclient.Vault{},
	}
	for _, v := range vaults {
		r.byCategory[v.Category()] = append(r.byCategory[v.Category()], v)
		r.byID[key(v.Category(), v.ID())] = v
	}
	return r
}

func key(category, vaultID string) string {
	return category + "/" + vaultID
}

// ByID resolves a specific vault within category, with no fallback (spec
// §4.E "By category and vault id: direct lookup; no fallback").
func (r *Registry) ByID(category, vaultID string) (*vaultclient.Vault, bool) {
	v, ok := r.byID[key(category, vaultID)]
	return v, ok
}

// FetchByCategory tries each vault registered under category in
// insertion order, returning the first successful fetch (spec §4.E "By
// category: iterate vaults within the category in insertion order;
// first Some wins"). Per-vault errors are accumulated (not lost) so a
// caller that wants to know why every vault failed can inspect them,
// but a nil error is returned if no vault errored; absence with no error
// means no vault matched or all returned absent.
func (r *Registry) FetchByCategory(ctx context.Context, category, secret, version string) (contents.Contents, bool, error) {
	var errs error
	for _, v := range r.byCategory[category] {
		kind, body, ok, err := v.Fetch(ctx, secret, version)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("vault %q: %w", v.ID(), err))
			continue
		}
		if !ok {
			continue
		}
		c, unwrapped := vaultclient.Unwrap(kind, body)
		if !unwrapped {
			continue
		}
		return c, true, nil
	}
	return nil, false, errs
}

// FetchByID fetches from exactly the named vault within category, with
// no fan-out (spec §4.E).
func (r *Registry) FetchByID(ctx context.Context, category, vaultID, secret, version string) (contents.Contents, bool, error) {
	v, ok := r.ByID(category, vaultID)
	if !ok {
		return nil, false, nil
	}
	kind, body, ok, err := v.Fetch(ctx, secret, version)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	c, unwrapped := vaultclient.Unwrap(kind, body)
	if !unwrapped {
		return nil, false, nil
	}
	return c, true, nil
}
