// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package vaultclient implements the per-vault authentication state
// machine, retrying fetch, and response unwrapping described in spec
// §4.D. Grounded on vault/responses.go (kv unwrap), vault/requests.go
// (request shape), vault/config.go (TLS/timeouts), and
// internal/credentials/vault/kubernetes.go (k8s login body shape).
package vaultclient

import (
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/coreplatform/secretcache/internal/logging"
)

// Vault owns authentication and fetching for one configured vault (spec
// §3 Vault, §9 "tagged variant ... plus mutable {token, expiration,
// renewable} behind a lock").
type Vault struct {
	cfg       Config
	mountPath string
	logger    logr.Logger
	transport Transport

	mu               sync.Mutex
	token            string
	expiration       time.Time // zero value means "never expires"
	renewable        bool
	permissionDenied bool
}

// Option customizes a Vault at construction time.
type Option func(*Vault)

// WithLogger overrides the default discard logger.
func WithLogger(l logr.Logger) Option {
	return func(v *Vault) { v.logger = l }
}

// WithTransport overrides the default HTTP transport, for tests.
func WithTransport(t Transport) Option {
	return func(v *Vault) { v.transport = t }
}

// New builds a Vault for cfg. mountPath is the process-wide secret mount
// used to resolve the appRole secret_id and the clientCert material.
func New(cfg Config, mountPath string, opts ...Option) (*Vault, error) {
	v := &Vault{
		cfg:       cfg,
		mountPath: mountPath,
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(v)
	}

	if cfg.AuthMode == AuthModeToken {
		v.token = cfg.StaticToken
	}

	if v.transport == nil {
		tlsConfig, err := buildTLSConfig(cfg, mountPath)
		if err != nil {
			return nil, err
		}
		v.transport = NewHTTPTransport(tlsConfig, cfg.ConnectTimeout, cfg.ReadTimeout)
	}

	return v, nil
}

// ID returns the vault's configured identity.
func (v *Vault) ID() string { return v.cfg.VaultID }

// Category returns the vault's configured category.
func (v *Vault) Category() string { return v.cfg.Category }

// Kind returns the vault's configured KV engine kind.
func (v *Vault) Kind() Kind { return v.cfg.effectiveKind() }

func (v *Vault) isTokenExpired(now time.Time) bool {
	return !v.expiration.IsZero() && now.After(v.expiration)
}
