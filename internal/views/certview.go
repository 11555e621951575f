// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package views

import (
	"context"
	"sync"
)

// Role distinguishes which side of a TLS handshake an issuer config is
// derived for: it changes whether a certificate/private key is installed
// for the "public" issuer (spec §4.G "Rules for issuer public").
type Role int

const (
	RoleServer Role = iota
	RoleClient
)

// PublicIssuer is the reserved issuer name whose client-role derivation
// omits certificate/privatekey (clients trust the system root store
// instead), per spec §4.G.
const PublicIssuer = "public"

// TrustedPeers is either an explicit allow-list or the literal "anyone"
// sentinel used when no list was configured.
type TrustedPeers struct {
	Any   bool
	Peers []string
}

// AnyPeer is the "anyone" sentinel (spec §4.G: "trusted_peers (literal
// list or \"anyone\" when not specified)").
var AnyPeer = TrustedPeers{Any: true}

// VerifyConfig is the `verify` subtree of a derived issuer TLS config.
type VerifyConfig struct {
	CACertificatesPEM []byte
	Enable            bool
	AddressMatch      bool // always false, per spec
	AcceptSelfSigned  bool // only meaningful when Role == RoleClient
	TrustedPeers      TrustedPeers
}

// IssuerTLSConfig is the derived property tree for one issuer (spec
// §4.G "Issuer TLS config").
type IssuerTLSConfig struct {
	Issuer      string
	Certificate []byte // from tls.crt; absent for the public issuer as a client
	PrivateKey  []byte // from tls.key; absent for the public issuer as a client
	Verify      VerifyConfig
}

// StorageTLSConfig is the derived property tree for a named storage
// secret (spec §4.G "Storage TLS config"): certificate/key plus an
// optional CA, with no issuer-specific verify semantics.
type StorageTLSConfig struct {
	Certificate       []byte
	PrivateKey        []byte
	CACertificatesPEM []byte
}

// IssuerParams configures how CertificateView derives an IssuerTLSConfig
// from the raw contents of `<mount>/certificates/<issuer>/`.
type IssuerParams struct {
	Issuer           string
	Role             Role
	TrustedPeers     TrustedPeers // zero value (Any=false, Peers=nil) means "not specified" -> AnyPeer
	DisableMTLS      bool
	AcceptSelfSigned bool // only applied when Role == RoleClient
}

// CertificateView wraps a SecretView plus derivation parameters. It
// rebuilds its derived tree only when the underlying SecretView's version
// (content hash) changes, caching the result between accesses (spec
// §4.G "CertificateView ... caches a derived property tree and a
// remembered lastVersion").
type CertificateView struct {
	secret  *SecretView
	params  IssuerParams
	storage bool // true => derive as a StorageTLSConfig instead of an issuer config

	// mu guards the derived-state fields below. The mTLS info cache
	// (secrets.GetIssuerTLSConfig) interns one CertificateView per key and
	// hands the same pointer to every caller, so concurrent refreshes from
	// different goroutines must not race on lastVersion/issuer/stg/built.
	mu          sync.Mutex
	lastVersion uint64
	issuer      IssuerTLSConfig
	stg         StorageTLSConfig
	built       bool
}

// NewIssuerCertificateView derives an IssuerTLSConfig from secret, whose
// contents are expected to hold tls.crt/tls.key/ca.crt (spec §6 layout
// `<mount>/certificates/<issuer>/`).
func NewIssuerCertificateView(secret *SecretView, params IssuerParams) *CertificateView {
	return &CertificateView{secret: secret, params: params}
}

// NewStorageCertificateView derives a StorageTLSConfig from secret (spec
// §4.G "Storage TLS config").
func NewStorageCertificateView(secret *SecretView) *CertificateView {
	return &CertificateView{secret: secret, storage: true}
}

// refresh rebuilds the derived tree if the underlying secret's version
// has advanced since the last build, or if this is the first access. The
// caller must hold v.mu: this view may be shared across goroutines (the
// mTLS info cache interns one CertificateView per key), so the
// check-then-rebuild-then-publish sequence must be atomic.
func (v *CertificateView) refresh(ctx context.Context) {
	version := v.secret.GetVersion(ctx)
	if v.built && version == v.lastVersion {
		return
	}

	tree := v.secret.GetTree(ctx)
	if v.storage {
		v.stg = StorageTLSConfig{
			Certificate:       tree["tls.crt"],
			PrivateKey:        tree["tls.key"],
			CACertificatesPEM: caCertificatesPEM(tree),
		}
	} else {
		v.issuer = deriveIssuerConfig(v.params, tree)
	}
	v.lastVersion = version
	v.built = true
}

func caCertificatesPEM(tree map[string][]byte) []byte {
	ca, ok := tree["ca.crt"]
	if !ok {
		return nil
	}
	return ca
}

func deriveIssuerConfig(p IssuerParams, tree map[string][]byte) IssuerTLSConfig {
	// A public-issuer client never participates in mutual TLS: it has no
	// certificate/key of its own to present (see the no-client-identity
	// rule below), so there is nothing for its peer to verify back. Every
	// other (issuer, role) pair takes mTLS enablement straight from the
	// override, the same for client and server, since whether an issuer's
	// CA requires mutual auth is a property of the issuer, not of which
	// side of the handshake is asking.
	enable := !p.DisableMTLS
	if p.Issuer == PublicIssuer && p.Role == RoleClient {
		enable = false
	}

	cfg := IssuerTLSConfig{
		Issuer: p.Issuer,
		Verify: VerifyConfig{
			CACertificatesPEM: caCertificatesPEM(tree),
			Enable:            enable,
			AddressMatch:      false,
			TrustedPeers:      p.TrustedPeers,
		},
	}
	if !cfg.Verify.TrustedPeers.Any && cfg.Verify.TrustedPeers.Peers == nil {
		cfg.Verify.TrustedPeers = AnyPeer
	}
	if p.Role == RoleClient {
		cfg.Verify.AcceptSelfSigned = p.AcceptSelfSigned
	}

	// Public-issuer clients rely on the system trust store; they don't
	// present a client certificate/key of their own. Servers behind the
	// public issuer still install normally.
	if p.Issuer == PublicIssuer && p.Role == RoleClient {
		return cfg
	}

	cfg.Certificate = tree["tls.crt"]
	cfg.PrivateKey = tree["tls.key"]
	return cfg
}

// GetIssuerConfig returns the current derived issuer config, rebuilding
// it first if the underlying secret's version has advanced. Valid only
// when this view was built with NewIssuerCertificateView.
func (v *CertificateView) GetIssuerConfig(ctx context.Context) IssuerTLSConfig {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.refresh(ctx)
	return v.issuer
}

// GetStorageConfig returns the current derived storage config, rebuilding
// it first if the underlying secret's version has advanced. Valid only
// when this view was built with NewStorageCertificateView.
func (v *CertificateView) GetStorageConfig(ctx context.Context) StorageTLSConfig {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.refresh(ctx)
	return v.stg
}

// IsStale delegates to the underlying SecretView.
func (v *CertificateView) IsStale(ctx context.Context) bool { return v.secret.IsStale(ctx) }

// IsValid delegates to the underlying SecretView.
func (v *CertificateView) IsValid(ctx context.Context) bool { return v.secret.IsValid(ctx) }

// GetVersion delegates to the underlying SecretView.
func (v *CertificateView) GetVersion(ctx context.Context) uint64 { return v.secret.GetVersion(ctx) }
