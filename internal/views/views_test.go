// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package views

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coreplatform/secretcache/internal/logging"
	"github.com/coreplatform/secretcache/internal/secretcache"
	"github.com/coreplatform/secretcache/internal/vaultregistry"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func newTestCache(t *testing.T, mount string) *secretcache.Cache {
	t.Helper()
	return secretcache.New(mount, vaultregistry.New(nil), func() time.Duration { return time.Hour }, logging.Discard())
}

func TestSecretViewReflectsCacheContents(t *testing.T) {
	mount := t.TempDir()
	writeFile(t, filepath.Join(mount, "certificates", "public"), "tls.crt", "CERT")
	writeFile(t, filepath.Join(mount, "certificates", "public"), "tls.key", "KEY")

	cache := newTestCache(t, mount)
	sv := NewSecretView(cache, "certificates", "public", "", "", logging.Discard())

	ctx := context.Background()
	require.True(t, sv.IsValid(ctx))
	require.False(t, sv.IsStale(ctx))

	crt, ok := sv.GetProp(ctx, "tls.crt")
	require.True(t, ok)
	require.Equal(t, "CERT", string(crt))

	_, ok = sv.GetProp(ctx, "missing")
	require.False(t, ok)
}

func TestSecretViewMissingIsInvalid(t *testing.T) {
	mount := t.TempDir()
	cache := newTestCache(t, mount)
	sv := NewSecretView(cache, "certificates", "nope", "", "", logging.Discard())

	ctx := context.Background()
	require.False(t, sv.IsValid(ctx))
	tree := sv.GetTree(ctx)
	require.Nil(t, tree)
}

func TestCertificateViewDerivesIssuerConfig(t *testing.T) {
	mount := t.TempDir()
	dir := filepath.Join(mount, "certificates", "internal-ca")
	writeFile(t, dir, "tls.crt", "CERT")
	writeFile(t, dir, "tls.key", "KEY")
	writeFile(t, dir, "ca.crt", "CA")

	cache := newTestCache(t, mount)
	sv := NewSecretView(cache, "certificates", "internal-ca", "", "", logging.Discard())
	cv := NewIssuerCertificateView(sv, IssuerParams{Issuer: "internal-ca", Role: RoleServer})

	ctx := context.Background()
	cfg := cv.GetIssuerConfig(ctx)
	require.Equal(t, "internal-ca", cfg.Issuer)
	require.Equal(t, "CERT", string(cfg.Certificate))
	require.Equal(t, "KEY", string(cfg.PrivateKey))
	require.Equal(t, "CA", string(cfg.Verify.CACertificatesPEM))
	require.True(t, cfg.Verify.Enable)
	require.False(t, cfg.Verify.AddressMatch)
	require.True(t, cfg.Verify.TrustedPeers.Any)
}

func TestCertificateViewPublicIssuerOmitsClientIdentity(t *testing.T) {
	mount := t.TempDir()
	dir := filepath.Join(mount, "certificates", "public")
	writeFile(t, dir, "tls.crt", "CERT")
	writeFile(t, dir, "tls.key", "KEY")

	cache := newTestCache(t, mount)
	sv := NewSecretView(cache, "certificates", "public", "", "", logging.Discard())

	clientCfg := NewIssuerCertificateView(sv, IssuerParams{Issuer: PublicIssuer, Role: RoleClient}).GetIssuerConfig(context.Background())
	require.Nil(t, clientCfg.Certificate)
	require.Nil(t, clientCfg.PrivateKey)
	require.False(t, clientCfg.Verify.Enable, "a public-issuer client has no identity of its own to verify back, so mTLS is never enabled for it")

	serverCfg := NewIssuerCertificateView(sv, IssuerParams{Issuer: PublicIssuer, Role: RoleServer}).GetIssuerConfig(context.Background())
	require.Equal(t, "CERT", string(serverCfg.Certificate))
	require.Equal(t, "KEY", string(serverCfg.PrivateKey))
	require.True(t, serverCfg.Verify.Enable, "role alone doesn't disable mTLS for a public-issuer server; only DisableMTLS does")
}

func TestCertificateViewRebuildsOnlyWhenVersionChanges(t *testing.T) {
	mount := t.TempDir()
	dir := filepath.Join(mount, "certificates", "internal-ca")
	writeFile(t, dir, "tls.crt", "CERT-1")

	cache := newTestCache(t, mount)
	sv := NewSecretView(cache, "certificates", "internal-ca", "", "", logging.Discard())
	cv := NewIssuerCertificateView(sv, IssuerParams{Issuer: "internal-ca", Role: RoleServer})

	ctx := context.Background()
	cfg1 := cv.GetIssuerConfig(ctx)
	require.Equal(t, "CERT-1", string(cfg1.Certificate))

	// Within the TTL the cache won't refetch, so the derived tree must
	// still reflect the original content even if the file changes underneath.
	writeFile(t, dir, "tls.crt", "CERT-2")
	cfg2 := cv.GetIssuerConfig(ctx)
	require.Equal(t, "CERT-1", string(cfg2.Certificate))
}

func TestStorageCertificateView(t *testing.T) {
	mount := t.TempDir()
	dir := filepath.Join(mount, "storage", "db")
	writeFile(t, dir, "tls.crt", "CERT")
	writeFile(t, dir, "tls.key", "KEY")
	writeFile(t, dir, "ca.crt", "CA")

	cache := newTestCache(t, mount)
	sv := NewSecretView(cache, "storage", "db", "", "", logging.Discard())
	cv := NewStorageCertificateView(sv)

	cfg := cv.GetStorageConfig(context.Background())
	require.Equal(t, "CERT", string(cfg.Certificate))
	require.Equal(t, "KEY", string(cfg.PrivateKey))
	require.Equal(t, "CA", string(cfg.CACertificatesPEM))
}
