// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package secrets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coreplatform/secretcache/internal/views"
)

func resetGlobals(t *testing.T, mount string) {
	t.Helper()
	SetMountPath(mount)
	resetGlobalCache()
	registryMu.Lock()
	registry = nil
	registryMu.Unlock()
	mtlsMu.Lock()
	mtlsCache = map[mtlsKey]*views.CertificateView{}
	mtlsMu.Unlock()
}

func writeSecretFile(t *testing.T, mount, category, name, key, value string) {
	t.Helper()
	dir := filepath.Join(mount, category, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, key), []byte(value), 0o600))
}

func TestGetSecretValueRoundTrip(t *testing.T) {
	mount := t.TempDir()
	resetGlobals(t, mount)
	writeSecretFile(t, mount, "appA", "db", "password", "hunter2")

	v, ok, err := GetSecretValue(context.Background(), "appA", "db", "", "", "password")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "hunter2", string(v))
}

func TestGetSecretValueAbsent(t *testing.T) {
	mount := t.TempDir()
	resetGlobals(t, mount)

	_, ok, err := GetSecretValue(context.Background(), "appA", "db", "", "", "password")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRequireSecretValueErrorsWhenAbsent(t *testing.T) {
	mount := t.TempDir()
	resetGlobals(t, mount)

	_, err := RequireSecretValue(context.Background(), "appA", "db", "", "", "password")
	require.Error(t, err)
}

func TestGetSecretValueRejectsInvalidNames(t *testing.T) {
	mount := t.TempDir()
	resetGlobals(t, mount)

	_, _, err := GetSecretValue(context.Background(), "../etc", "db", "", "", "password")
	require.Error(t, err)
}

func TestGetIssuerTLSConfigIsInterned(t *testing.T) {
	mount := t.TempDir()
	resetGlobals(t, mount)
	writeSecretFile(t, mount, "certificates", "internal-ca", "tls.crt", "CERT")

	v1 := GetIssuerTLSConfig("internal-ca", views.RoleServer, views.AnyPeer, false, false)
	v2 := GetIssuerTLSConfig("internal-ca", views.RoleServer, views.AnyPeer, false, false)
	require.Same(t, v1, v2)

	v3 := GetIssuerTLSConfig("internal-ca", views.RoleServer, views.AnyPeer, true, false)
	require.NotSame(t, v1, v3)
}

func TestInitSecretUDPKeyMissingFileIsAbsent(t *testing.T) {
	mount := t.TempDir()
	resetGlobals(t, mount)

	require.NoError(t, InitSecretUDPKey(nil))
	_, err := GetSecretUDPKey(true)
	require.Error(t, err)

	v, err := GetSecretUDPKey(false)
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestInitSecretUDPKeyUsesInjectedReader(t *testing.T) {
	mount := t.TempDir()
	resetGlobals(t, mount)

	dir := filepath.Join(mount, "certificates", "udp")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tls.key"), []byte("raw-key-bytes"), 0o600))

	reader := func(b []byte) ([]byte, error) { return b, nil }
	require.NoError(t, InitSecretUDPKey(reader))

	b, err := GetSecretUDPKey(true)
	require.NoError(t, err)
	require.Equal(t, "raw-key-bytes", string(b))
}
