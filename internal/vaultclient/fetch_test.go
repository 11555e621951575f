// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package vaultclient

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeServiceAccountToken(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(p, []byte("fake-jwt"), 0o600))
	return p
}

// fakeTransport lets tests script a sequence of status/body responses
// without standing up a real listener, mirroring the teacher's
// httptest-server style (vault/client_test.go) but even more directly
// since Transport itself is the injectable seam (spec §1, §9).
type fakeTransport struct {
	loginStatus int
	loginBody   []byte

	getResponses []struct {
		status int
		body   []byte
	}
	getCalls int32
}

func (f *fakeTransport) Post(ctx context.Context, url string, headers map[string]string, jsonBody []byte) (int, []byte, error) {
	return f.loginStatus, f.loginBody, nil
}

func (f *fakeTransport) Get(ctx context.Context, url string, headers map[string]string) (int, []byte, error) {
	i := atomic.AddInt32(&f.getCalls, 1) - 1
	if int(i) >= len(f.getResponses) {
		r := f.getResponses[len(f.getResponses)-1]
		return r.status, r.body, nil
	}
	r := f.getResponses[i]
	return r.status, r.body, nil
}

func loginBody(t *testing.T, token string, leaseSeconds int, renewable bool) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"auth": map[string]any{
			"client_token":   token,
			"renewable":      renewable,
			"lease_duration": leaseSeconds,
		},
	})
	require.NoError(t, err)
	return b
}

func TestFetch403TriggersOneForcedRelogin(t *testing.T) {
	ft := &fakeTransport{
		loginStatus: 200,
		loginBody:   loginBody(t, "tok-1", 60, true),
		getResponses: []struct {
			status int
			body   []byte
		}{
			{403, nil},
			{200, []byte(`{"data":{"data":{"k":"v"}}}`)},
		},
	}

	v, err := New(Config{
		VaultID: "v1", Category: "system", AuthMode: AuthModeK8s, Role: "r", Kind: KindKVv2,
		ServiceAccountTokenPath: writeServiceAccountToken(t),
	}, t.TempDir(), WithTransport(ft))
	require.NoError(t, err)

	kind, body, ok, err := v.Fetch(context.Background(), "s", "")
	require.NoError(t, err)
	require.True(t, ok)

	c, ok := Unwrap(kind, body)
	require.True(t, ok)
	require.Equal(t, "v", string(c["k"]))
}

func TestFetchSecondForbiddenReturnsAbsent(t *testing.T) {
	ft := &fakeTransport{
		loginStatus: 200,
		loginBody:   loginBody(t, "tok-1", 60, true),
		getResponses: []struct {
			status int
			body   []byte
		}{
			{403, nil},
			{403, nil},
		},
	}

	v, err := New(Config{
		VaultID: "v1", Category: "system", AuthMode: AuthModeK8s, Role: "r",
		ServiceAccountTokenPath: writeServiceAccountToken(t),
	}, t.TempDir(), WithTransport(ft))
	require.NoError(t, err)

	_, _, ok, err := v.Fetch(context.Background(), "s", "")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFetch404ReturnsAbsent(t *testing.T) {
	ft := &fakeTransport{
		loginStatus: 200,
		loginBody:   loginBody(t, "tok-1", 0, false),
		getResponses: []struct {
			status int
			body   []byte
		}{
			{404, nil},
		},
	}

	v, err := New(Config{VaultID: "v1", Category: "system", AuthMode: AuthModeToken, StaticToken: "static"}, t.TempDir(), WithTransport(ft))
	require.NoError(t, err)

	_, _, ok, err := v.Fetch(context.Background(), "s", "")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUnwrapKVVersions(t *testing.T) {
	v2Body := []byte(`{"data":{"data":{"k":"v"}}}`)
	c, ok := Unwrap(KindKVv2, v2Body)
	require.True(t, ok)
	require.Equal(t, "v", string(c["k"]))

	// Same body under kv_v1 interpretation has no "data/data" path.
	_, ok = Unwrap(KindKVv1, v2Body)
	require.False(t, ok)

	v1Body := []byte(`{"data":{"k":"v"}}`)
	c, ok = Unwrap(KindKVv1, v1Body)
	require.True(t, ok)
	require.Equal(t, "v", string(c["k"]))
}
