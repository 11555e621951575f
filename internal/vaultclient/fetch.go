// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package vaultclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v4"

	"github.com/coreplatform/secretcache/internal/metrics"
)

// location builds the fetch path for secret/version by substituting
// ${secret} and ${version} (version or "1" per spec §4.D) into the
// vault's configured location template, defaulting to the standard
// mount-and-path-shape from vault/requests.go's kvReadRequestV1/V2 when
// Config.LocationTemplate was left unset.
func (v *Vault) location(secret, version string) string {
	if version == "" {
		version = "1"
	}
	path := strings.NewReplacer("${secret}", secret, "${version}", version).Replace(v.cfg.effectiveLocationTemplate())
	return v.cfg.BaseURL + path
}

// Fetch retrieves the raw response body and declared kind for
// (secret, version), per spec §4.D's fetch contract:
// fetch(secret, version) → (kind, bodyBytes) | absent.
//
// ok=false, err=nil covers the "absent" outcomes (404, second 403, and
// any other unexpected status, which is logged). A non-nil err is either
// a network error that survived retries, which the secret cache (§4.F)
// swallows behind stale contents when it has any, or a
// *secerrors.VaultAuthError, which the cache always returns to the caller.
func (v *Vault) Fetch(ctx context.Context, secret, version string) (kind Kind, body []byte, ok bool, err error) {
	defer func() {
		outcome := "absent"
		switch {
		case err != nil:
			outcome = "error"
		case ok:
			outcome = "success"
		}
		metrics.VaultFetchTotal.WithLabelValues(v.cfg.VaultID, outcome).Inc()
	}()

	if err := v.ensureAuthenticated(ctx); err != nil {
		return "", nil, false, err
	}

	url := v.location(secret, version)
	status, respBody, err := v.getWithRetry(ctx, url)
	if err != nil {
		v.logger.Error(err, "vault fetch failed after retries", "vault_id", v.cfg.VaultID)
		return "", nil, false, fmt.Errorf("vaultclient: fetch %s: %w", v.cfg.VaultID, err)
	}

	switch status {
	case 200:
		return v.cfg.effectiveKind(), respBody, true, nil
	case 403:
		return v.fetchAfterForbidden(ctx, url)
	case 404:
		return "", nil, false, nil
	default:
		v.logger.Error(nil, "vault fetch returned unexpected status", "vault_id", v.cfg.VaultID, "status", status)
		return "", nil, false, nil
	}
}

// fetchAfterForbidden implements the "force re-login and retry once"
// rule: a 403 triggers exactly one forced relogin and retry; a second
// 403 is logged and treated as absent (spec §4.D, §7 PermissionDenied).
func (v *Vault) fetchAfterForbidden(ctx context.Context, url string) (Kind, []byte, bool, error) {
	if err := v.forceRelogin(ctx); err != nil {
		return "", nil, false, err
	}

	status, body, err := v.getWithRetry(ctx, url)
	if err != nil {
		return "", nil, false, fmt.Errorf("vaultclient: fetch %s after relogin: %w", v.cfg.VaultID, err)
	}

	switch status {
	case 200:
		return v.cfg.effectiveKind(), body, true, nil
	case 403:
		v.logger.Error(nil, "vault fetch still forbidden after forced relogin", "vault_id", v.cfg.VaultID)
		return "", nil, false, nil
	case 404:
		return "", nil, false, nil
	default:
		v.logger.Error(nil, "vault fetch returned unexpected status after relogin", "vault_id", v.cfg.VaultID, "status", status)
		return "", nil, false, nil
	}
}

// getWithRetry retries only on network-level failure (transport
// returning an error), up to cfg.Retries times with a fixed cfg.RetryWait
// interval (spec §4.D, §9 "bounded count with fixed sleep").
func (v *Vault) getWithRetry(ctx context.Context, url string) (int, []byte, error) {
	headers := map[string]string{
		"X-Vault-Token": v.currentToken(),
	}
	if v.cfg.Namespace != "" {
		headers["X-Vault-Namespace"] = v.cfg.Namespace
	}

	var status int
	var body []byte

	operation := func() error {
		s, b, err := v.transport.Get(ctx, url, headers)
		if err != nil {
			return err
		}
		status, body = s, b
		return nil
	}

	retries := v.cfg.Retries
	if retries < 0 {
		retries = 0
	}
	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(v.cfg.RetryWait), uint64(retries))
	if err := backoff.Retry(operation, bo); err != nil {
		return 0, nil, err
	}
	return status, body, nil
}
