// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package vaultclient

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	vaultapi "github.com/hashicorp/vault/api"

	"github.com/coreplatform/secretcache/internal/contents"
	"github.com/coreplatform/secretcache/internal/localsource"
	"github.com/coreplatform/secretcache/internal/metrics"
	"github.com/coreplatform/secretcache/internal/secerrors"
)

// login performs the mode-specific login request and installs the
// resulting token. The caller must hold v.mu: logins are serialized per
// vault so concurrent fetches coalesce onto one login request (spec §5).
func (v *Vault) login(ctx context.Context) (err error) {
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		metrics.VaultLoginTotal.WithLabelValues(v.cfg.VaultID, outcome).Inc()
	}()

	attemptID := uuid.NewString()
	logger := v.logger.WithValues("vault_id", v.cfg.VaultID, "auth_mode", v.cfg.AuthMode, "attempt_id", attemptID)

	var path string
	var body map[string]any

	switch v.cfg.AuthMode {
	case AuthModeK8s:
		jwt, err := os.ReadFile(v.cfg.effectiveSATokenPath())
		if err != nil {
			return secerrors.NewVaultAuthError(v.cfg.VaultID, "reading service-account token", err)
		}
		path = "/v1/auth/kubernetes/login"
		body = map[string]any{
			"jwt":  strings.TrimSpace(string(jwt)),
			"role": v.cfg.Role,
		}

	case AuthModeAppRole:
		secretName := v.cfg.effectiveAppRoleSecretName()
		c, ok, err := localsource.Read(v.mountPath, v.cfg.Category, secretName)
		if err != nil {
			return secerrors.NewVaultAuthError(v.cfg.VaultID, "reading appRole secret_id", err)
		}
		if !ok {
			return secerrors.NewVaultAuthError(v.cfg.VaultID, fmt.Sprintf("local secret %q not found", secretName), nil)
		}
		secretID, ok := contents.Contents(c).GetString(AppRoleSecretIDKey)
		if !ok {
			return secerrors.NewVaultAuthError(v.cfg.VaultID, fmt.Sprintf("key %q missing from %q", AppRoleSecretIDKey, secretName), nil)
		}
		path = "/v1/auth/approle/login"
		body = map[string]any{
			"role_id":   v.cfg.AppRoleID,
			"secret_id": secretID,
		}

	case AuthModeClientCert:
		path = "/v1/auth/cert/login"
		body = map[string]any{
			"name": v.cfg.Role,
		}

	case AuthModeToken:
		// token auth never auto-logins (spec §4.D).
		return secerrors.NewVaultAuthError(v.cfg.VaultID, "static token auth does not support login", nil)

	default:
		return secerrors.NewVaultAuthError(v.cfg.VaultID, fmt.Sprintf("unsupported auth mode %q", v.cfg.AuthMode), nil)
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return secerrors.NewVaultAuthError(v.cfg.VaultID, "encoding login request", err)
	}

	headers := map[string]string{}
	if v.cfg.Namespace != "" {
		headers["X-Vault-Namespace"] = v.cfg.Namespace
	}

	status, respBody, err := v.transport.Post(ctx, v.cfg.BaseURL+path, headers, jsonBody)
	if err != nil {
		logger.Error(err, "vault login request failed")
		return secerrors.NewVaultAuthError(v.cfg.VaultID, "login request failed", err)
	}
	if status != 200 {
		logger.Error(nil, "vault login returned non-200", "status", status)
		return secerrors.NewVaultAuthError(v.cfg.VaultID, fmt.Sprintf("login returned status %d", status), nil)
	}

	var secret vaultapi.Secret
	if err := json.Unmarshal(respBody, &secret); err != nil {
		return secerrors.NewVaultAuthError(v.cfg.VaultID, "decoding login response", err)
	}
	if secret.Auth == nil || secret.Auth.ClientToken == "" {
		return secerrors.NewVaultAuthError(v.cfg.VaultID, "login response missing auth.client_token", nil)
	}

	v.token = secret.Auth.ClientToken
	v.renewable = secret.Auth.Renewable
	if secret.Auth.LeaseDuration > 0 {
		v.expiration = time.Now().Add(time.Duration(secret.Auth.LeaseDuration) * time.Second)
	} else {
		v.expiration = time.Time{}
	}
	v.permissionDenied = false

	logger.Info("vault login succeeded", "renewable", v.renewable)
	return nil
}

// ensureAuthenticated logs in if there is no token or the current token
// has expired. Held across the login HTTP request so concurrent
// fetchers coalesce onto one login (spec §5).
func (v *Vault) ensureAuthenticated(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.token != "" && !v.isTokenExpired(time.Now()) {
		return nil
	}
	if v.cfg.AuthMode == AuthModeToken {
		if v.cfg.StaticToken == "" {
			return secerrors.NewVaultAuthError(v.cfg.VaultID, "no static token configured", nil)
		}
		v.token = v.cfg.StaticToken
		return nil
	}
	return v.login(ctx)
}

// forceRelogin clears the current token and logs in again, used on the
// first 403 of a fetch (spec §4.D "force re-login and retry once").
func (v *Vault) forceRelogin(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cfg.AuthMode == AuthModeToken {
		// token auth never auto-logins; the caller surfaces the 403.
		return secerrors.NewVaultAuthError(v.cfg.VaultID, "permission denied using static token", nil)
	}
	v.token = ""
	v.permissionDenied = true
	return v.login(ctx)
}

// currentToken returns the token to use for a request, without
// triggering a login.
func (v *Vault) currentToken() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.token
}
