// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package secrets

import (
	"context"

	"github.com/coreplatform/secretcache/internal/names"
	"github.com/coreplatform/secretcache/internal/secerrors"
)

// GetSecretValue resolves (category, name, vaultID?, version?) and
// returns the value for key, or (nil, false, nil) if the secret or key is
// absent (spec §7 "the non-required form returns absent"). vaultID and
// version may be empty, selecting the resolution policy of spec §4.F.
func GetSecretValue(ctx context.Context, category, name, vaultID, version, key string) ([]byte, bool, error) {
	if err := validateEntry(category, name, key); err != nil {
		return nil, false, err
	}

	contents, ok, err := GlobalCache().Get(ctx, category, name, vaultID, version)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	v, ok := contents.Get(key)
	return v, ok, nil
}

// GetSecretValueString is GetSecretValue with the value decoded as text.
func GetSecretValueString(ctx context.Context, category, name, vaultID, version, key string) (string, bool, error) {
	b, ok, err := GetSecretValue(ctx, category, name, vaultID, version, key)
	if err != nil || !ok {
		return "", ok, err
	}
	return string(b), true, nil
}

// RequireSecretValue resolves the same as GetSecretValue but returns a
// *secerrors.RequiredSecretMissingError instead of (nil, false) when the
// secret or key is absent (spec §7 "getSecretValue(..., required=true)
// throws if the secret or the requested key is absent").
func RequireSecretValue(ctx context.Context, category, name, vaultID, version, key string) ([]byte, error) {
	b, ok, err := GetSecretValue(ctx, category, name, vaultID, version, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, secerrors.NewRequiredSecretMissingError(category, name, key)
	}
	return b, nil
}

func validateEntry(category, name, key string) error {
	if err := names.ValidateCategory(category); err != nil {
		return err
	}
	if err := names.ValidateSecretName(name); err != nil {
		return err
	}
	if key != "" {
		if err := names.ValidateKeyName(key); err != nil {
			return err
		}
	}
	return nil
}
