// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package names

import "github.com/coreplatform/secretcache/internal/secerrors"

// ValidateCategory returns an *secerrors.InvalidNameError if s is not a
// valid category name.
func ValidateCategory(s string) error {
	if !ValidCategory(s) {
		return secerrors.NewInvalidNameError("category", s)
	}
	return nil
}

// ValidateSecretName returns an *secerrors.InvalidNameError if s is not a
// valid secret name.
func ValidateSecretName(s string) error {
	if !ValidSecretName(s) {
		return secerrors.NewInvalidNameError("secret", s)
	}
	return nil
}

// ValidateKeyName returns an *secerrors.InvalidNameError if s is not a
// valid key name.
func ValidateKeyName(s string) error {
	if !ValidKeyName(s) {
		return secerrors.NewInvalidNameError("key", s)
	}
	return nil
}
