// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package names validates category, secret and key identifiers (spec
// §3, §4.A). Validation is structural only: it rejects anything that
// could traverse a path or inject unexpected characters into a
// filesystem lookup or a vault request path.
package names

import "regexp"

// nameRe matches a non-key name: alphanumerics, '.' or '-', with the
// first and last character required to be alphanumeric. The anchors
// reject the empty string implicitly (there is no character to satisfy
// both ends).
var nameRe = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9.-]*[A-Za-z0-9])?$`)

// keyNameRe additionally allows '_' anywhere in the body, including as
// the first or last character, per spec §3 ("Key names additionally
// allow `_` anywhere").
var keyNameRe = regexp.MustCompile(`^[A-Za-z0-9_]([A-Za-z0-9._-]*[A-Za-z0-9_])?$`)

// ValidCategory reports whether s is a valid category name.
func ValidCategory(s string) bool {
	return nameRe.MatchString(s)
}

// ValidSecretName reports whether s is a valid secret name.
func ValidSecretName(s string) bool {
	return nameRe.MatchString(s)
}

// ValidKeyName reports whether s is a valid key name.
func ValidKeyName(s string) bool {
	return keyNameRe.MatchString(s)
}
