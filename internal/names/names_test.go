// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package names

import "testing"

func TestValidSecretNames(t *testing.T) {
	cases := map[string]bool{
		"abc":  true,
		"a.b-c": true,
		"a_b":  false, // underscore not legal outside key names
		"":     false,
		".x":   false,
		"x.":   false,
		"x/y":  false,
		"../x": false,
		"a b":  false,
	}
	for name, want := range cases {
		if got := ValidSecretName(name); got != want {
			t.Errorf("ValidSecretName(%q) = %v, want %v", name, got, want)
		}
		if got := ValidCategory(name); got != want {
			t.Errorf("ValidCategory(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestValidKeyNames(t *testing.T) {
	cases := map[string]bool{
		"abc":   true,
		"a.b-c": true,
		"a_b":   true,
		"_a":    true,
		"a_":    true,
		"":      false,
		".x":    false,
		"x.":    false,
		"x/y":   false,
		"../x":  false,
		"a b":   false,
	}
	for name, want := range cases {
		if got := ValidKeyName(name); got != want {
			t.Errorf("ValidKeyName(%q) = %v, want %v", name, got, want)
		}
	}
}
