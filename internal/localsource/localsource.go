// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package localsource reads secrets from the container-orchestration
// filesystem-mount convention: one regular file per key under
// <mount>/<category>/<name>/ (spec §4.C, §6).
package localsource

import (
	"os"
	"path/filepath"

	"github.com/coreplatform/secretcache/internal/contents"
	"github.com/coreplatform/secretcache/internal/names"
)

// Read loads the secret (category, name) from directory
// <mount>/<category>/<name>/. It returns (nil, false) if the directory is
// missing or contains no valid-keyed regular files. Binary values are
// preserved verbatim.
func Read(mount, category, name string) (contents.Contents, bool, error) {
	dir := filepath.Join(mount, category, name)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	out := contents.Contents{}
	for _, ent := range entries {
		if !ent.Type().IsRegular() {
			continue
		}
		key := ent.Name()
		if !names.ValidKeyName(key) {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, key))
		if err != nil {
			return nil, false, err
		}
		out[key] = b
	}

	if len(out) == 0 {
		return nil, false, nil
	}
	return out, true, nil
}
