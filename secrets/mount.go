// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package secrets is the public API: process-wide singletons (mount
// path, TTL, global cache, mTLS info cache, UDP key) and the
// getSecretValue entry points consumers call (spec §4.H, §7). Grounded
// on the teacher's lazy, lock-guarded singleton construction
// (internal/vault/client_factory.go's onceDoWatcher pattern), generalized
// here from a single sync.Once to mutex-guarded state because the mount
// path and TTL must also be overridable after first use (spec §4.H
// "overridable").
package secrets

import (
	"os"
	"path/filepath"
	"sync"
)

var mountMu sync.Mutex
var mountPath string
var mountInitialized bool

// defaultMountPath returns "<package-folder>/secrets/" (spec §4.H),
// interpreted as a directory named "secrets" next to the running binary.
func defaultMountPath() string {
	exe, err := os.Executable()
	if err != nil {
		return filepath.Join(".", "secrets")
	}
	return filepath.Join(filepath.Dir(exe), "secrets")
}

// MountPath returns the process-wide secret mount path, initializing it
// to its default on first call.
func MountPath() string {
	mountMu.Lock()
	defer mountMu.Unlock()
	if !mountInitialized {
		mountPath = defaultMountPath()
		mountInitialized = true
	}
	return mountPath
}

// SetMountPath overrides the process-wide secret mount path. Safe to call
// concurrently with MountPath. The global cache (GlobalCache) and the
// vaults built by Configure read the mount path once, when they are
// built, so the override takes effect for them only if made before then.
func SetMountPath(p string) {
	mountMu.Lock()
	defer mountMu.Unlock()
	mountPath = p
	mountInitialized = true
}
