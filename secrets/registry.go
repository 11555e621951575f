// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package secrets

import (
	"sync"

	"github.com/go-logr/logr"

	"github.com/coreplatform/secretcache/internal/vaultclient"
	"github.com/coreplatform/secretcache/internal/vaultregistry"
)

var registryMu sync.Mutex
var registry *vaultregistry.Registry

// Configure builds the process-wide vault registry from already-parsed
// vault definitions (spec §6 "Process configuration (read once): `vaults/
// <category>/<vault>`"). Parsing the property-tree/JSON configuration
// itself is an external collaborator (spec §1); callers own that and
// pass the resulting vaultclient.Config values here. Safe to call more
// than once; the most recent call wins, matching "vault registry is
// built once on first use" loosely enough to support tests that need a
// fresh registry per case.
func Configure(specs []vaultclient.Config, logger logr.Logger) error {
	vaults := make([]*vaultclient.Vault, 0, len(specs))
	for _, spec := range specs {
		v, err := vaultclient.New(spec, MountPath(), vaultclient.WithLogger(logger))
		if err != nil {
			return err
		}
		vaults = append(vaults, v)
	}

	registryMu.Lock()
	registry = vaultregistry.New(vaults)
	registryMu.Unlock()

	resetGlobalCache()
	return nil
}

func currentRegistry() *vaultregistry.Registry {
	registryMu.Lock()
	defer registryMu.Unlock()
	if registry == nil {
		return vaultregistry.New(nil)
	}
	return registry
}
