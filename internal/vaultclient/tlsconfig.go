// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package vaultclient

import (
	"crypto/tls"
	"fmt"
	"path/filepath"

	rootcerts "github.com/hashicorp/go-rootcerts"
)

// buildTLSConfig constructs the *tls.Config used to talk to a vault, and
// additionally loads a client certificate for AuthModeClientCert from
// <mountPath>/certificates/vaultclient/<category>/tls.{crt,key} (spec
// §6). Grounded on vault/config.go's MakeVaultClient, which builds
// TLSConfig from CA bytes and (when configured) a client certificate;
// here the CA/cert/key come from the local mount rather than a
// Kubernetes Secret, so go-rootcerts' direct PEM/file loader replaces
// the teacher's k8s-Secret-fetch-then-x509.NewCertPool path.
func buildTLSConfig(cfg Config, mountPath string) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.SkipTLSVerify,
		ServerName:         cfg.TLSServerName,
	}

	rcConfig := &rootcerts.Config{}
	if len(cfg.CACertPEM) > 0 {
		rcConfig.CACertificate = cfg.CACertPEM
	}
	if err := rootcerts.ConfigureTLS(tlsConfig, rcConfig); err != nil {
		return nil, fmt.Errorf("vaultclient: configuring CA trust: %w", err)
	}

	if cfg.AuthMode == AuthModeClientCert {
		dir := filepath.Join(mountPath, "certificates", "vaultclient", cfg.Category)
		certFile := filepath.Join(dir, "tls.crt")
		keyFile := filepath.Join(dir, "tls.key")

		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			return nil, fmt.Errorf("vaultclient: loading client certificate for vault %q: %w", cfg.VaultID, err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}
