// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package secrets

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/coreplatform/secretcache/internal/secerrors"
)

// PEMKeyReader parses PEM-encoded key material and returns the usable key
// bytes, or an error if the material is malformed. It is the injectable
// "low-level TLS/PEM parser" collaborator named in spec §1; the default
// below is the standard library's own PEM/EC parser, since the pack
// carries no third-party PEM parser distinct from crypto/x509 for this
// narrow a task (see DESIGN.md).
type PEMKeyReader func(pemBytes []byte) ([]byte, error)

func defaultPEMKeyReader(b []byte) ([]byte, error) {
	block, _ := pem.Decode(b)
	if block == nil {
		return nil, errors.New("secrets: no PEM block found in UDP key")
	}
	if _, err := x509.ParseECPrivateKey(block.Bytes); err != nil {
		return nil, fmt.Errorf("secrets: UDP key is not a valid EC private key: %w", err)
	}
	return block.Bytes, nil
}

var udpMu sync.Mutex
var udpKey []byte
var udpKeyInitialized bool

// InitSecretUDPKey loads <mount>/certificates/udp/tls.key via reader (the
// default PEM/EC parser if nil), per spec §4.H "UDP key: extracted on
// explicit initSecretUdpKey". A missing file is not an error; it leaves
// the key absent for GetSecretUDPKey to report.
func InitSecretUDPKey(reader PEMKeyReader) error {
	if reader == nil {
		reader = defaultPEMKeyReader
	}

	path := filepath.Join(MountPath(), "certificates", "udp", "tls.key")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			udpMu.Lock()
			udpKey = nil
			udpKeyInitialized = true
			udpMu.Unlock()
			return nil
		}
		return err
	}

	key, err := reader(raw)
	if err != nil {
		return err
	}

	udpMu.Lock()
	udpKey = key
	udpKeyInitialized = true
	udpMu.Unlock()
	return nil
}

// GetSecretUDPKey returns the key loaded by InitSecretUDPKey. If required
// is true and the key is absent (never initialized, or the file was
// missing), it returns a *secerrors.RequiredSecretMissingError.
func GetSecretUDPKey(required bool) ([]byte, error) {
	udpMu.Lock()
	defer udpMu.Unlock()

	if udpKey == nil {
		if required {
			return nil, secerrors.NewRequiredSecretMissingError("certificates", "udp", "tls.key")
		}
		return nil, nil
	}
	return udpKey, nil
}
