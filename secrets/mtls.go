// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package secrets

import (
	"sort"
	"strings"
	"sync"

	"github.com/coreplatform/secretcache/internal/logging"
	"github.com/coreplatform/secretcache/internal/views"
)

type mtlsKey struct {
	issuer       string
	trustedPeers string
	disableMTLS  bool
}

func trustedPeersKey(tp views.TrustedPeers) string {
	if tp.Any || len(tp.Peers) == 0 {
		return "*"
	}
	peers := append([]string(nil), tp.Peers...)
	sort.Strings(peers)
	return strings.Join(peers, ",")
}

var mtlsMu sync.Mutex
var mtlsCache = map[mtlsKey]*views.CertificateView{}

// GetIssuerTLSConfig returns the interned CertificateView for (issuer,
// trustedPeers, disableMTLS), constructing and caching it on first use
// (spec §4.H "mTLS info cache: interns SyncedViews ... keyed by (issuer,
// trustedPeers, disableMTLS) so repeated callers share one updating
// view").
//
// Every entry is created by a lookup through this function; no synthetic
// entry (such as one keyed "local") is inserted, so an issuer named
// "local" is keyed like any other.
func GetIssuerTLSConfig(issuer string, role views.Role, trustedPeers views.TrustedPeers, disableMTLS, acceptSelfSigned bool) *views.CertificateView {
	k := mtlsKey{issuer: issuer, trustedPeers: trustedPeersKey(trustedPeers), disableMTLS: disableMTLS}

	mtlsMu.Lock()
	defer mtlsMu.Unlock()
	if cv, ok := mtlsCache[k]; ok {
		return cv
	}

	sv := views.NewSecretView(GlobalCache(), "certificates", issuer, "", "", logging.New())
	cv := views.NewIssuerCertificateView(sv, views.IssuerParams{
		Issuer:           issuer,
		Role:             role,
		TrustedPeers:     trustedPeers,
		DisableMTLS:      disableMTLS,
		AcceptSelfSigned: acceptSelfSigned,
	})
	mtlsCache[k] = cv
	return cv
}
