// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package urlident splits http(s) URLs into their components and derives
// a deterministic, filesystem-safe secret identity from them (spec
// §4.B). Grounded on the teacher's deterministic-key-from-parts pattern
// in vault/cache_key.go (computeClientCacheKey): combine stable parts,
// then hash.
package urlident

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Parts is the decomposition of a scheme://[user[:pass]@]host[:port][/path] URL.
type Parts struct {
	Scheme   string
	User     string
	Password string
	Host     string
	Port     int
	Path     string
}

// Split parses rawURL, restricting scheme to http/https (case-insensitive).
func Split(rawURL string) (Parts, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Parts{}, fmt.Errorf("urlident: parse %q: %w", rawURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return Parts{}, fmt.Errorf("urlident: unsupported scheme %q", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return Parts{}, fmt.Errorf("urlident: missing host in %q", rawURL)
	}

	var port int
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return Parts{}, fmt.Errorf("urlident: invalid port %q: %w", p, err)
		}
	}

	var user, pass string
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}

	return Parts{
		Scheme:   scheme,
		User:     user,
		Password: pass,
		Host:     host,
		Port:     port,
		Path:     u.Path,
	}, nil
}
