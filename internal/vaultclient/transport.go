// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package vaultclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"time"
)

// Transport is the injectable HTTP capability the spec's design notes
// (§9) call for: "injectable capability post(url, headers, jsonBody) →
// (status, body) | error and get(url, headers) → (status, body) |
// error; the core does not own transport details." The HTTP client
// transport itself is an explicit external collaborator per spec §1, so
// this module depends only on this narrow interface and ships one
// concrete implementation.
type Transport interface {
	Post(ctx context.Context, url string, headers map[string]string, jsonBody []byte) (status int, body []byte, err error)
	Get(ctx context.Context, url string, headers map[string]string) (status int, body []byte, err error)
}

// httpTransport is the default Transport, a thin wrapper over
// *http.Client. TLS material (CA trust, optional client certificate) is
// fixed at construction time via NewHTTPTransport.
type httpTransport struct {
	client *http.Client
}

// NewHTTPTransport builds the default Transport for a vault connection.
func NewHTTPTransport(tlsConfig *tls.Config, connectTimeout, readTimeout time.Duration) Transport {
	dialer := &net.Dialer{Timeout: connectTimeout}
	tr := &http.Transport{
		TLSClientConfig: tlsConfig,
		DialContext:     dialer.DialContext,
	}
	return &httpTransport{
		client: &http.Client{
			Transport: tr,
			Timeout:   readTimeout,
		},
	}
}

func (t *httpTransport) Post(ctx context.Context, url string, headers map[string]string, jsonBody []byte) (int, []byte, error) {
	return t.do(ctx, http.MethodPost, url, headers, jsonBody)
}

func (t *httpTransport) Get(ctx context.Context, url string, headers map[string]string) (int, []byte, error) {
	return t.do(ctx, http.MethodGet, url, headers, nil)
}

func (t *httpTransport) do(ctx context.Context, method, url string, headers map[string]string, reqBody []byte) (int, []byte, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		bodyReader = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return 0, nil, err
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, respBody, nil
}
