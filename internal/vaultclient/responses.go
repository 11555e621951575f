// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package vaultclient

import (
	"encoding/json"

	"github.com/coreplatform/secretcache/internal/contents"
)

// Unwrap decodes a vault response body per its declared Kind (spec §4.D
// body decoding): kv_v1 unwraps the JSON path "data"; kv_v2 unwraps
// "data/data". Any other shape (or a kind this function does not
// recognize) yields (nil, false). Grounded on vault/responses.go's
// kvV1Response/kvV2Response Data() methods.
func Unwrap(kind Kind, body []byte) (contents.Contents, bool) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, false
	}

	var payload map[string]any
	switch kind {
	case KindKVv1:
		payload, _ = raw["data"].(map[string]any)
		if isNestedV2Shape(payload) {
			// A kv_v2 body's "data" field is itself {"data": {...}}: every
			// leaf of that outer map is an object, not a scalar. Reading
			// that shape as kv_v1 must yield absent rather than the wrong
			// (outer) payload (spec §8 invariant 8, scenario 6).
			return nil, false
		}
	case KindKVv2:
		if outer, ok := raw["data"].(map[string]any); ok {
			payload, _ = outer["data"].(map[string]any)
		}
	default:
		return nil, false
	}

	if payload == nil {
		return nil, false
	}

	out := contents.Contents{}
	for k, v := range payload {
		switch val := v.(type) {
		case string:
			out[k] = []byte(val)
		default:
			b, err := json.Marshal(val)
			if err != nil {
				continue
			}
			out[k] = b
		}
	}
	return out, true
}

// isNestedV2Shape reports whether payload's values are themselves objects,
// the shape produced when a kv_v2 body's outer "data" field is mistakenly
// read as a kv_v1 payload. An empty or nil payload is not considered
// nested: kv_v1 secrets with no keys are a legitimate, if unusual, shape.
func isNestedV2Shape(payload map[string]any) bool {
	if len(payload) == 0 {
		return false
	}
	for _, v := range payload {
		if _, ok := v.(map[string]any); !ok {
			return false
		}
	}
	return true
}
