// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package secretcache

import (
	"encoding/binary"
	"sort"

	"golang.org/x/crypto/blake2b"

	"github.com/coreplatform/secretcache/internal/contents"
)

// contentHash computes a deterministic hash of c: 0 if c is absent,
// otherwise blake2b-256 over the keys (sorted for determinism) and
// values, truncated to 64 bits (spec §3 invariant 4, §8 invariant 9:
// "contentHash changes if and only if contents differ").
func contentHash(c contents.Contents) uint64 {
	if c == nil {
		return 0
	}

	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h, _ := blake2b.New256(nil)
	var lenBuf [4]byte
	for _, k := range keys {
		h.Write([]byte{0}) // field separator, avoids "ab","c" == "a","bc" collisions
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(k)))
		h.Write(lenBuf[:])
		h.Write([]byte(k))
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(c[k])))
		h.Write(lenBuf[:])
		h.Write(c[k])
	}

	sum := h.Sum(nil)
	v := binary.BigEndian.Uint64(sum[:8])
	if v == 0 {
		// Vanishingly unlikely, but 0 is reserved to mean "absent".
		v = 1
	}
	return v
}
