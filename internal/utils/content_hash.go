// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// ContentHash returns the hex-encoded BLAKE2b-256 digest of data.
//
// It fingerprints record bodies so that two writes carrying identical bytes
// can be recognized without comparing full payloads. The empty input hashes
// to the empty string, marking an absent body.
func ContentHash(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
