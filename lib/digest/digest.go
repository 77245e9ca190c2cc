// Copyright 2026 The Sealbox Authors
// SPDX-License-Identifier: Apache-2.0

// Package digest computes the SHA-256 content digests that anchor the
// evidence-bundle integrity contract. Every file listed in a bundle
// manifest is identified by its digest, and the manifest's root hash
// is itself a digest over the per-file digests.
//
// SHA-256 is a wire-format commitment: the manifest schema names the
// field "sha256", and existing bundles in the field were written with
// it. Changing the algorithm invalidates every stored bundle.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Size is the digest length in bytes.
const Size = sha256.Size

// chunkSize is the read buffer used when streaming files through the
// hasher. Large enough to keep syscall overhead negligible, small
// enough that hashing never holds a whole proof PDF in memory.
const chunkSize = 256 * 1024

// Digest is a 32-byte SHA-256 digest.
type Digest [Size]byte

// HashBytes computes the digest of content. It cannot fail.
func HashBytes(content []byte) Digest {
	return Digest(sha256.Sum256(content))
}

// HashFile computes the digest of the file at path by streaming it in
// fixed-size chunks. Open and read failures are wrapped and returned.
func HashFile(path string) (Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := sha256.New()
	buffer := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(hasher, file, buffer); err != nil {
		return Digest{}, fmt.Errorf("reading %s for hashing: %w", path, err)
	}

	var result Digest
	copy(result[:], hasher.Sum(nil))
	return result, nil
}

// String returns the canonical lowercase-hex rendering. This is the
// form stored in manifests and printed in logs.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Parse parses a 64-character lowercase-hex string into a Digest.
func Parse(hexString string) (Digest, error) {
	var result Digest
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return result, fmt.Errorf("parsing digest: %w", err)
	}
	if len(decoded) != Size {
		return result, fmt.Errorf("digest is %d bytes, want %d", len(decoded), Size)
	}
	copy(result[:], decoded)
	return result, nil
}
