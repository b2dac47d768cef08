// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 keyed hash of a build product. Digests
// are recorded in the result log and printed after a successful build,
// so a bitstream can be matched to the exact run that produced it.
type Digest [32]byte

// productDomainKey is the fixed 32-byte key for product hashing.
// Keyed hashing gives domain separation: the same bytes hashed in
// another context can never collide with a product digest. The value
// is the ASCII domain name zero-padded to 32 bytes, readable in hex
// dumps without weakening the construction (BLAKE3 treats the key as
// an opaque 32-byte value).
var productDomainKey = [32]byte{
	'b', 'i', 't', 'f', 'o', 'r', 'g', 'e', '.', 'p', 'r', 'o', 'd', 'u', 'c', 't',
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// DigestBytes computes the product digest of in-memory data.
func DigestBytes(data []byte) Digest {
	hasher := newProductHasher()
	hasher.Write(data)
	return sumDigest(hasher)
}

// DigestFile computes the product digest of a file, streaming its
// content so bitstreams larger than memory pose no problem.
func DigestFile(path string) (Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("digesting %s: %w", path, err)
	}
	defer file.Close()

	hasher := newProductHasher()
	if _, err := io.Copy(hasher, file); err != nil {
		return Digest{}, fmt.Errorf("digesting %s: %w", path, err)
	}
	return sumDigest(hasher), nil
}

// String returns the canonical hex encoding used in logs and CLI
// output.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// ParseDigest parses a 64-character hex string into a Digest.
func ParseDigest(hexString string) (Digest, error) {
	var digest Digest
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("parsing product digest: %w", err)
	}
	if len(decoded) != 32 {
		return digest, fmt.Errorf("product digest is %d bytes, want 32", len(decoded))
	}
	copy(digest[:], decoded)
	return digest, nil
}

func newProductHasher() *blake3.Hasher {
	// NewKeyed only fails for a wrong key length, which the fixed-size
	// key rules out.
	hasher, err := blake3.NewKeyed(productDomainKey[:])
	if err != nil {
		panic("artifact: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	return hasher
}

func sumDigest(hasher *blake3.Hasher) Digest {
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}
