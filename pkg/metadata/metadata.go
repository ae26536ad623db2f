// Package metadata describes generated artifacts by size and content hash.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrHashMismatch indicates artifact content no longer matches its recorded digest.
var ErrHashMismatch = errors.New("hash mismatch")

// Artifact records one written file.
type Artifact struct {
	Name     string `json:"name"`
	SHA256   string `json:"sha256"`
	Bytes    int    `json:"bytes"`
	Products int    `json:"products"`
}

// CalculateHash computes the hex SHA-256 of content.
func CalculateHash(content []byte) string {
	hash := sha256.Sum256(content)

	return hex.EncodeToString(hash[:])
}

// Describe builds the Artifact record for content written under name.
// products is the number of records it holds, or 0 for non-list files.
func Describe(name string, content []byte, products int) Artifact {
	return Artifact{
		Name:     name,
		SHA256:   CalculateHash(content),
		Bytes:    len(content),
		Products: products,
	}
}

// Verify checks that content still matches the artifact's digest.
func (a Artifact) Verify(content []byte) error {
	calculated := CalculateHash(content)
	if calculated != a.SHA256 {
		return fmt.Errorf("%w: %s: expected %s, got %s", ErrHashMismatch, a.Name, a.SHA256, calculated)
	}

	return nil
}

// ShortHash returns the first n hex characters of the digest.
func (a Artifact) ShortHash(n int) string {
	if n <= 0 || n >= len(a.SHA256) {
		return a.SHA256
	}

	return a.SHA256[:n]
}
