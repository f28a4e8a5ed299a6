package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// LayoutKey fingerprints the inputs of one derived layout. Two layouts with
// the same key are byte-identical, so a recompute can be skipped.
type LayoutKey Hash

func (k LayoutKey) String() string { return Hash(k).String() }

// IsEmpty checks if the key is empty
func (k LayoutKey) IsEmpty() bool { return Hash(k).IsEmpty() }

// ComputeLayoutKey derives a layout cache key from the layout kind, the
// digests of every data input, the resolved threshold values, and the
// container dimensions. Thresholds are written in sorted key order so the
// key is independent of map iteration.
func ComputeLayoutKey(kind string, dataDigests []Hash, thresholds map[string]float64, width, height float64) LayoutKey {
	var data strings.Builder
	data.WriteString(kind)

	for _, d := range dataDigests {
		data.WriteString(d.String())
	}

	keys := make([]string, 0, len(thresholds))
	for k := range thresholds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		data.WriteString(key)
		data.WriteString(fmt.Sprintf("%v", thresholds[key]))
	}

	data.WriteString(fmt.Sprintf("%vx%v", width, height))

	return LayoutKey(NewHash([]byte(data.String())))
}
