package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
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

// Hasher accumulates strings and floats into a SHA-256 digest. Floats are
// written as raw IEEE-754 bits so NaN and signed zero stay distinguishable.
type Hasher struct {
	h   hash.Hash
	buf [8]byte
}

// NewHasher returns an empty Hasher
func NewHasher() *Hasher {
	return &Hasher{h: sha256.New()}
}

// String writes a length-prefixed string
func (hs *Hasher) String(s string) *Hasher {
	binary.BigEndian.PutUint64(hs.buf[:], uint64(len(s)))
	hs.h.Write(hs.buf[:])
	hs.h.Write([]byte(s))
	return hs
}

// Float writes the bit pattern of f
func (hs *Hasher) Float(f float64) *Hasher {
	binary.BigEndian.PutUint64(hs.buf[:], math.Float64bits(f))
	hs.h.Write(hs.buf[:])
	return hs
}

// Int writes i as a 64-bit value
func (hs *Hasher) Int(i int) *Hasher {
	binary.BigEndian.PutUint64(hs.buf[:], uint64(int64(i)))
	hs.h.Write(hs.buf[:])
	return hs
}

// Bool writes b as a single byte
func (hs *Hasher) Bool(b bool) *Hasher {
	if b {
		hs.h.Write([]byte{1})
	} else {
		hs.h.Write([]byte{0})
	}
	return hs
}

// Sum returns the accumulated digest
func (hs *Hasher) Sum() Hash {
	return Hash(hex.EncodeToString(hs.h.Sum(nil)))
}
