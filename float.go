// Copyright (c) 2026 The dat Authors
// SPDX-License-Identifier: MIT

package dat

import "math"

// nanNoValue and nanNoPath are payload-carrying NaN bit patterns reserved
// for a FloatTrie, mirroring cedar.h's NaN<float> specialization
// (N1=0x7f800001, N2=0x7f800002) lifted to float64 width. FloatTrie.Update
// refuses a delta with either pattern; lookups report a miss through their
// bool result rather than through these values.
const (
	nanNoValueBits uint64 = 0x7ff0000000000001
	nanNoPathBits  uint64 = 0x7ff0000000000002
)

var (
	nanNoValue = math.Float64frombits(nanNoValueBits)
	nanNoPath  = math.Float64frombits(nanNoPathBits)
)

// FloatTrie adapts the integer-valued Trie engine to store float64
// values, bit-preserving them through an int64 slot via math.Float64bits.
// Every non-NaN value round-trips exactly. A stored value whose bits read
// as the inner trie's NoValue/NoPath codes (0xffffffffffffffff and
// 0xfffffffffffffffe, both NaN patterns) is reported as absent.
type FloatTrie struct {
	inner *Trie[int64]
}

// NewFloatTrie constructs an empty float64-valued trie.
func NewFloatTrie(opts ...Option) *FloatTrie {
	return &FloatTrie{inner: New[int64](opts...)}
}

func encodeFloat(v float64) int64 {
	return int64(math.Float64bits(v))
}

func decodeFloat(v int64) float64 {
	return math.Float64frombits(uint64(v))
}

// Update inserts key if absent and adds delta to its stored value, using
// genuine floating-point addition (the underlying Trie[int64] only knows
// how to add raw bit patterns as integers, which is not the same thing).
func (t *FloatTrie) Update(key []byte, delta float64, cb MoveFunc) (node int, value float64) {
	bits := math.Float64bits(delta)
	if bits == nanNoValueBits || bits == nanNoPathBits {
		panic("dat: delta collides with a reserved sentinel NaN payload")
	}
	n, existing := t.inner.Update(key, int64(0), cb)
	sum := decodeFloat(existing) + delta
	t.inner.Set(n, encodeFloat(sum))
	return n, sum
}

// ExactMatch reports whether key is present and, if so, its value.
func (t *FloatTrie) ExactMatch(key []byte) (float64, bool) {
	raw, ok := t.inner.ExactMatch(key)
	if !ok {
		return 0, false
	}
	return decodeFloat(raw), true
}

// Erase removes key from the trie.
func (t *FloatTrie) Erase(key []byte) error {
	return t.inner.Erase(key)
}

// NumKeys counts the live keys stored in the trie.
func (t *FloatTrie) NumKeys() int { return t.inner.NumKeys() }
