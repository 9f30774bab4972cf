// Copyright (c) 2026 The dat Authors
// SPDX-License-Identifier: MIT

package dat

import (
	"sort"
	"testing"
)

func TestBeginNextLexicographicOrder(t *testing.T) {
	tr := New[int]()
	keys := []string{"dog", "cat", "ant", "cart", "apple", "ape"}
	for i, k := range keys {
		tr.Update([]byte(k), i, nil)
	}

	w, v, ok := tr.Begin(0)
	var got []string
	for ok {
		got = append(got, string(tr.Suffix(w.Node(), w.Depth())))
		_ = v
		v, ok = tr.Next(w)
	}

	want := append([]string(nil), keys...)
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("enumerated %d keys, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("enumeration[%d] = %q, want %q (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestRandomKeysDumpRoundTripsAsSet(t *testing.T) {
	tr := New[int]()
	seed := uint64(0x2545F4914F6CDD1D)
	next := func() uint64 {
		seed ^= seed << 13
		seed ^= seed >> 7
		seed ^= seed << 17
		return seed
	}

	const n = 2000
	input := make(map[string]int, n)
	for len(input) < n {
		length := int(next()%32) + 1
		buf := make([]byte, length)
		for i := range buf {
			buf[i] = byte(next())
		}
		key := string(buf)
		if _, exists := input[key]; exists {
			continue
		}
		input[key] = len(input) + 1
	}
	for k, v := range input {
		tr.Update([]byte(k), v, nil)
	}
	if got := tr.NumKeys(); got != len(input) {
		t.Fatalf("NumKeys() = %d, want %d", got, len(input))
	}

	out := make([]Result[int], len(input))
	got := tr.Dump(out)
	if got != len(input) {
		t.Fatalf("Dump returned %d results, want %d", got, len(input))
	}
	seen := make(map[string]bool, len(input))
	for _, r := range out[:got] {
		key := string(tr.Suffix(r.Node, r.Length))
		want, ok := input[key]
		if !ok {
			t.Fatalf("Dump produced key %q not in the input set", key)
		}
		if want != r.Value {
			t.Fatalf("key %q: value %d, want %d", key, r.Value, want)
		}
		seen[key] = true
	}
	if len(seen) != len(input) {
		t.Fatalf("saw %d distinct keys, want %d", len(seen), len(input))
	}

	if err := tr.Test(0); err != nil {
		t.Fatalf("Test(0): %v", err)
	}
}
