// Copyright (c) 2026 The dat Authors
// SPDX-License-Identifier: MIT

package dat

import "testing"

func TestReducedTrieBasicOperations(t *testing.T) {
	tr := New[int](WithReduced(true))
	tr.Update([]byte("cat"), 1, nil)
	tr.Update([]byte("car"), 2, nil)
	tr.Update([]byte("cart"), 3, nil)

	for _, tc := range []struct {
		key  string
		want int
	}{{"cat", 1}, {"car", 2}, {"cart", 3}} {
		v, ok := tr.ExactMatch([]byte(tc.key))
		if !ok || v != tc.want {
			t.Fatalf("ExactMatch(%q) = (%d,%v), want (%d,true)", tc.key, v, ok, tc.want)
		}
	}
	if _, _, _, status := tr.ExactMatchFrom([]byte("ca"), 0, 0); status != MissingValue {
		t.Fatalf("reduced trie: ExactMatchFrom(ca) status=%v, want MissingValue", status)
	}

	if err := tr.Test(0); err != nil {
		t.Fatalf("Test(0): %v", err)
	}
	if got := tr.NumKeys(); got != 3 {
		t.Fatalf("NumKeys() = %d, want 3", got)
	}

	if err := tr.Erase([]byte("car")); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	if _, ok := tr.ExactMatch([]byte("car")); ok {
		t.Fatalf("car should be gone after Erase")
	}
	if v, ok := tr.ExactMatch([]byte("cart")); !ok || v != 3 {
		t.Fatalf("cart disturbed by erasing car: (%d,%v)", v, ok)
	}
}

func TestReducedTrieEnumeration(t *testing.T) {
	tr := New[int](WithReduced(true))
	for i, k := range []string{"a", "ab", "abc"} {
		tr.Update([]byte(k), i+1, nil)
	}
	out := make([]Result[int], 3)
	n := tr.Dump(out)
	if n != 3 {
		t.Fatalf("Dump: got %d, want 3", n)
	}
	for _, r := range out[:n] {
		got := string(tr.Suffix(r.Node, r.Length))
		want := map[int]string{1: "a", 2: "ab", 3: "abc"}[r.Value]
		if got != want {
			t.Fatalf("Suffix for value %d = %q, want %q", r.Value, got, want)
		}
	}
}
