// Copyright (c) 2026 The dat Authors
// SPDX-License-Identifier: MIT

package dat

import "fmt"

// Test recursively checks the base/check/info invariant for the subtree
// rooted at from: every child address base(from)^c must carry check==from
// (the root's own children are exempt from this check).
// Unlike cedar.h's test(), which aborts the process on failure, this
// returns an error so callers can validate an untrusted loaded image
// before trusting it.
func (t *Trie[V]) Test(from int) error {
	base := t.array[from].base(t.reduced)
	c := t.info[from].child
	for {
		to := base ^ int(c)
		if from != 0 && t.array[to].check != from {
			return fmt.Errorf("dat: invariant violated: check[%d]=%d, want %d", to, t.array[to].check, from)
		}
		if c != 0 && t.array[to].base(t.reduced) >= 0 {
			if err := t.Test(to); err != nil {
				return err
			}
		}
		c = t.info[to].sibling
		if c == 0 {
			break
		}
	}
	return nil
}

// MustTest panics if Test reports a violated invariant.
func (t *Trie[V]) MustTest(from int) {
	if err := t.Test(from); err != nil {
		t.log().Error(err.Error())
		panic(err)
	}
}
