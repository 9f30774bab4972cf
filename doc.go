// Copyright (c) 2026 The dat Authors
// SPDX-License-Identifier: MIT

// Package dat implements an efficiently-updatable double-array trie: an
// in-memory byte-string key to value map built on two parallel base/check
// arrays.
//
// A child of parent p on label l lives at base[p] XOR l, and the
// transition is only trusted once check[c] == p confirms p actually owns
// it. Slots are carved out of 256-wide aligned blocks; unused slots within
// a block are threaded into a doubly linked empty ring, and blocks
// themselves move between Full, Closed and Open class lists as they fill
// up or free up, so that new keys can usually be placed without disturbing
// already-inserted ones.
//
// The zero value is not ready to use; construct a trie with New or load one
// from disk with Open.
package dat
