// Copyright (c) 2026 The dat Authors
// SPDX-License-Identifier: MIT

package dat

import "go.uber.org/zap"

// Trie is an efficiently-updatable double-array trie mapping byte-string
// keys to values of type V. The zero value is not ready to use; build one
// with New.
type Trie[V Integer] struct {
	array  []node
	info   []ninfo
	blocks []block

	bheadF, bheadC, bheadO int
	capacity, size         int

	reduced       bool
	maxTrial      int
	growth        GrowthPolicy
	maxAllocBytes int
	reject        [257]int
	tracking      []int
	logger        *zap.Logger
	readOnly      bool
}

// New constructs an empty trie ready for Update.
func New[V Integer](opts ...Option) *Trie[V] {
	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}
	t := &Trie[V]{
		reduced:       cfg.reduced,
		maxTrial:      cfg.maxTrial,
		growth:        cfg.growth,
		maxAllocBytes: cfg.maxAllocBytes,
		logger:        cfg.logger,
		tracking:      make([]int, cfg.trackingNodes),
	}
	t.initialize()
	return t
}

func (t *Trie[V]) initialize() {
	t.array = make([]node, 256)
	t.info = make([]ninfo, 256)
	t.blocks = make([]block, 1)
	t.blocks[0].num = 256
	t.blocks[0].reject = 257

	if t.reduced {
		t.array[0] = node{baseV: -1, check: -1}
	} else {
		t.array[0] = node{baseV: 0, check: -1}
	}
	for i := 1; i < 256; i++ {
		bv := -(i - 1)
		if i == 1 {
			bv = -255
		}
		ck := -(i + 1)
		if i == 255 {
			ck = -1
		}
		t.array[i] = node{baseV: bv, check: ck}
	}
	t.blocks[0].ehead = 1
	t.capacity = 256
	t.size = 256

	for i := 0; i <= 256; i++ {
		t.reject[i] = i + 1
	}
}

// Update inserts key if absent and adds delta to its stored value
// (delta itself, for a newly created key), returning the node address the
// value lives at and the value now stored there. cb, if non-nil, is
// invoked for every slot relocated by conflict resolution while the key
// is threaded in.
func (t *Trie[V]) Update(key []byte, delta V, cb MoveFunc) (node int, value V) {
	return t.UpdateFrom(key, 0, 0, delta, cb)
}

// UpdateFrom is Update starting from an existing node/pos pair, e.g. to
// resume an Update after a Traverse matched a shared prefix.
func (t *Trie[V]) UpdateFrom(key []byte, from, pos int, delta V, cb MoveFunc) (node int, value V) {
	if len(key) == 0 && from == 0 {
		panic("dat: update called with a zero-length key from the root")
	}
	if t.info == nil || t.blocks == nil {
		_ = t.Restore()
	}
	for ; pos < len(key); pos++ {
		// Under the reduced-trie variant, from may already hold a value
		// embedded directly in its base field. The key is about to extend
		// past it, so that value must be demoted into an explicit
		// 0-labelled child before descending any further.
		if t.reduced && t.array[from].baseV >= 0 && t.array[from].baseV != valueLimit {
			v := t.array[from].baseV
			child := t.follow(&from, 0, cb)
			t.array[child].baseV = v
		}
		from = t.follow(&from, key[pos], cb)
	}

	var to int
	if t.reduced && t.array[from].baseV >= 0 {
		// A leaf with no children yet stores its value directly in from
		// rather than always allocating a dedicated terminal child.
		to = from
	} else {
		to = t.follow(&from, 0, cb)
	}
	if t.reduced && t.array[to].baseV == valueLimit {
		t.array[to].baseV = 0
	}
	t.array[to].baseV += int(delta)
	return to, V(t.array[to].baseV)
}

// Set overwrites the value stored at node directly, bypassing the
// delta-add semantics of Update. node must be a live value slot, such as
// the one returned by Update. The node reported by ExactMatchFrom or an
// enumeration is the key's last node, which is the value slot only under
// the reduced-trie variant when that node holds its value directly.
func (t *Trie[V]) Set(node int, v V) {
	t.array[node].baseV = int(v)
}

// Erase removes key from the trie. It reports ErrKeyNotFound if key is
// not present. No compaction runs afterward: freed slots simply rejoin
// their block's empty ring.
func (t *Trie[V]) Erase(key []byte) error {
	from, pos := 0, 0
	r := t.find(key, &from, &pos, len(key))
	if r == NoPath || r == NoValue {
		return ErrKeyNotFound
	}
	t.eraseNode(from)
	return nil
}

// eraseNode walks upward from the value leaf (or, under the reduced-trie
// variant, from the node that held the value directly) pushing slots to
// their block's empty ring, stopping at the first ancestor that still has
// a remaining sibling after this label is unthreaded there.
func (t *Trie[V]) eraseNode(from int) {
	var e int
	if t.reduced && t.array[from].baseV >= 0 {
		e = from
		from = t.array[e].check
	} else {
		e = t.array[from].base(t.reduced) ^ 0
	}

	for {
		n := t.array[from]
		child := t.info[from].child
		hasSibling := t.info[n.base(t.reduced)^int(child)].sibling != 0
		if hasSibling {
			t.popSibling(from, n.base(t.reduced), n.base(t.reduced)^e)
		}
		t.pushEnode(e)
		if hasSibling {
			break
		}
		e = from
		from = t.array[from].check
	}
}

// ExactMatchFrom looks up key starting at node from/byte offset pos,
// reporting the value, the number of key bytes consumed, the trie node
// the match ended at, and a status distinguishing a genuine hit from the
// two kinds of miss.
func (t *Trie[V]) ExactMatchFrom(key []byte, from, pos int) (value V, length, node int, status MatchStatus) {
	r := t.find(key, &from, &pos, len(key))
	return V(r), pos, from, statusFromCode(r)
}

// ExactMatch reports whether key is present and, if so, its value.
func (t *Trie[V]) ExactMatch(key []byte) (V, bool) {
	v, _, _, status := t.ExactMatchFrom(key, 0, 0)
	return v, status == Found
}

// CommonPrefixSearch finds every prefix of key (starting from node from)
// that is itself a stored key, writing up to len(out) results in
// increasing length order and returning the total count found.
func (t *Trie[V]) CommonPrefixSearch(key []byte, from int, out []Result[V]) int {
	num, pos := 0, 0
	for pos < len(key) {
		r := t.find(key, &from, &pos, pos+1)
		switch r {
		case NoValue:
			continue
		case NoPath:
			return num
		default:
			if num < len(out) {
				out[num] = Result[V]{Value: V(r), Length: pos, Node: from}
			}
			num++
		}
	}
	return num
}

// Traverse advances cur by matching as much of key as the trie allows,
// returning the value at cur's resulting position if it names a stored
// key. Repeated calls with successive key fragments and the same cur walk
// the trie incrementally, the way a streaming tokenizer would.
func (t *Trie[V]) Traverse(key []byte, cur *Cursor) (V, bool) {
	pos := 0
	r := t.find(key, &cur.From, &pos, len(key))
	cur.Pos += pos
	if r == NoPath || r == NoValue {
		return zeroValue[V](), false
	}
	return V(r), true
}

// NumKeys counts the live terminal value slots in the trie: an O(size)
// scan, matching cedar.h's num_keys(), which trades an incremental
// counter for simplicity and immunity to undercount/overcount bugs across
// relocation.
func (t *Trie[V]) NumKeys() int {
	n := 0
	for to := 0; to < t.size; to++ {
		if t.array[to].check < 0 {
			continue
		}
		if t.reduced {
			if t.array[to].baseV >= 0 {
				n++
			}
			continue
		}
		p := t.array[to].check
		if t.array[p].base(false) == to {
			n++
		}
	}
	return n
}

// Size returns the number of slots currently initialized (a multiple of
// 256).
func (t *Trie[V]) Size() int { return t.size }

// Capacity returns the number of slots currently allocated across the
// node, info and block arrays (always >= Size).
func (t *Trie[V]) Capacity() int { return t.capacity }

// NonzeroSize counts slots with a live (non-negative) check value.
func (t *Trie[V]) NonzeroSize() int {
	n := 0
	for i := 0; i < t.size; i++ {
		if t.array[i].check >= 0 {
			n++
		}
	}
	return n
}

// SetMaxAlloc sets (or changes) the byte budget WithGrowthPolicy enforces
// on future growth.
func (t *Trie[V]) SetMaxAlloc(bytes int) {
	t.maxAllocBytes = bytes
}

// Reduced reports whether this trie was built with WithReduced(true).
func (t *Trie[V]) Reduced() bool { return t.reduced }
