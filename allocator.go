// Copyright (c) 2026 The dat Authors
// SPDX-License-Identifier: MIT

package dat

import "go.uber.org/zap"

// nodeFootprint approximates the per-slot byte cost across the node and
// info arrays, used only to size a growth request against WithMaxAlloc.
// It is a budget heuristic, not a wire-format guarantee.
const nodeFootprint = 18

// findPlace returns any free slot: the head of the Closed list's empty
// ring if one exists, else the head of the Open list's, else a freshly
// grown block.
func (t *Trie[V]) findPlace() int {
	if t.bheadC != 0 {
		return t.blocks[t.bheadC].ehead
	}
	if t.bheadO != 0 {
		return t.blocks[t.bheadO].ehead
	}
	return t.addBlock() << 8
}

// findPlaceFamily scans Open blocks for one admitting every label in the
// family (sorted ascending in labels) at a common base, pruning blocks
// via the per-block reject threshold and the maxTrial bound on trials.
func (t *Trie[V]) findPlaceFamily(labels []byte) int {
	if t.bheadO == 0 {
		return t.addBlock() << 8
	}
	nc := len(labels)
	bz := t.blocks[t.bheadO].prev
	bi := t.bheadO
	for {
		b := &t.blocks[bi]
		if b.num >= nc && nc < b.reject {
			e := b.ehead
			for {
				base := e ^ int(labels[0])
				ok := true
				for _, l := range labels[1:] {
					if t.array[base^int(l)].check >= 0 {
						ok = false
						break
					}
				}
				if ok {
					b.ehead = e
					return e
				}
				e = -t.array[e].check
				if e == b.ehead {
					break
				}
			}
		}
		b.reject = nc
		if b.reject < t.reject[b.num] {
			t.reject[b.num] = b.reject
		}
		next := b.next
		b.trial++
		if b.trial == t.maxTrial {
			t.transferBlock(bi, &t.bheadO, &t.bheadC)
		}
		if bi == bz {
			break
		}
		bi = next
	}
	return t.addBlock() << 8
}

// addBlock grows the backing arrays if needed, threads a fresh 256-slot
// block into a cyclic empty ring, and pushes it onto the Open list.
func (t *Trie[V]) addBlock() int {
	if t.size == t.capacity {
		t.grow()
	}
	bi := t.size >> 8
	base := t.size

	t.array[base] = node{baseV: -(base + 255), check: -(base + 1)}
	for i := base + 1; i < base+255; i++ {
		t.array[i] = node{baseV: -(i - 1), check: -(i + 1)}
	}
	t.array[base+255] = node{baseV: -(base + 254), check: -base}

	t.blocks[bi] = block{num: 256, reject: 257, ehead: base}
	t.pushBlockList(bi, &t.bheadO, t.bheadO == 0)

	t.size += 256
	t.log().Info("dat: grew trie by one block", zap.Int("block", bi), zap.Int("size", t.size))
	return bi
}

func (t *Trie[V]) nextCapacity() int {
	switch t.growth {
	case GrowthOneShot:
		if t.capacity > 256 {
			panic("dat: one-shot growth policy exhausted its single allocation")
		}
		if t.maxAllocBytes <= 0 {
			panic("dat: one-shot growth policy requires WithMaxAlloc")
		}
		slots := (t.maxAllocBytes / nodeFootprint) &^ 255
		if slots <= t.capacity {
			panic("dat: max-alloc budget too small for one-shot growth")
		}
		if slots > maxAllocSlots {
			slots = maxAllocSlots
		}
		return slots
	default:
		newCap := t.capacity * 2
		if newCap == 0 {
			newCap = 256
		}
		if newCap > maxAllocSlots {
			newCap = maxAllocSlots
		}
		if newCap <= t.capacity {
			panic("dat: capacity ceiling reached (1<<32 slots)")
		}
		if t.maxAllocBytes > 0 && newCap*nodeFootprint > t.maxAllocBytes {
			panic("dat: growth would exceed the configured max-alloc budget")
		}
		return newCap
	}
}

func (t *Trie[V]) grow() {
	if t.readOnly {
		panic("dat: cannot grow a trie backed by an adopted read-only buffer")
	}
	newCap := t.nextCapacity()

	array := make([]node, newCap)
	copy(array, t.array)
	t.array = array

	info := make([]ninfo, newCap)
	copy(info, t.info)
	t.info = info

	blocks := make([]block, newCap>>8)
	copy(blocks, t.blocks)
	t.blocks = blocks

	t.capacity = newCap
}

// popEnode allocates the slot addressed by base^label (or any free slot,
// via findPlace, when base<0 signals "no children yet") as from's live
// child on label, unthreading it from its block's empty ring and
// transitioning the block's class as needed.
func (t *Trie[V]) popEnode(base, label, from int) int {
	var e int
	if base < 0 {
		e = t.findPlace()
	} else {
		e = base ^ label
	}

	bi := e >> 8
	b := &t.blocks[bi]
	b.num--
	if b.num == 0 {
		if bi != 0 {
			t.transferBlock(bi, &t.bheadC, &t.bheadF)
		}
	} else {
		n := t.array[e]
		t.array[-n.baseV].check = n.check
		t.array[-n.check].baseV = n.baseV
		if e == b.ehead {
			b.ehead = -n.check
		}
		if bi != 0 && b.num == 1 && b.trial != t.maxTrial {
			t.transferBlock(bi, &t.bheadO, &t.bheadC)
		}
	}

	if t.reduced {
		t.array[e].baseV = valueLimit
	} else if label != 0 {
		t.array[e].baseV = -1
	} else {
		t.array[e].baseV = 0
	}
	t.array[e].check = from

	if base < 0 {
		if t.reduced {
			t.array[from].baseV = -(e ^ label) - 1
		} else {
			t.array[from].baseV = e ^ label
		}
	}
	return e
}

// pushEnode frees slot e, re-threading it into its block's empty ring
// and transitioning the block's class as needed.
func (t *Trie[V]) pushEnode(e int) {
	bi := e >> 8
	b := &t.blocks[bi]
	b.num++
	if b.num == 1 {
		b.ehead = e
		t.array[e] = node{baseV: -e, check: -e}
		if bi != 0 {
			t.transferBlock(bi, &t.bheadF, &t.bheadC)
		}
	} else {
		prev := b.ehead
		next := -t.array[prev].check
		t.array[e] = node{baseV: -prev, check: -next}
		t.array[prev].check = -e
		t.array[next].baseV = -e
		if bi != 0 && (b.num == 2 || b.trial == t.maxTrial) {
			t.transferBlock(bi, &t.bheadC, &t.bheadO)
		}
		b.trial = 0
	}
	if b.reject < t.reject[b.num] {
		b.reject = t.reject[b.num]
	}
	t.info[e] = ninfo{}
}

func (t *Trie[V]) popBlockList(bi int, headIn *int, last bool) {
	if last {
		*headIn = 0
		return
	}
	prevIdx := t.blocks[bi].prev
	nextIdx := t.blocks[bi].next
	t.blocks[prevIdx].next = nextIdx
	t.blocks[nextIdx].prev = prevIdx
	if bi == *headIn {
		*headIn = nextIdx
	}
}

func (t *Trie[V]) pushBlockList(bi int, headOut *int, empty bool) {
	b := &t.blocks[bi]
	if empty {
		b.prev, b.next = bi, bi
		*headOut = bi
		return
	}
	oldHead := *headOut
	oldTail := t.blocks[oldHead].prev
	b.prev = oldTail
	b.next = oldHead
	t.blocks[oldTail].next = bi
	t.blocks[oldHead].prev = bi
	*headOut = bi
}

func (t *Trie[V]) transferBlock(bi int, headIn, headOut *int) {
	last := bi == t.blocks[bi].next
	t.popBlockList(bi, headIn, last)
	empty := *headOut == 0 && t.blocks[bi].num != 0
	t.pushBlockList(bi, headOut, empty)
	t.log().Debug("dat: block changed class", zap.Int("block", bi))
}

// pushSibling threads label into from's ascending sibling chain whose
// slots live at base^label. flag selects whether an insertion-point scan
// is needed (an existing chain) or the label can simply be appended (the
// first child of a node with none yet).
func (t *Trie[V]) pushSibling(from, base, label int, flag bool) {
	c := &t.info[from].child
	if flag && label > int(*c) {
		for {
			c = &t.info[base^int(*c)].sibling
			if !(*c != 0 && int(*c) < label) {
				break
			}
		}
	}
	t.info[base^label].sibling = *c
	*c = byte(label)
}

// popSibling unthreads label from from's sibling chain.
func (t *Trie[V]) popSibling(from, base, label int) {
	c := &t.info[from].child
	for int(*c) != label {
		c = &t.info[base^int(*c)].sibling
	}
	*c = t.info[base^label].sibling
}
