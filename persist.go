// Copyright (c) 2026 The dat Authors
// SPDX-License-Identifier: MIT

package dat

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
)

const nodeRecordSize = 16 // (base_or_value, check), int64 little-endian each
const infoRecordSize = 2  // (child, sibling)
const blockRecordSize = 20

// manifest is the supplemental, CBOR-encoded sidecar recording just
// enough metadata to plan a reload without fully parsing the .sbl image.
// It is additive: Open never depends on it being present.
type manifest struct {
	Size, Capacity int
	Ordered        bool
	Reduced        bool
	Growth         GrowthPolicy
	KeyCount       int
}

// Save writes the primary .dat image (raw little-endian base/check
// records), a .sbl sidecar (block-list heads, info array, block array),
// and a supplemental .manifest (CBOR).
func (t *Trie[V]) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dat: save %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, nodeRecordSize*t.size)
	for i := 0; i < t.size; i++ {
		binary.LittleEndian.PutUint64(buf[i*nodeRecordSize:], uint64(t.array[i].baseV))
		binary.LittleEndian.PutUint64(buf[i*nodeRecordSize+8:], uint64(t.array[i].check))
	}
	if _, err := f.Write(buf); err != nil {
		return fmt.Errorf("dat: save %s: %w", path, err)
	}

	if err := t.saveSidecar(path + ".sbl"); err != nil {
		return err
	}
	return t.saveManifest(path + ".manifest")
}

func (t *Trie[V]) saveSidecar(path string) error {
	if t.info == nil || t.blocks == nil {
		return fmt.Errorf("dat: save sidecar %s: info/blocks not built (call Restore first)", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dat: save sidecar %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, 24)
	binary.LittleEndian.PutUint64(head[0:], uint64(t.bheadF))
	binary.LittleEndian.PutUint64(head[8:], uint64(t.bheadC))
	binary.LittleEndian.PutUint64(head[16:], uint64(t.bheadO))
	if _, err := f.Write(head); err != nil {
		return fmt.Errorf("dat: save sidecar %s: %w", path, err)
	}

	infoBuf := make([]byte, infoRecordSize*t.size)
	for i := 0; i < t.size; i++ {
		infoBuf[i*infoRecordSize] = t.info[i].child
		infoBuf[i*infoRecordSize+1] = t.info[i].sibling
	}
	if _, err := f.Write(infoBuf); err != nil {
		return fmt.Errorf("dat: save sidecar %s: %w", path, err)
	}

	nb := t.size >> 8
	blkBuf := make([]byte, blockRecordSize*nb)
	for i := 0; i < nb; i++ {
		b := t.blocks[i]
		off := i * blockRecordSize
		binary.LittleEndian.PutUint32(blkBuf[off:], uint32(b.prev))
		binary.LittleEndian.PutUint32(blkBuf[off+4:], uint32(b.next))
		binary.LittleEndian.PutUint16(blkBuf[off+8:], uint16(b.num))
		binary.LittleEndian.PutUint16(blkBuf[off+10:], uint16(b.reject))
		binary.LittleEndian.PutUint32(blkBuf[off+12:], uint32(b.trial))
		binary.LittleEndian.PutUint32(blkBuf[off+16:], uint32(b.ehead))
	}
	if _, err := f.Write(blkBuf); err != nil {
		return fmt.Errorf("dat: save sidecar %s: %w", path, err)
	}
	return nil
}

func (t *Trie[V]) saveManifest(path string) error {
	m := manifest{
		Size:     t.size,
		Capacity: t.capacity,
		Ordered:  true,
		Reduced:  t.reduced,
		Growth:   t.growth,
		KeyCount: t.NumKeys(),
	}
	enc, err := cbor.Marshal(m)
	if err != nil {
		return fmt.Errorf("dat: encode manifest %s: %w", path, err)
	}
	if err := os.WriteFile(path, enc, 0o644); err != nil {
		return fmt.Errorf("dat: write manifest %s: %w", path, err)
	}
	return nil
}

// Open loads a trie's primary .dat image (and its .sbl sidecar, if
// present alongside it) from disk.
func Open[V Integer](path string, opts ...Option) (*Trie[V], error) {
	return OpenAt[V](path, 0, 0, opts...)
}

// OpenAt is Open with an explicit byte offset and length window into the
// file, for embedding a trie image inside a larger container file. A
// length of 0 means "to the end of the file".
func OpenAt[V Integer](path string, offset, length int, opts ...Option) (*Trie[V], error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dat: open %s: %w", path, err)
	}
	if length == 0 {
		length = len(data) - offset
	}
	if offset < 0 || length <= 0 || offset+length > len(data) {
		return nil, fmt.Errorf("dat: open %s: invalid offset/length window", path)
	}
	window := data[offset : offset+length]
	if len(window)%nodeRecordSize != 0 {
		return nil, fmt.Errorf("dat: open %s: image size %d is not a multiple of %d", path, len(window), nodeRecordSize)
	}
	size := len(window) / nodeRecordSize

	t := &Trie[V]{
		reduced:       cfg.reduced,
		maxTrial:      cfg.maxTrial,
		growth:        cfg.growth,
		maxAllocBytes: cfg.maxAllocBytes,
		logger:        cfg.logger,
		tracking:      make([]int, cfg.trackingNodes),
	}
	t.array = make([]node, size)
	for i := 0; i < size; i++ {
		t.array[i].baseV = int(int64(binary.LittleEndian.Uint64(window[i*nodeRecordSize:])))
		t.array[i].check = int(int64(binary.LittleEndian.Uint64(window[i*nodeRecordSize+8:])))
	}
	t.size = size
	t.capacity = size

	for i := 0; i <= 256; i++ {
		t.reject[i] = i + 1
	}

	if sidecar, err := os.ReadFile(path + ".sbl"); err == nil {
		if err := t.loadSidecar(sidecar); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Trie[V]) loadSidecar(data []byte) error {
	if len(data) < 24 {
		return fmt.Errorf("dat: sidecar image truncated")
	}
	t.bheadF = int(int64(binary.LittleEndian.Uint64(data[0:])))
	t.bheadC = int(int64(binary.LittleEndian.Uint64(data[8:])))
	t.bheadO = int(int64(binary.LittleEndian.Uint64(data[16:])))
	data = data[24:]

	infoBytes := infoRecordSize * t.size
	if len(data) < infoBytes {
		return fmt.Errorf("dat: sidecar image truncated (info)")
	}
	t.info = make([]ninfo, t.size)
	for i := 0; i < t.size; i++ {
		t.info[i].child = data[i*infoRecordSize]
		t.info[i].sibling = data[i*infoRecordSize+1]
	}
	data = data[infoBytes:]

	nb := t.size >> 8
	blkBytes := blockRecordSize * nb
	if len(data) < blkBytes {
		return fmt.Errorf("dat: sidecar image truncated (blocks)")
	}
	t.blocks = make([]block, nb)
	for i := 0; i < nb; i++ {
		off := i * blockRecordSize
		t.blocks[i] = block{
			prev:   int(int32(binary.LittleEndian.Uint32(data[off:]))),
			next:   int(int32(binary.LittleEndian.Uint32(data[off+4:]))),
			num:    int(int16(binary.LittleEndian.Uint16(data[off+8:]))),
			reject: int(int16(binary.LittleEndian.Uint16(data[off+10:]))),
			trial:  int(int32(binary.LittleEndian.Uint32(data[off+12:]))),
			ehead:  int(int32(binary.LittleEndian.Uint32(data[off+16:]))),
		}
	}
	return nil
}

// SetArray adopts an externally owned, read-only byte buffer as the
// trie's primary node image (e.g. a memory-mapped file). size, in slots,
// defaults to len(buf)/16 when 0. The adopted trie refuses further growth;
// Restore rebuilds info/blocks but does not lift that restriction.
func (t *Trie[V]) SetArray(buf []byte, size int) {
	if size == 0 {
		size = len(buf) / nodeRecordSize
	}
	t.array = make([]node, size)
	for i := 0; i < size; i++ {
		t.array[i].baseV = int(int64(binary.LittleEndian.Uint64(buf[i*nodeRecordSize:])))
		t.array[i].check = int(int64(binary.LittleEndian.Uint64(buf[i*nodeRecordSize+8:])))
	}
	t.size = size
	t.capacity = size
	t.info = nil
	t.blocks = nil
	t.readOnly = true
}
