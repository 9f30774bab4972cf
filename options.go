// Copyright (c) 2026 The dat Authors
// SPDX-License-Identifier: MIT

package dat

import "go.uber.org/zap"

// GrowthPolicy selects how the trie enlarges its backing arrays once the
// current capacity is exhausted. cedar.h picks between these two at
// compile time via the ALLOCATE_MEMORY_AT_ONCE preprocessor flag; here
// they are mutually exclusive runtime choices instead (see DESIGN.md).
type GrowthPolicy int

const (
	// GrowthDoubling repeatedly doubles capacity, up to the hard ceiling
	// of 1<<32 slots. This is the default.
	GrowthDoubling GrowthPolicy = iota

	// GrowthOneShot jumps straight to the budget configured by
	// WithMaxAlloc on the very first growth, then never grows again.
	GrowthOneShot
)

const maxAllocSlots = 1 << 32

type config struct {
	reduced       bool
	maxTrial      int
	growth        GrowthPolicy
	maxAllocBytes int
	trackingNodes int
	logger        *zap.Logger
}

func defaultConfig() *config {
	return &config{
		maxTrial: 1,
		growth:   GrowthDoubling,
	}
}

// Option configures a Trie at construction time.
type Option func(*config)

// WithReduced enables the reduced-trie variant: a key with no extending
// key stores its value directly in its parent's base field instead of
// allocating a dedicated zero-labelled terminal child.
func WithReduced(v bool) Option {
	return func(c *config) { c.reduced = v }
}

// WithMaxTrial bounds how many times find_place(first,last) may fail
// against a given Open block before that block is marked Closed and
// skipped by future family placements. cedar.h defaults this to 1.
func WithMaxTrial(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxTrial = n
		}
	}
}

// WithGrowthPolicy selects doubling or one-shot array growth.
func WithGrowthPolicy(p GrowthPolicy) Option {
	return func(c *config) { c.growth = p }
}

// WithMaxAlloc caps the byte budget the trie's backing arrays may grow
// to. Doubling growth panics once a further doubling would cross the
// budget; one-shot growth requires this option to be set and allocates
// the full budget on its first (and only) growth.
func WithMaxAlloc(bytes int) Option {
	return func(c *config) { c.maxAllocBytes = bytes }
}

// WithTrackingNodes reserves n caller-pinned node slots whose addresses
// are kept up to date across relocation, mirroring cedar.h's
// NUM_TRACKING_NODES template parameter.
func WithTrackingNodes(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.trackingNodes = n
		}
	}
}

// WithLogger injects a structured logger. A nil logger (the default)
// disables logging entirely.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}
