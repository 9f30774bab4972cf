// Copyright (c) 2026 The dat Authors
// SPDX-License-Identifier: MIT

package dat

import "go.uber.org/zap"

// log returns a usable *zap.Logger even when none was configured via
// WithLogger, so call sites never need a nil check.
func (t *Trie[V]) log() *zap.Logger {
	if t.logger == nil {
		return zap.NewNop()
	}
	return t.logger
}
