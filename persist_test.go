// Copyright (c) 2026 The dat Authors
// SPDX-License-Identifier: MIT

package dat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveOpenRestoreRoundTrip(t *testing.T) {
	tr := New[int]()
	keys := []string{"cat", "car", "cart", "apple", "apply", "ape"}
	for i, k := range keys {
		tr.Update([]byte(k), i+1, nil)
	}
	wantKeys := tr.NumKeys()

	path := filepath.Join(t.TempDir(), "trie.dat")
	require.NoError(t, tr.Save(path))

	reloaded, err := Open[int](path)
	require.NoError(t, err)
	require.NoError(t, reloaded.Restore())

	require.Equal(t, wantKeys, reloaded.NumKeys())
	for i, k := range keys {
		v, ok := reloaded.ExactMatch([]byte(k))
		require.True(t, ok, "key %q should round-trip", k)
		require.Equal(t, i+1, v)
	}

	outOrig := make([]Result[int], wantKeys)
	outReloaded := make([]Result[int], wantKeys)
	nOrig := tr.Dump(outOrig)
	nReloaded := reloaded.Dump(outReloaded)
	require.Equal(t, nOrig, nReloaded)
	for i := 0; i < nOrig; i++ {
		require.Equal(t, outOrig[i].Value, outReloaded[i].Value)
		origSuffix := tr.Suffix(outOrig[i].Node, outOrig[i].Length)
		reloadedSuffix := reloaded.Suffix(outReloaded[i].Node, outReloaded[i].Length)
		require.Equal(t, origSuffix, reloadedSuffix)
	}

	require.NoError(t, reloaded.Test(0))
}

func TestSaveOpenWithoutSidecarLazilyRestores(t *testing.T) {
	tr := New[int]()
	tr.Update([]byte("hello"), 1, nil)
	tr.Update([]byte("help"), 2, nil)

	path := filepath.Join(t.TempDir(), "trie.dat")
	require.NoError(t, tr.Save(path))
	require.NoError(t, os.Remove(path+".sbl"))
	require.NoError(t, os.Remove(path+".manifest"))

	reloaded, err := Open[int](path)
	require.NoError(t, err)
	require.Nil(t, reloaded.info)
	require.Nil(t, reloaded.blocks)

	node, value := reloaded.Update([]byte("hola"), 3, nil)
	require.NotNil(t, reloaded.info)
	require.Equal(t, 3, value)
	require.NotZero(t, node)

	v, ok := reloaded.ExactMatch([]byte("hello"))
	require.True(t, ok)
	require.Equal(t, 1, v)
}

func TestOpenAtOffsetWindow(t *testing.T) {
	tr := New[int]()
	tr.Update([]byte("x"), 7, nil)

	path := filepath.Join(t.TempDir(), "trie.dat")
	require.NoError(t, tr.Save(path))

	reloaded, err := OpenAt[int](path, 0, tr.Size()*nodeRecordSize)
	require.NoError(t, err)
	v, ok := reloaded.ExactMatch([]byte("x"))
	require.True(t, ok)
	require.Equal(t, 7, v)
}
