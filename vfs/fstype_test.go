package vfs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterLookupUnregister(t *testing.T) {
	var r Registry
	fst := &FileSystemType{Name: "ext2"}

	require.NoError(t, r.Register(fst))

	got, err := r.Lookup("ext2")
	require.NoError(t, err)
	require.Same(t, fst, got)

	require.NoError(t, r.Unregister("ext2"))
	_, err = r.Lookup("ext2")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRegistryRegisterDuplicateIsBusy(t *testing.T) {
	var r Registry
	require.NoError(t, r.Register(&FileSystemType{Name: "ext2"}))
	err := r.Register(&FileSystemType{Name: "ext2"})
	require.ErrorIs(t, err, ErrBusy)
}

func TestRegistryUnregisterMissingIsInvalid(t *testing.T) {
	var r Registry
	err := r.Unregister("nope")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestRegistryUnregisterMidList(t *testing.T) {
	var r Registry
	require.NoError(t, r.Register(&FileSystemType{Name: "a"}))
	require.NoError(t, r.Register(&FileSystemType{Name: "b"}))
	require.NoError(t, r.Register(&FileSystemType{Name: "c"}))

	require.NoError(t, r.Unregister("b"))
	_, err := r.Lookup("b")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = r.Lookup("a")
	require.NoError(t, err)
	_, err = r.Lookup("c")
	require.NoError(t, err)
}
