package vfs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDentryAddChildSetsParentAndName(t *testing.T) {
	root := NewDentry(&Inode{Ino: 1})
	child := &Dentry{}
	root.AddChild("etc", child)

	require.Same(t, root, child.Parent)
	require.Equal(t, "etc", child.Name)
	require.Same(t, child, root.Child("etc"))
	require.EqualValues(t, 1, root.NumChildren())
}

func TestDentryRemoveChild(t *testing.T) {
	root := NewDentry(&Inode{Ino: 1})
	root.AddChild("etc", &Dentry{})
	root.RemoveChild("etc")

	require.Nil(t, root.Child("etc"))
	require.EqualValues(t, 0, root.NumChildren())
}

func TestDentryChildMissingReturnsNil(t *testing.T) {
	root := NewDentry(&Inode{Ino: 1})
	require.Nil(t, root.Child("nope"))
}

func TestDentryMountedReturnsSelfWhenNotMountpoint(t *testing.T) {
	d := NewDentry(&Inode{Ino: 1})
	require.Same(t, d, d.Mounted())
	require.False(t, d.IsMountpoint())
}
