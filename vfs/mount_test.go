package vfs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMountGraftsNewRootAtMountpoint(t *testing.T) {
	v, fake := mountFake(t)
	fake.children[1]["mnt"] = 2
	fake.modes[2] = ModeDirectory
	fake.children[2] = map[string]uint32{}

	_, err := v.Mount("fake", "dev1", "/mnt")
	require.NoError(t, err)

	mountpoint, err := v.PathWalk("/mnt")
	require.NoError(t, err)
	// PathWalk already crosses the mount via Dentry.Mounted, so the
	// resolved dentry is the mounted filesystem's root, inode 1 again.
	require.EqualValues(t, 1, mountpoint.Inode.Ino)
}

func TestMountUnknownTypeFails(t *testing.T) {
	v := New()
	_, err := v.Mount("missing", "dev0", "/mnt")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestInitRootfsSetsRootDirectly(t *testing.T) {
	fake := newFakeFS()
	fst := &FileSystemType{
		Name: "fake",
		Mount: func(deviceName string) (*Mount, error) {
			sb := &Superblock{BlockSize: 4096}
			root := fake.bind(sb, 1)
			return &Mount{Root: NewDentry(root)}, nil
		},
	}
	v := New()
	require.NoError(t, v.Registry.Register(fst))

	mnt, err := v.InitRootfs("fake", "dev0")
	require.NoError(t, err)
	require.Same(t, mnt.Root, v.Root)
	require.Len(t, v.Mounts, 1)
}
