package vfs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeFS is a minimal in-memory Lookuper/Creater used to exercise
// PathWalk/Mount without depending on package ext2.
type fakeFS struct {
	children map[uint32]map[string]uint32
	modes    map[uint32]uint16
	nextIno  uint32
}

func newFakeFS() *fakeFS {
	return &fakeFS{
		children: map[uint32]map[string]uint32{1: {}},
		modes:    map[uint32]uint16{1: ModeDirectory},
		nextIno:  2,
	}
}

func (f *fakeFS) bind(sb *Superblock, ino uint32) *Inode {
	in := NewInode(sb, ino)
	in.Mode = f.modes[ino]
	in.Ops = f
	return in
}

func (f *fakeFS) Lookup(dir *Inode, dentry *Dentry) (*Inode, error) {
	kids := f.children[dir.Ino]
	ino, ok := kids[dentry.Name]
	if !ok {
		return nil, ErrNotFound
	}
	return f.bind(dir.Sb, ino), nil
}

func (f *fakeFS) Create(dir *Inode, dentry *Dentry, mode uint16) (*Inode, error) {
	ino := f.nextIno
	f.nextIno++
	f.modes[ino] = mode
	f.children[ino] = map[string]uint32{}
	f.children[dir.Ino][dentry.Name] = ino
	return f.bind(dir.Sb, ino), nil
}

func mountFake(t *testing.T) (*VFS, *fakeFS) {
	t.Helper()
	fake := newFakeFS()
	fst := &FileSystemType{
		Name: "fake",
		Mount: func(deviceName string) (*Mount, error) {
			sb := &Superblock{BlockSize: 512}
			root := fake.bind(sb, 1)
			return &Mount{Root: NewDentry(root)}, nil
		},
	}
	v := New()
	require.NoError(t, v.Registry.Register(fst))
	_, err := v.InitRootfs("fake", "dev0")
	require.NoError(t, err)
	return v, fake
}

func TestPathWalkRoot(t *testing.T) {
	v, _ := mountFake(t)
	d, err := v.PathWalk("/")
	require.NoError(t, err)
	require.EqualValues(t, 1, d.Inode.Ino)
}

func TestPathWalkResolvesNestedComponentsAndCaches(t *testing.T) {
	v, fake := mountFake(t)
	fake.children[1]["etc"] = 2
	fake.modes[2] = ModeDirectory
	fake.children[2] = map[string]uint32{}
	fake.children[2]["passwd"] = 3
	fake.modes[3] = ModeRegular

	d, err := v.PathWalk("/etc/passwd")
	require.NoError(t, err)
	require.EqualValues(t, 3, d.Inode.Ino)

	// Cached on the parent dentry after the first walk.
	etc := v.Root.Child("etc")
	require.NotNil(t, etc)
	require.NotNil(t, etc.Child("passwd"))
}

func TestPathWalkMissingComponentIsNotFound(t *testing.T) {
	v, _ := mountFake(t)
	_, err := v.PathWalk("/nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPathWalkThroughRegularFileIsInvalid(t *testing.T) {
	v, fake := mountFake(t)
	fake.children[1]["f"] = 2
	fake.modes[2] = ModeRegular
	fake.children[2] = map[string]uint32{}

	_, err := v.PathWalk("/f/sub")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestCreateAddsDentryChildAndIsLookupable(t *testing.T) {
	v, _ := mountFake(t)
	root, err := v.PathWalk("/")
	require.NoError(t, err)

	_, err = Create(root, &Dentry{Name: "new"}, ModeRegular)
	require.NoError(t, err)

	d, err := v.PathWalk("/new")
	require.NoError(t, err)
	require.NotNil(t, d.Inode)
}
