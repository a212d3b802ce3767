package ext2

import (
	"github.com/gokernel/core/blockdev"
	"github.com/gokernel/core/vfs"
	"github.com/pkg/errors"
)

// devices is the name-to-backing-device table consulted by FSType.Mount.
// Mount takes a device *name*; callers register the concrete
// blockdev.Device under that name before mounting, the same indirection
// a FUSE server uses between a mount path and the *os.File backing it.
var devices = map[string]blockdev.Device{}

// RegisterDevice binds name to dev so a later FSType.Mount(name) call can
// find it.
func RegisterDevice(name string, dev blockdev.Device) {
	devices[name] = dev
}

// FSType is the vfs.FileSystemType registration for this driver.
var FSType = &vfs.FileSystemType{
	Name:  "ext2",
	Mount: mountDevice,
}

func mountDevice(deviceName string) (*vfs.Mount, error) {
	dev, ok := devices[deviceName]
	if !ok {
		return nil, errors.Errorf("ext2: no device registered as %q", deviceName)
	}

	sb, err := ReadSuperblock(dev)
	if err != nil {
		return nil, err
	}

	adapter := &sbOps{sb: sb}
	vsb := &vfs.Superblock{
		BlockSize: sb.BlockSize(),
		Private:   sb,
		Ops:       adapter,
	}
	adapter.vsb = vsb

	rootInode, err := bindInode(vsb, sb, RootIno)
	if err != nil {
		return nil, errors.Wrap(err, "ext2: bind root inode")
	}
	rootDentry := vfs.NewDentry(rootInode)

	return &vfs.Mount{Root: rootDentry}, nil
}

// sbOps adapts *Superblock to vfs.SuperblockOperations. It is a separate
// type, not a method on Superblock itself, because the VFS-level
// AllocInode() *vfs.Inode and this package's own AllocInode() (uint32,
// error) bitmap primitive are different operations that
// happen to share a name in the two layers' own vocabularies.
type sbOps struct {
	sb  *Superblock
	vsb *vfs.Superblock
}

// AllocInode implements vfs.SuperblockOperations: allocate a fresh inode
// number and hand back a bound-but-otherwise-empty vfs.Inode shell for
// the VFS core to use outside of this package's own Create/Mknod paths.
func (a *sbOps) AllocInode() *vfs.Inode {
	ino, err := a.sb.AllocInode()
	if err != nil {
		return nil
	}
	in := vfs.NewInode(a.vsb, ino)
	in.Ops = defaultOps
	return in
}

func (a *sbOps) WriteSuper() error {
	return a.sb.WriteSuper()
}
