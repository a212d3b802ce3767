package vfs

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Inode is the in-memory VFS inode: it binds an on-disk inode number to
// mode/size/link-count/timestamps, a block count, a pointer to
// filesystem-private inode state, the owning Superblock, the operation
// vector, and a semaphore guarding in-core mutation.
type Inode struct {
	Ino    uint32
	Mode   uint16
	Size   uint64
	NLink  uint16
	Atime  uint32
	Ctime  uint32
	Mtime  uint32
	Blocks uint32

	// Private holds filesystem-private inode state, e.g. an
	// *ext2.diskInode for package ext2.
	Private interface{}

	Sb *Superblock

	// Ops is the operation vector;
	// it is any value implementing zero or more of Creater, Lookuper,
	// Mknoder, Renamer, Unlinker, Truncater.
	Ops interface{}

	sem *semaphore.Weighted
}

// NewInode allocates an in-memory inode bound to sb, with its in-core
// mutation semaphore initialized to count 1.
func NewInode(sb *Superblock, ino uint32) *Inode {
	return &Inode{
		Ino: ino,
		Sb:  sb,
		sem: semaphore.NewWeighted(1),
	}
}

// Lock acquires the in-core mutation semaphore. Callers must pair it
// with Unlock around any update to the in-memory fields above that must
// not interleave with readers.
func (i *Inode) Lock() {
	// A weighted semaphore of size 1 never blocks acquisition failure
	// under context.Background(); this can't return an error in
	// practice, matching the source's uninterruptible down().
	_ = i.sem.Acquire(context.Background(), 1)
}

// Unlock releases the in-core mutation semaphore.
func (i *Inode) Unlock() {
	i.sem.Release(1)
}

// IsDir reports whether the inode is a directory, per the type bits of
// its Mode.
func (i *Inode) IsDir() bool {
	return modeIsDir(i.Mode)
}

// IsRegular reports whether the inode is a regular file.
func (i *Inode) IsRegular() bool {
	return modeIsRegular(i.Mode)
}

// IsCharDev reports whether the inode is a character-special device node.
func (i *Inode) IsCharDev() bool {
	return modeIsCharDev(i.Mode)
}

// Mode bits. Only the type bits (regular, directory, character-special)
// are modeled; permission-bit enforcement is out of scope.
const (
	ModeRegular   uint16 = 0x8000
	ModeDirectory uint16 = 0x4000
	ModeCharDev   uint16 = 0x2000

	modeTypeMask uint16 = 0xF000
)

func modeIsDir(mode uint16) bool {
	return mode&modeTypeMask == ModeDirectory
}

func modeIsRegular(mode uint16) bool {
	return mode&modeTypeMask == ModeRegular
}

func modeIsCharDev(mode uint16) bool {
	return mode&modeTypeMask == ModeCharDev
}
