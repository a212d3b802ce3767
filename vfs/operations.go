// Package vfs implements a virtual filesystem core: a filesystem-type
// registry, a mount table, dentry/inode binding, mountpoint grafting,
// and path lookup handoff to a concrete filesystem driver (such as
// package ext2).
//
// Concrete filesystems plug in by implementing the operation-vector
// interfaces below on their own inode-private state and returning
// *Inode values bound to a Superblock obtained from a
// FileSystemType.Mount call. This mirrors the capability-interface
// pattern of a FUSE-style fs.InodeEmbedder / Node*er family: an
// operation vector is any value that implements zero or more
// single-method interfaces, and unimplemented operations fall back to a
// fixed error rather than a nil-pointer panic.
package vfs

import "errors"

// Errno is the VFS/ext2 negated-small-integer error taxonomy. Errors are
// returned as ordinary Go errors wrapping an Errno, recoverable with
// errors.Is.
type Errno int

func (e Errno) Error() string {
	switch e {
	case ErrNoSpace:
		return "no space left on device"
	case ErrNotFound:
		return "not found"
	case ErrBusy:
		return "resource busy"
	case ErrInvalid:
		return "invalid argument"
	default:
		return "unknown error"
	}
}

func (e Errno) Is(target error) bool {
	var o Errno
	if errors.As(target, &o) {
		return o == e
	}
	return false
}

const (
	// ErrNoSpace is returned (wrapped by ext2.ErrDeviceFull) when a
	// bitmap scan finds no free bit.
	ErrNoSpace Errno = -1
	// ErrNotFound is returned when a directory scan or registry lookup
	// fails to find a match.
	ErrNotFound Errno = -2
	// ErrBusy is returned when registering an already-registered
	// filesystem-type name.
	ErrBusy Errno = -3
	// ErrInvalid is returned when unregistering an absent name, or for
	// any other malformed request.
	ErrInvalid Errno = -4
)

// Creater creates a new child inode of directory dir, named by
// dentry.Name, and inserts a directory entry for it; binding the result
// to dentry is left to the caller (vfs.Create does it).
// Default (unimplemented): ErrInvalid.
type Creater interface {
	Create(dir *Inode, dentry *Dentry, mode uint16) (*Inode, error)
}

// Lookuper resolves `dentry`'s name to a child inode of the receiver
// directory. Default (unimplemented): ErrNotFound.
type Lookuper interface {
	Lookup(dir *Inode, dentry *Dentry) (*Inode, error)
}

// Mknoder creates a special (device) inode, or adopts an existing one,
// binding device identifier dev. Default (unimplemented): ErrInvalid.
type Mknoder interface {
	Mknod(dir *Inode, dentry *Dentry, mode uint16, dev uint32) (*Inode, error)
}

// Renamer rebinds newDentry to oldDentry's inode under newDir, removing
// the entry from oldDir. Default (unimplemented): ErrInvalid.
type Renamer interface {
	Rename(oldDir *Inode, oldDentry *Dentry, newDir *Inode, newDentry *Dentry) error
}

// Unlinker removes dentry's directory entry from dir and decrements the
// resolved inode's link count, reclaiming it at zero. Default
// (unimplemented): ErrInvalid.
type Unlinker interface {
	Unlink(dir *Inode, dentry *Dentry) error
}

// Truncater is a no-op contract point: truncation is not implemented,
// but the vector slot exists so a filesystem can declare conformance.
// The zero value (no Truncater implemented) is itself a legal no-op.
type Truncater interface {
	Truncate(inode *Inode)
}

// callCreate, callLookup, ... apply the capability-interface pattern:
// if ops implements the interface, call it; otherwise report the
// default error, matching the source's NULL-return-means-miss
// convention for lookup and assert_not_reached for the rest.

func callCreate(ops interface{}, dir *Inode, dentry *Dentry, mode uint16) (*Inode, error) {
	c, ok := ops.(Creater)
	if !ok {
		return nil, ErrInvalid
	}
	return c.Create(dir, dentry, mode)
}

func callLookup(ops interface{}, dir *Inode, dentry *Dentry) (*Inode, error) {
	l, ok := ops.(Lookuper)
	if !ok {
		return nil, ErrNotFound
	}
	return l.Lookup(dir, dentry)
}

func callMknod(ops interface{}, dir *Inode, dentry *Dentry, mode uint16, dev uint32) (*Inode, error) {
	m, ok := ops.(Mknoder)
	if !ok {
		return nil, ErrInvalid
	}
	return m.Mknod(dir, dentry, mode, dev)
}

func callRename(ops interface{}, oldDir *Inode, oldDentry *Dentry, newDir *Inode, newDentry *Dentry) error {
	r, ok := ops.(Renamer)
	if !ok {
		return ErrInvalid
	}
	return r.Rename(oldDir, oldDentry, newDir, newDentry)
}

func callUnlink(ops interface{}, dir *Inode, dentry *Dentry) error {
	u, ok := ops.(Unlinker)
	if !ok {
		return ErrInvalid
	}
	return u.Unlink(dir, dentry)
}
