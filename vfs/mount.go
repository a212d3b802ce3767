package vfs

import (
	"path"
	"strings"

	"github.com/sirupsen/logrus"
)

// Mount is the (filesystem-type, device-name, mountpoint-dentry,
// root-dentry) tuple held in a process-global mount list.
type Mount struct {
	Type             *FileSystemType
	DeviceName       string
	MountpointDentry *Dentry
	Root             *Dentry
}

// VFS is the process-wide VFS context, isolating global mutable state
// into an explicit, passed-by-reference structure: the filesystem-type
// registry, the mount list, and the current root dentry (what
// InitRootfs redirects).
type VFS struct {
	Registry Registry
	Mounts   []*Mount
	Root     *Dentry

	log *logrus.Entry
}

// New returns an empty VFS context.
func New() *VFS {
	return &VFS{log: logrus.WithField("subsystem", "vfs")}
}

// lookupMount returns the Mount grafted at dentry, or nil, mirroring
// vfs.c's lookup_mnt.
func (v *VFS) lookupMount(d *Dentry) *Mount {
	for _, m := range v.Mounts {
		if m.MountpointDentry == d {
			return m
		}
	}
	return nil
}

// Mount splits path into a parent directory and a final path component,
// invokes fsType's Mount routine to produce a fresh mount, walks the
// parent component to locate its dentry, grafts the new root as a child
// of that dentry, and appends the mount to the global mount list.
func (v *VFS) Mount(fsTypeName, deviceName, mountPath string) (*Mount, error) {
	fsType, err := v.Registry.Lookup(fsTypeName)
	if err != nil {
		return nil, err
	}

	dir, name := splitLast(mountPath)

	mnt, err := fsType.Mount(deviceName)
	if err != nil {
		return nil, err
	}
	mnt.Type = fsType
	mnt.DeviceName = deviceName

	parentDentry, err := v.PathWalk(dir)
	if err != nil {
		return nil, err
	}

	mountpoint := parentDentry.Child(name)
	if mountpoint == nil {
		mountpoint = NewDentry(nil)
		parentDentry.AddChild(name, mountpoint)
	}
	mountpoint.mount = mnt
	mnt.MountpointDentry = mountpoint

	v.Mounts = append(v.Mounts, mnt)
	v.log.WithFields(logrus.Fields{"fstype": fsTypeName, "device": deviceName, "at": mountPath}).Info("mounted filesystem")
	return mnt, nil
}

// InitRootfs is the special case where the grafting step is elided and
// the VFS context's root is redirected straight to the new filesystem's
// root dentry.
func (v *VFS) InitRootfs(fsTypeName, deviceName string) (*Mount, error) {
	fsType, err := v.Registry.Lookup(fsTypeName)
	if err != nil {
		return nil, err
	}
	mnt, err := fsType.Mount(deviceName)
	if err != nil {
		return nil, err
	}
	mnt.Type = fsType
	mnt.DeviceName = deviceName

	v.Mounts = append(v.Mounts, mnt)
	v.Root = mnt.Root
	v.log.WithField("device", deviceName).Info("initialized root filesystem")
	return mnt, nil
}

// splitLast splits a "/"-separated path into its parent directory and
// final component, matching vfs.c's strlsplat(path, strliof(path, "/"),
// &dir, &name).
func splitLast(p string) (dir, name string) {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "/", ""
	}
	dir, name = path.Split(p)
	dir = strings.TrimRight(dir, "/")
	if dir == "" {
		dir = "/"
	}
	return dir, name
}
