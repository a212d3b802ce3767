package vfs

// Dentry is the directory-entry cache object: a name and the inode it
// resolves to, belonging to a parent dentry's child list, and possibly
// itself a mountpoint.
type Dentry struct {
	Name   string
	Inode  *Inode
	Parent *Dentry

	children dentryChildren

	// mount is set when this dentry is a mountpoint: traversal that
	// reaches it must switch to mount.Root instead of continuing into
	// Inode's own children.
	mount *Mount
}

// NewDentry allocates a root dentry (no parent, no name) bound to inode.
func NewDentry(inode *Inode) *Dentry {
	d := &Dentry{Inode: inode}
	d.children.init()
	return d
}

// Child looks up an already-cached child dentry by name without
// consulting the filesystem driver. It returns nil if the name has not
// been bound by AddChild.
func (d *Dentry) Child(name string) *Dentry {
	return d.children.get(name)
}

// AddChild binds a name to a child dentry, wiring the child's Parent
// pointer.
func (d *Dentry) AddChild(name string, child *Dentry) {
	if d.children.entries == nil {
		d.children.init()
	}
	d.children.set(d, name, child)
}

// RemoveChild drops a cached child dentry binding, e.g. after unlink.
func (d *Dentry) RemoveChild(name string) {
	d.children.del(name)
}

// NumChildren reports how many child dentries are currently cached.
func (d *Dentry) NumChildren() int {
	return d.children.len()
}

// IsMountpoint reports whether a filesystem has been grafted onto this
// dentry.
func (d *Dentry) IsMountpoint() bool {
	return d.mount != nil
}

// Mounted returns the mounted filesystem's root dentry if d is a
// mountpoint, else d itself. Path lookup calls this on every dentry it
// passes through.
func (d *Dentry) Mounted() *Dentry {
	if d.mount != nil {
		return d.mount.Root
	}
	return d
}
