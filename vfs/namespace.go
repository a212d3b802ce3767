package vfs

// The functions below are thin, filesystem-agnostic entry points onto a
// directory inode's operation vector; they exist so
// callers (cmd/kernsim, tests) don't need to type-assert Ops themselves.
// dirDentry is the parent directory's own dentry, used only to keep its
// child-dentry cache (used by PathWalk) in sync; the operation itself is
// dispatched against dir's operation vector: create(dir, dentry, mode),
// lookup(dir, dentry), and so on.

// Create creates a new inode named by dentry under dir.
func Create(dirDentry *Dentry, dentry *Dentry, mode uint16) (*Inode, error) {
	dir := dirDentry.Inode
	inode, err := callCreate(dir.Ops, dir, dentry, mode)
	if err != nil {
		return nil, err
	}
	dentry.Inode = inode
	dirDentry.AddChild(dentry.Name, dentry)
	return inode, nil
}

// Lookup resolves dentry's name to a child inode of dir.
func Lookup(dirDentry *Dentry, dentry *Dentry) (*Inode, error) {
	dir := dirDentry.Inode
	inode, err := callLookup(dir.Ops, dir, dentry)
	if err != nil {
		return nil, err
	}
	dentry.Inode = inode
	return inode, nil
}

// Mknod creates (or adopts) a special inode under dir.
func Mknod(dirDentry *Dentry, dentry *Dentry, mode uint16, dev uint32) (*Inode, error) {
	dir := dirDentry.Inode
	inode, err := callMknod(dir.Ops, dir, dentry, mode, dev)
	if err != nil {
		return nil, err
	}
	dentry.Inode = inode
	dirDentry.AddChild(dentry.Name, dentry)
	return inode, nil
}

// Rename rebinds newDentry to oldDentry's inode, removing oldDentry from
// oldDirDentry's directory entries.
func Rename(oldDirDentry, oldDentry, newDirDentry, newDentry *Dentry) error {
	oldDir, newDir := oldDirDentry.Inode, newDirDentry.Inode
	if err := callRename(oldDir.Ops, oldDir, oldDentry, newDir, newDentry); err != nil {
		return err
	}
	newDentry.Inode = oldDentry.Inode
	newDirDentry.AddChild(newDentry.Name, newDentry)
	if oldDirDentry == newDirDentry && oldDentry.Name == newDentry.Name {
		return nil
	}
	oldDirDentry.RemoveChild(oldDentry.Name)
	return nil
}

// Unlink removes dentry's entry from dir.
func Unlink(dirDentry *Dentry, dentry *Dentry) error {
	dir := dirDentry.Inode
	if err := callUnlink(dir.Ops, dir, dentry); err != nil {
		return err
	}
	dirDentry.RemoveChild(dentry.Name)
	return nil
}
