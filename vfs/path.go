package vfs

import "strings"

// PathWalk resolves a "/"-separated absolute path to its dentry,
// starting at v.Root. At each step it consults the mount table,
// switching to a mounted filesystem's root dentry whenever traversal
// reaches a mountpoint, and falls back to the concrete filesystem's
// Lookuper when a path component is not yet cached as a child dentry.
func (v *VFS) PathWalk(p string) (*Dentry, error) {
	if v.Root == nil {
		return nil, ErrInvalid
	}

	cur := v.Root.Mounted()
	p = strings.Trim(p, "/")
	if p == "" {
		return cur, nil
	}

	for _, comp := range strings.Split(p, "/") {
		if comp == "" || comp == "." {
			continue
		}
		next, err := v.walkOne(cur, comp)
		if err != nil {
			return nil, err
		}
		cur = next.Mounted()
	}
	return cur, nil
}

// walkOne resolves a single path component under dir, consulting the
// cached child dentry first and falling back to the filesystem driver's
// Lookuper, caching the result.
func (v *VFS) walkOne(dir *Dentry, name string) (*Dentry, error) {
	if dir.Inode == nil || !dir.Inode.IsDir() {
		return nil, ErrInvalid
	}

	if child := dir.Child(name); child != nil {
		return child, nil
	}

	child := &Dentry{Name: name}
	child.children.init()
	inode, err := callLookup(dir.Inode.Ops, dir.Inode, child)
	if err != nil {
		return nil, err
	}
	if inode == nil {
		return nil, ErrNotFound
	}
	child.Inode = inode
	dir.AddChild(name, child)
	return child, nil
}
