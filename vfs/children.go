package vfs

import (
	"fmt"
	"strings"
)

// dentryChildren is the parent-side half of the dentry tree link: a
// name-keyed map, adapted from a FUSE-style
// inodeChildren map, generalized from Inode children to Dentry children
// since this is a name cache over dentries, not inodes directly
// (several dentries may share one inode via hard links).
type dentryChildren struct {
	entries map[string]*Dentry
}

func (c *dentryChildren) init() {
	c.entries = make(map[string]*Dentry)
}

func (c *dentryChildren) String() string {
	var ss []string
	for nm, ch := range c.entries {
		ino := uint32(0)
		if ch.Inode != nil {
			ino = ch.Inode.Ino
		}
		ss = append(ss, fmt.Sprintf("%q=i%d", nm, ino))
	}
	return strings.Join(ss, ",")
}

func (c *dentryChildren) get(name string) *Dentry {
	return c.entries[name]
}

func (c *dentryChildren) set(parent *Dentry, name string, ch *Dentry) {
	c.entries[name] = ch
	ch.Parent = parent
	ch.Name = name
}

func (c *dentryChildren) del(name string) {
	delete(c.entries, name)
}

func (c *dentryChildren) len() int {
	return len(c.entries)
}
