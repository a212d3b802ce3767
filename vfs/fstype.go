package vfs

// FileSystemType is a registrable filesystem driver: a
// name and a Mount routine that produces a fresh Mount with a root
// dentry bound to the backing device named by deviceName.
type FileSystemType struct {
	Name  string
	Mount func(deviceName string) (*Mount, error)

	next *FileSystemType
}

// Registry is the process-global (here: VFS-instance-global) singly
// linked list of registered filesystem types, keyed by name. It is
// deliberately a linked list rather than a map to mirror a
// `find_filesystem` walk, which the Register/Unregister semantics
// (BUSY / INVALID) are defined in terms of.
type Registry struct {
	head *FileSystemType
}

// find returns the named *FileSystemType, or nil. Unlike vfs.c's
// find_filesystem it does not return the address of the link slot;
// Unregister below walks the list itself to splice out an entry.
func (r *Registry) find(name string) *FileSystemType {
	for t := r.head; t != nil; t = t.next {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Register adds fs to the registry. It fails with ErrBusy if the name is
// already registered.
func (r *Registry) Register(fs *FileSystemType) error {
	if r.find(fs.Name) != nil {
		return ErrBusy
	}
	fs.next = r.head
	r.head = fs
	return nil
}

// Unregister removes the named type from the registry. It fails with
// ErrInvalid if the name is not registered.
func (r *Registry) Unregister(name string) error {
	var prev *FileSystemType
	for t := r.head; t != nil; t = t.next {
		if t.Name == name {
			if prev == nil {
				r.head = t.next
			} else {
				prev.next = t.next
			}
			return nil
		}
		prev = t
	}
	return ErrInvalid
}

// Lookup returns the named filesystem type, or ErrNotFound.
func (r *Registry) Lookup(name string) (*FileSystemType, error) {
	if t := r.find(name); t != nil {
		return t, nil
	}
	return nil, ErrNotFound
}
