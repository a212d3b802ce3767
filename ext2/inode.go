package ext2

import "github.com/pkg/errors"

func (s *Superblock) inodesPerBlock() uint32 {
	return s.blockSize / onDiskInodeSize
}

// inodeLocation returns the block holding ino's on-disk record, and
// the byte offset of that record within the block.
func (s *Superblock) inodeLocation(group *groupDesc, ino uint32) (block uint32, off uint32) {
	rel := (ino - 1) % s.inodesPerGroup
	perBlock := s.inodesPerBlock()
	return group.inodeTable + rel/perBlock, (rel % perBlock) * onDiskInodeSize
}

// ReadInode loads ino's on-disk record.
func (s *Superblock) ReadInode(ino uint32) (*diskInode, error) {
	if ino == 0 || ino > s.InodesCount() {
		return nil, errors.Errorf("ext2: inode %d out of range", ino)
	}
	group := (ino - 1) / s.inodesPerGroup
	gd, err := s.GetGroupDesc(group)
	if err != nil {
		return nil, err
	}
	block, off := s.inodeLocation(gd, ino)
	buf, err := s.dev.ReadBlock(block)
	if err != nil {
		return nil, errors.Wrap(err, "ext2: read inode table block")
	}
	return unmarshalDiskInode(buf[off : off+onDiskInodeSize]), nil
}

// WriteInode persists di as ino's on-disk record.
func (s *Superblock) WriteInode(ino uint32, di *diskInode) error {
	if ino == 0 || ino > s.InodesCount() {
		return errors.Errorf("ext2: inode %d out of range", ino)
	}
	group := (ino - 1) / s.inodesPerGroup
	gd, err := s.GetGroupDesc(group)
	if err != nil {
		return err
	}
	block, off := s.inodeLocation(gd, ino)
	buf, err := s.dev.ReadBlock(block)
	if err != nil {
		return errors.Wrap(err, "ext2: read inode table block for write-back")
	}
	copy(buf[off:off+onDiskInodeSize], di.marshal())
	return s.dev.WriteBlock(block, buf)
}
