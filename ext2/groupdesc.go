package ext2

import "github.com/pkg/errors"

// groupDescTableBlock returns the block at which the group descriptor
// table begins: immediately after the superblock's own block, ahead of
// the per-group bitmaps and inode table.
func (s *Superblock) groupDescTableBlock() uint32 {
	return s.FirstDataBlock() + 1
}

func (s *Superblock) descsPerBlock() uint32 {
	return s.blockSize / onDiskGroupDescSize
}

// GetGroupDesc loads the descriptor for the given group number.
func (s *Superblock) GetGroupDesc(group uint32) (*groupDesc, error) {
	if group >= s.numGroups {
		return nil, errors.Errorf("ext2: group %d out of range (%d groups)", group, s.numGroups)
	}
	perBlock := s.descsPerBlock()
	block := s.groupDescTableBlock() + group/perBlock
	off := (group % perBlock) * onDiskGroupDescSize

	buf, err := s.dev.ReadBlock(block)
	if err != nil {
		return nil, errors.Wrap(err, "ext2: read group descriptor block")
	}
	return unmarshalGroupDesc(buf[off : off+onDiskGroupDescSize]), nil
}

// WriteGroupDesc persists gd as the descriptor for the given group.
func (s *Superblock) WriteGroupDesc(group uint32, gd *groupDesc) error {
	if group >= s.numGroups {
		return errors.Errorf("ext2: group %d out of range (%d groups)", group, s.numGroups)
	}
	perBlock := s.descsPerBlock()
	block := s.groupDescTableBlock() + group/perBlock
	off := (group % perBlock) * onDiskGroupDescSize

	buf, err := s.dev.ReadBlock(block)
	if err != nil {
		return errors.Wrap(err, "ext2: read group descriptor block for write-back")
	}
	copy(buf[off:off+onDiskGroupDescSize], gd.marshal())
	return s.dev.WriteBlock(block, buf)
}
