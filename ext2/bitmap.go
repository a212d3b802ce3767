package ext2

import (
	"github.com/gokernel/core/vfs"
	"github.com/pkg/errors"
)

// ErrDeviceFull is returned by AllocBlock/AllocInode when every group has
// been scanned and none has a free bit. It wraps vfs.ErrNoSpace, so
// errors.Is and errors.Cause both recover that sentinel.
var ErrDeviceFull = errors.Wrap(vfs.ErrNoSpace, "ext2: device full")

func testBit(bitmap []byte, i uint32) bool {
	return bitmap[i/8]&(1<<(i%8)) != 0
}

func setBit(bitmap []byte, i uint32) {
	bitmap[i/8] |= 1 << (i % 8)
}

func clearBit(bitmap []byte, i uint32) {
	bitmap[i/8] &^= 1 << (i % 8)
}

// groupBlockCapacity returns the number of data blocks actually backing
// group g: blocksPerGroup for every group but the last, whose remaining
// block count may fall short of a full group. Scanning the bitmap
// against blocksPerGroup unconditionally would let a first-fit hit land
// on a block past the image's true end; this clamp closes that gap.
func (s *Superblock) groupBlockCapacity(group uint32) uint32 {
	total := s.BlocksCount() - s.FirstDataBlock()
	start := group * s.blocksPerGroup
	if start >= total {
		return 0
	}
	if start+s.blocksPerGroup > total {
		return total - start
	}
	return s.blocksPerGroup
}

// groupInodeCapacity is groupBlockCapacity's counterpart for the inode
// bitmap/table.
func (s *Superblock) groupInodeCapacity(group uint32) uint32 {
	total := s.InodesCount()
	start := group * s.inodesPerGroup
	if start >= total {
		return 0
	}
	if start+s.inodesPerGroup > total {
		return total - start
	}
	return s.inodesPerGroup
}

// AllocBlock finds the first free block via a linear, LSB-first,
// first-fit scan of each group's block bitmap in turn,
// marks it used, and returns its absolute block number.
func (s *Superblock) AllocBlock() (uint32, error) {
	for g := uint32(0); g < s.numGroups; g++ {
		capacity := s.groupBlockCapacity(g)
		if capacity == 0 {
			continue
		}
		gd, err := s.GetGroupDesc(g)
		if err != nil {
			return 0, err
		}
		if gd.freeBlockCount == 0 {
			continue
		}
		bitmap, err := s.dev.ReadBlock(gd.blockBitmap)
		if err != nil {
			return 0, err
		}
		for i := uint32(0); i < capacity; i++ {
			if testBit(bitmap, i) {
				continue
			}
			setBit(bitmap, i)
			if err := s.dev.WriteBlock(gd.blockBitmap, bitmap); err != nil {
				return 0, err
			}
			gd.freeBlockCount--
			if err := s.WriteGroupDesc(g, gd); err != nil {
				return 0, err
			}
			s.DecFreeBlocks(1)
			if err := s.WriteSuper(); err != nil {
				return 0, err
			}
			blockNum := s.FirstDataBlock() + g*s.blocksPerGroup + i
			zero := make([]byte, s.blockSize)
			if err := s.dev.WriteBlock(blockNum, zero); err != nil {
				return 0, err
			}
			return blockNum, nil
		}
	}
	return 0, ErrDeviceFull
}

// FreeBlock clears blockNum's bit in its group's bitmap and restores the
// free-count bookkeeping AllocBlock decremented.
func (s *Superblock) FreeBlock(blockNum uint32) error {
	rel := blockNum - s.FirstDataBlock()
	group := rel / s.blocksPerGroup
	idx := rel % s.blocksPerGroup

	gd, err := s.GetGroupDesc(group)
	if err != nil {
		return err
	}
	bitmap, err := s.dev.ReadBlock(gd.blockBitmap)
	if err != nil {
		return err
	}
	clearBit(bitmap, idx)
	if err := s.dev.WriteBlock(gd.blockBitmap, bitmap); err != nil {
		return err
	}
	gd.freeBlockCount++
	if err := s.WriteGroupDesc(group, gd); err != nil {
		return err
	}
	s.IncFreeBlocks(1)
	return s.WriteSuper()
}

// AllocInode finds the first free inode with the same clamped,
// LSB-first, first-fit scan AllocBlock uses, and returns its 1-based
// inode number.
func (s *Superblock) AllocInode() (uint32, error) {
	for g := uint32(0); g < s.numGroups; g++ {
		capacity := s.groupInodeCapacity(g)
		if capacity == 0 {
			continue
		}
		gd, err := s.GetGroupDesc(g)
		if err != nil {
			return 0, err
		}
		if gd.freeInodeCount == 0 {
			continue
		}
		bitmap, err := s.dev.ReadBlock(gd.inodeBitmap)
		if err != nil {
			return 0, err
		}
		for i := uint32(0); i < capacity; i++ {
			if testBit(bitmap, i) {
				continue
			}
			setBit(bitmap, i)
			if err := s.dev.WriteBlock(gd.inodeBitmap, bitmap); err != nil {
				return 0, err
			}
			gd.freeInodeCount--
			if err := s.WriteGroupDesc(g, gd); err != nil {
				return 0, err
			}
			s.DecFreeInodes(1)
			if err := s.WriteSuper(); err != nil {
				return 0, err
			}
			return g*s.inodesPerGroup + i + 1, nil
		}
	}
	return 0, ErrDeviceFull
}

// FreeInode clears ino's bit in its group's inode bitmap.
func (s *Superblock) FreeInode(ino uint32) error {
	rel := ino - 1
	group := rel / s.inodesPerGroup
	idx := rel % s.inodesPerGroup

	gd, err := s.GetGroupDesc(group)
	if err != nil {
		return err
	}
	bitmap, err := s.dev.ReadBlock(gd.inodeBitmap)
	if err != nil {
		return err
	}
	clearBit(bitmap, idx)
	if err := s.dev.WriteBlock(gd.inodeBitmap, bitmap); err != nil {
		return err
	}
	gd.freeInodeCount++
	if err := s.WriteGroupDesc(group, gd); err != nil {
		return err
	}
	s.IncFreeInodes(1)
	return s.WriteSuper()
}
