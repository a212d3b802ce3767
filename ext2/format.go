package ext2

import (
	"github.com/gokernel/core/blockdev"
	"github.com/gokernel/core/vfs"
)

// FormatOptions configures Format.
type FormatOptions struct {
	// InodeRatio is bytes of device space per inode; 0 picks a default
	// of 4 blocks per inode.
	InodeRatio uint32
}

// Format lays out a fresh, single-group filesystem image on dev:
// superblock, group descriptor table, block/inode bitmaps, a zeroed
// inode table, and a root directory inode with its bootstrap "."/".."
// block — everything Create/Lookup/Unlink/Rename need already primed.
// cmd/mkfs is this function's sole caller outside of tests.
func Format(dev blockdev.Device, opts FormatOptions) error {
	blockSize := dev.BlockSize()
	blockCount := dev.BlockCount()

	firstDataBlock := uint32(SuperblockOffset) / blockSize

	ratio := opts.InodeRatio
	if ratio == 0 {
		ratio = 4 * blockSize
	}
	inodesCount := (blockCount * blockSize) / ratio
	if inodesCount < 16 {
		inodesCount = 16
	}

	groupDescBlock := firstDataBlock + 1
	blockBitmapBlock := groupDescBlock + 1
	inodeBitmapBlock := blockBitmapBlock + 1
	inodeTableBlock := inodeBitmapBlock + 1
	inodesPerBlock := blockSize / onDiskInodeSize
	if inodesPerBlock == 0 {
		inodesPerBlock = 1
	}
	inodeTableBlocks := (inodesCount + inodesPerBlock - 1) / inodesPerBlock
	dataStart := inodeTableBlock + inodeTableBlocks
	rootDirBlock := dataStart

	blocksPerGroup := blockCount - firstDataBlock
	usedDataBlocks := (dataStart - firstDataBlock) + 1 // metadata blocks plus the root directory's own block

	sb := &superblock{
		blocksCount:     blockCount,
		blocksPerGroup:  blocksPerGroup,
		firstDataBlock:  firstDataBlock,
		inodesCount:     inodesCount,
		inodesPerGroup:  inodesCount,
		freeBlocksCount: blocksPerGroup - usedDataBlocks,
		freeInodesCount: inodesCount - StartingIno,
		firstUserIno:    StartingIno,
		blockSize:       blockSize,
		numGroups:       1,
	}

	gd := &groupDesc{
		blockBitmap:    blockBitmapBlock,
		inodeBitmap:    inodeBitmapBlock,
		inodeTable:     inodeTableBlock,
		freeBlockCount: sb.freeBlocksCount,
		freeInodeCount: sb.freeInodesCount,
		usedDirsCount:  1,
	}

	sbBlockNum := uint32(SuperblockOffset) / blockSize
	sbBlock, err := dev.ReadBlock(sbBlockNum)
	if err != nil {
		return err
	}
	off := uint32(SuperblockOffset) % blockSize
	copy(sbBlock[off:off+onDiskSuperblockSize], sb.marshal())
	if err := dev.WriteBlock(sbBlockNum, sbBlock); err != nil {
		return err
	}

	gdBuf := make([]byte, blockSize)
	copy(gdBuf[0:onDiskGroupDescSize], gd.marshal())
	if err := dev.WriteBlock(groupDescBlock, gdBuf); err != nil {
		return err
	}

	blockBitmap := make([]byte, blockSize)
	for i := uint32(0); i < usedDataBlocks; i++ {
		setBit(blockBitmap, i)
	}
	if err := dev.WriteBlock(blockBitmapBlock, blockBitmap); err != nil {
		return err
	}

	// Inodes 1..StartingIno are reserved (StartingIno is the root inode
	// here) so AllocInode never hands out a number at or below it.
	inodeBitmap := make([]byte, blockSize)
	for ino := uint32(1); ino <= StartingIno; ino++ {
		setBit(inodeBitmap, ino-1)
	}
	if err := dev.WriteBlock(inodeBitmapBlock, inodeBitmap); err != nil {
		return err
	}

	zero := make([]byte, blockSize)
	for b := uint32(0); b < inodeTableBlocks; b++ {
		if err := dev.WriteBlock(inodeTableBlock+b, zero); err != nil {
			return err
		}
	}

	if err := dev.WriteBlock(rootDirBlock, initDirBlock(blockSize, RootIno, RootIno)); err != nil {
		return err
	}

	tmp := &Superblock{
		dev: dev, sb: sb, blockSize: blockSize,
		blocksPerGroup: blocksPerGroup, inodesPerGroup: inodesCount, numGroups: 1,
	}
	rootDI := &diskInode{mode: vfs.ModeDirectory, nlink: 2, blocks: 1, size: uint64(blockSize)}
	rootDI.block[0] = rootDirBlock
	return tmp.WriteInode(RootIno, rootDI)
}
