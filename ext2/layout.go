// Package ext2 implements an on-disk ext2-like filesystem driver:
// metadata accessors (superblock, group descriptors, bitmaps, on-disk
// inodes), the indirect block-map walker, the packed directory-entry
// engine, and the namespace operations (create, lookup, unlink, rename,
// mknod) that bind it to package vfs.
//
// The directory record layout is byte-for-byte significant; the
// superblock, group-descriptor, and inode layouts are a compact
// ext2-shaped encoding (not byte-for-byte compatible with the real
// Linux ext2 signature/feature-flag fields, which this driver has no
// use for), encoded with encoding/binary the same way a reference ext4
// package lays out its own superblock.
package ext2

import "encoding/binary"

// Geometry constants.
const (
	// SuperblockOffset is the fixed byte offset of the superblock on the
	// backing device.
	SuperblockOffset = 1024

	// NumDirectBlocks is the count of direct block pointers in the
	// inode's block-pointer table.
	NumDirectBlocks = 12

	// IndSingle, IndDouble, IndTriple are the pointer-table slot indices
	// of the single/double/triple indirect pointers.
	IndSingle = 12
	IndDouble = 13
	IndTriple = 14

	// NumBlockPointers is the fixed length of the inode's block-pointer
	// table: twelve direct, one single/double/triple indirect.
	NumBlockPointers = 15

	// StartingIno is the highest reserved inode number: Format marks
	// inodes 1..StartingIno (the root inode included) as in use, so user
	// namespace operations receive numbers above it.
	StartingIno = 2

	// RootIno is the inode number of the filesystem root directory.
	RootIno = 2
)

// File-type tags used in directory records.
const (
	FileTypeRegular = 1
	FileTypeDir     = 2
	FileTypeCharDev = 3
)

// --- superblock -------------------------------------------------------

// onDiskSuperblockSize is the fixed encoded size of the superblock
// record in bytes.
const onDiskSuperblockSize = 40

// superblock is the essential-fields-only on-disk superblock.
type superblock struct {
	blocksCount     uint32
	blocksPerGroup  uint32
	firstDataBlock  uint32
	inodesCount     uint32
	inodesPerGroup  uint32
	freeBlocksCount uint32
	freeInodesCount uint32
	firstUserIno    uint32
	blockSize       uint32
	numGroups       uint32
}

func (sb *superblock) marshal() []byte {
	b := make([]byte, onDiskSuperblockSize)
	binary.LittleEndian.PutUint32(b[0:4], sb.blocksCount)
	binary.LittleEndian.PutUint32(b[4:8], sb.blocksPerGroup)
	binary.LittleEndian.PutUint32(b[8:12], sb.firstDataBlock)
	binary.LittleEndian.PutUint32(b[12:16], sb.inodesCount)
	binary.LittleEndian.PutUint32(b[16:20], sb.inodesPerGroup)
	binary.LittleEndian.PutUint32(b[20:24], sb.freeBlocksCount)
	binary.LittleEndian.PutUint32(b[24:28], sb.freeInodesCount)
	binary.LittleEndian.PutUint32(b[28:32], sb.firstUserIno)
	binary.LittleEndian.PutUint32(b[32:36], sb.blockSize)
	binary.LittleEndian.PutUint32(b[36:40], sb.numGroups)
	return b
}

func unmarshalSuperblock(b []byte) *superblock {
	return &superblock{
		blocksCount:     binary.LittleEndian.Uint32(b[0:4]),
		blocksPerGroup:  binary.LittleEndian.Uint32(b[4:8]),
		firstDataBlock:  binary.LittleEndian.Uint32(b[8:12]),
		inodesCount:     binary.LittleEndian.Uint32(b[12:16]),
		inodesPerGroup:  binary.LittleEndian.Uint32(b[16:20]),
		freeBlocksCount: binary.LittleEndian.Uint32(b[20:24]),
		freeInodesCount: binary.LittleEndian.Uint32(b[24:28]),
		firstUserIno:    binary.LittleEndian.Uint32(b[28:32]),
		blockSize:       binary.LittleEndian.Uint32(b[32:36]),
		numGroups:       binary.LittleEndian.Uint32(b[36:40]),
	}
}

// --- group descriptor --------------------------------------------------

const onDiskGroupDescSize = 24

// groupDesc is the per-group metadata.
type groupDesc struct {
	blockBitmap    uint32
	inodeBitmap    uint32
	inodeTable     uint32
	freeBlockCount uint32
	freeInodeCount uint32
	usedDirsCount  uint32
}

func (g *groupDesc) marshal() []byte {
	b := make([]byte, onDiskGroupDescSize)
	binary.LittleEndian.PutUint32(b[0:4], g.blockBitmap)
	binary.LittleEndian.PutUint32(b[4:8], g.inodeBitmap)
	binary.LittleEndian.PutUint32(b[8:12], g.inodeTable)
	binary.LittleEndian.PutUint32(b[12:16], g.freeBlockCount)
	binary.LittleEndian.PutUint32(b[16:20], g.freeInodeCount)
	binary.LittleEndian.PutUint32(b[20:24], g.usedDirsCount)
	return b
}

func unmarshalGroupDesc(b []byte) *groupDesc {
	return &groupDesc{
		blockBitmap:    binary.LittleEndian.Uint32(b[0:4]),
		inodeBitmap:    binary.LittleEndian.Uint32(b[4:8]),
		inodeTable:     binary.LittleEndian.Uint32(b[8:12]),
		freeBlockCount: binary.LittleEndian.Uint32(b[12:16]),
		freeInodeCount: binary.LittleEndian.Uint32(b[16:20]),
		usedDirsCount:  binary.LittleEndian.Uint32(b[20:24]),
	}
}

// --- on-disk inode ------------------------------------------------------

// onDiskInodeSize is the fixed encoded size of one inode-table slot.
const onDiskInodeSize = 32 + 4*NumBlockPointers

// diskInode is the on-disk inode: type/mode, link count, size, block
// count, and the fifteen-entry block-pointer table.
type diskInode struct {
	mode    uint16
	nlink   uint16
	size    uint64
	atime   uint32
	ctime   uint32
	mtime   uint32
	blocks  uint32 // block count, in units of filesystem blocks
	rdev    uint32
	block   [NumBlockPointers]uint32
}

func (di *diskInode) marshal() []byte {
	b := make([]byte, onDiskInodeSize)
	binary.LittleEndian.PutUint16(b[0:2], di.mode)
	binary.LittleEndian.PutUint16(b[2:4], di.nlink)
	binary.LittleEndian.PutUint64(b[4:12], di.size)
	binary.LittleEndian.PutUint32(b[12:16], di.atime)
	binary.LittleEndian.PutUint32(b[16:20], di.ctime)
	binary.LittleEndian.PutUint32(b[20:24], di.mtime)
	binary.LittleEndian.PutUint32(b[24:28], di.blocks)
	binary.LittleEndian.PutUint32(b[28:32], di.rdev)
	for i, p := range di.block {
		off := 32 + i*4
		binary.LittleEndian.PutUint32(b[off:off+4], p)
	}
	return b
}

func unmarshalDiskInode(b []byte) *diskInode {
	di := &diskInode{
		mode:   binary.LittleEndian.Uint16(b[0:2]),
		nlink:  binary.LittleEndian.Uint16(b[2:4]),
		size:   binary.LittleEndian.Uint64(b[4:12]),
		atime:  binary.LittleEndian.Uint32(b[12:16]),
		ctime:  binary.LittleEndian.Uint32(b[16:20]),
		mtime:  binary.LittleEndian.Uint32(b[20:24]),
		blocks: binary.LittleEndian.Uint32(b[24:28]),
		rdev:   binary.LittleEndian.Uint32(b[28:32]),
	}
	for i := range di.block {
		off := 32 + i*4
		di.block[i] = binary.LittleEndian.Uint32(b[off : off+4])
	}
	return di
}

func init() {
	// onDiskInodeSize must match the marshaled layout above exactly;
	// this guards against the two drifting apart silently.
	if got := 32 + 4*NumBlockPointers; got != onDiskInodeSize {
		panic("ext2: onDiskInodeSize constant out of sync with marshal layout")
	}
}
