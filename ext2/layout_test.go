package ext2

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuperblockMarshalRoundTrip(t *testing.T) {
	sb := &superblock{
		blocksCount: 4096, blocksPerGroup: 4095, firstDataBlock: 0,
		inodesCount: 512, inodesPerGroup: 512,
		freeBlocksCount: 4000, freeInodesCount: 500,
		firstUserIno: StartingIno, blockSize: 4096, numGroups: 1,
	}
	got := unmarshalSuperblock(sb.marshal())
	require.Equal(t, sb, got)
}

func TestGroupDescMarshalRoundTrip(t *testing.T) {
	gd := &groupDesc{
		blockBitmap: 3, inodeBitmap: 4, inodeTable: 5,
		freeBlockCount: 100, freeInodeCount: 50, usedDirsCount: 2,
	}
	got := unmarshalGroupDesc(gd.marshal())
	require.Equal(t, gd, got)
}

func TestDiskInodeMarshalRoundTrip(t *testing.T) {
	di := &diskInode{mode: 0x8000, nlink: 2, size: 12345, atime: 1, ctime: 2, mtime: 3, blocks: 4, rdev: 0}
	di.block[0] = 10
	di.block[IndSingle] = 20
	di.block[IndTriple] = 30

	got := unmarshalDiskInode(di.marshal())
	require.Equal(t, di, got)
}
