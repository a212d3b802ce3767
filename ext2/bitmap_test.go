package ext2

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestGroupBlockCapacityClampsLastGroup checks that scanning clamps
// against the last group's true remaining block count rather than
// assume every group is full-size.
func TestGroupBlockCapacityClampsLastGroup(t *testing.T) {
	sb := &Superblock{
		sb:             &superblock{blocksCount: 25, firstDataBlock: 1},
		blocksPerGroup: 10,
		numGroups:      3,
	}
	require.EqualValues(t, 10, sb.groupBlockCapacity(0))
	require.EqualValues(t, 10, sb.groupBlockCapacity(1))
	require.EqualValues(t, 4, sb.groupBlockCapacity(2))
}

func TestGroupInodeCapacityClampsLastGroup(t *testing.T) {
	sb := &Superblock{
		sb:             &superblock{inodesCount: 37},
		inodesPerGroup: 16,
		numGroups:      3,
	}
	require.EqualValues(t, 16, sb.groupInodeCapacity(0))
	require.EqualValues(t, 16, sb.groupInodeCapacity(1))
	require.EqualValues(t, 5, sb.groupInodeCapacity(2))
}

func TestBitOps(t *testing.T) {
	bm := make([]byte, 2)
	require.False(t, testBit(bm, 5))
	setBit(bm, 5)
	require.True(t, testBit(bm, 5))
	clearBit(bm, 5)
	require.False(t, testBit(bm, 5))
}

// TestAllocBlockMarksBitmapAndDecrementsCounts checks that allocating a
// block sets its bitmap bit and decrements the superblock free-block
// count, and that freeing it clears the bit and restores the count.
func TestAllocBlockMarksBitmapAndDecrementsCounts(t *testing.T) {
	dev, sb := mustFormat(t, 1024, 256)
	freeBefore := sb.FreeBlocksCount()

	block, err := sb.AllocBlock()
	require.NoError(t, err)

	gd, err := sb.GetGroupDesc(0)
	require.NoError(t, err)
	bitmap, err := dev.ReadBlock(gd.blockBitmap)
	require.NoError(t, err)
	require.True(t, testBit(bitmap, block-sb.FirstDataBlock()))
	require.EqualValues(t, freeBefore-1, sb.FreeBlocksCount())

	require.NoError(t, sb.FreeBlock(block))
	bitmap, err = dev.ReadBlock(gd.blockBitmap)
	require.NoError(t, err)
	require.False(t, testBit(bitmap, block-sb.FirstDataBlock()))
	require.EqualValues(t, freeBefore, sb.FreeBlocksCount())
}

func TestAllocInodeMarksBitmapAndDecrementsCounts(t *testing.T) {
	_, sb := mustFormat(t, 1024, 256)
	freeBefore := sb.FreeInodesCount()

	ino, err := sb.AllocInode()
	require.NoError(t, err)
	require.NotZero(t, ino)
	require.EqualValues(t, freeBefore-1, sb.FreeInodesCount())

	require.NoError(t, sb.FreeInode(ino))
	require.EqualValues(t, freeBefore, sb.FreeInodesCount())
}
