package ext2

import (
	"testing"

	"github.com/gokernel/core/blockdev"
	"github.com/gokernel/core/vfs"
	"github.com/stretchr/testify/require"
)

// TestResolveBlockDirectAndIndirect populates logical blocks {0, 11, 12,
// 12+blocksize/4} and checks each pointer-table slot is wired at the
// indirection level its position implies.
func TestResolveBlockDirectAndIndirect(t *testing.T) {
	const blockSize = 64 // pointersPerBlock = 16
	dev := blockdev.NewMemDevice(blockSize, 2000)
	di := &diskInode{}

	next := uint32(100)
	allocFn := func() (uint32, error) {
		b := next
		next++
		return b, nil
	}

	b0, err := ResolveBlock(dev, di, blockSize, 0, true, allocFn)
	require.NoError(t, err)
	require.NotZero(t, b0)
	require.EqualValues(t, b0, di.block[0])

	b11, err := ResolveBlock(dev, di, blockSize, 11, true, allocFn)
	require.NoError(t, err)
	require.EqualValues(t, b11, di.block[11])

	b12, err := ResolveBlock(dev, di, blockSize, 12, true, allocFn)
	require.NoError(t, err)
	require.NotZero(t, di.block[IndSingle])
	require.NotZero(t, b12)

	p := uint32(blockSize / 4)
	logicalDouble := uint32(NumDirectBlocks) + p
	bDouble, err := ResolveBlock(dev, di, blockSize, logicalDouble, true, allocFn)
	require.NoError(t, err)
	require.NotZero(t, di.block[IndDouble])
	require.NotZero(t, bDouble)

	// Re-resolving the same logical indices without allocation must
	// return the same physical blocks, not allocate again.
	again, err := ResolveBlock(dev, di, blockSize, 0, false, nil)
	require.NoError(t, err)
	require.Equal(t, b0, again)
}

func TestResolveBlockOutOfRange(t *testing.T) {
	const blockSize = 64
	dev := blockdev.NewMemDevice(blockSize, 10)
	di := &diskInode{}
	p := uint32(blockSize / 4)
	tripleEnd := uint32(NumDirectBlocks) + p + p*p + p*p*p
	_, err := ResolveBlock(dev, di, blockSize, tripleEnd, false, nil)
	require.ErrorIs(t, err, vfs.ErrInvalid)
}

func TestWalkDirectoryBlocksStopsOnFirstHit(t *testing.T) {
	const blockSize = 32
	dev := blockdev.NewMemDevice(blockSize, 4)
	di := &diskInode{}
	di.block[0] = 1
	di.block[1] = 2

	buf1 := make([]byte, blockSize)
	writeDirEntry(buf1, 0, dirEntry{ino: 0, recLen: blockSize, nameLen: 0})
	require.NoError(t, dev.WriteBlock(1, buf1))

	buf2 := make([]byte, blockSize)
	writeDirEntry(buf2, 0, dirEntry{ino: 42, recLen: blockSize, nameLen: 1, fileType: FileTypeRegular, name: "z"})
	require.NoError(t, dev.WriteBlock(2, buf2))

	val, stop, err := WalkDirectoryBlocks(dev, di, findInoVisitor("z"))
	require.NoError(t, err)
	require.True(t, stop)
	require.EqualValues(t, 42, val)
}
