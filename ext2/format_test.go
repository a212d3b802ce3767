package ext2

import (
	"testing"

	"github.com/gokernel/core/blockdev"
	"github.com/gokernel/core/vfs"
	"github.com/stretchr/testify/require"
)

// mustFormat builds a fresh in-memory device of the given geometry and
// formats it, returning both the device and the bound Superblock.
func mustFormat(t *testing.T, blockSize, blockCount uint32) (blockdev.Device, *Superblock) {
	t.Helper()
	dev := blockdev.NewMemDevice(blockSize, blockCount)
	require.NoError(t, Format(dev, FormatOptions{}))
	sb, err := ReadSuperblock(dev)
	require.NoError(t, err)
	return dev, sb
}

func TestFormatProducesReadableRootDirectory(t *testing.T) {
	_, sb := mustFormat(t, 4096, 4096)

	rootDI, err := sb.ReadInode(RootIno)
	require.NoError(t, err)
	require.EqualValues(t, vfs.ModeDirectory, rootDI.mode)
	require.EqualValues(t, 2, rootDI.nlink)
	require.NotZero(t, rootDI.block[0])

	val, stop, err := WalkDirectoryBlocks(sb.dev, rootDI, findInoVisitor("."))
	require.NoError(t, err)
	require.True(t, stop)
	require.EqualValues(t, RootIno, val)
}

func TestFormatReportsConsistentFreeCounts(t *testing.T) {
	_, sb := mustFormat(t, 4096, 4096)
	require.True(t, sb.FreeInodesCount() < sb.InodesCount())
	require.True(t, sb.FreeBlocksCount() < sb.BlocksCount())
}
