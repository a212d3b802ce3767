package ext2

import (
	"testing"

	"github.com/gokernel/core/blockdev"
	"github.com/stretchr/testify/require"
)

// TestAddEntrySplitsExistingRecord checks that, given a block holding a
// single entry "a" spanning the whole block, inserting "bb" splits it
// into "a" (rec_len=12) and "bb" (rec_len=block_size-12).
func TestAddEntrySplitsExistingRecord(t *testing.T) {
	const blockSize = 64
	dev := blockdev.NewMemDevice(blockSize, 1)

	buf := make([]byte, blockSize)
	writeDirEntry(buf, 0, dirEntry{ino: 5, recLen: blockSize, nameLen: 1, fileType: FileTypeRegular, name: "a"})
	require.NoError(t, dev.WriteBlock(0, buf))

	val, stop, err := addEntryVisitor(6, FileTypeRegular, "bb")(dev, 0)
	require.NoError(t, err)
	require.True(t, stop)
	require.EqualValues(t, addEntrySuccess, val)

	got, err := dev.ReadBlock(0)
	require.NoError(t, err)

	first := readDirEntry(got, 0)
	require.Equal(t, "a", first.name)
	require.EqualValues(t, 12, first.recLen)

	second := readDirEntry(got, 12)
	require.Equal(t, "bb", second.name)
	require.EqualValues(t, blockSize-12, second.recLen)
}

// TestDeleteEntryCoalescesIntoPrevious checks that, given the split
// record from the previous test, deleting "bb" folds its space back
// into "a".
func TestDeleteEntryCoalescesIntoPrevious(t *testing.T) {
	const blockSize = 64
	dev := blockdev.NewMemDevice(blockSize, 1)
	buf := make([]byte, blockSize)
	writeDirEntry(buf, 0, dirEntry{ino: 5, recLen: 12, nameLen: 1, fileType: FileTypeRegular, name: "a"})
	writeDirEntry(buf, 12, dirEntry{ino: 6, recLen: blockSize - 12, nameLen: 2, fileType: FileTypeRegular, name: "bb"})
	require.NoError(t, dev.WriteBlock(0, buf))

	val, stop, err := deleteEntryVisitor("bb")(dev, 0)
	require.NoError(t, err)
	require.True(t, stop)
	require.EqualValues(t, 6, val)

	got, err := dev.ReadBlock(0)
	require.NoError(t, err)
	first := readDirEntry(got, 0)
	require.Equal(t, "a", first.name)
	require.EqualValues(t, blockSize, first.recLen)
}

func TestAddEntryReusesTombstone(t *testing.T) {
	const blockSize = 64
	dev := blockdev.NewMemDevice(blockSize, 1)
	buf := make([]byte, blockSize)
	writeDirEntry(buf, 0, dirEntry{ino: 0, recLen: blockSize, nameLen: 0, fileType: 0, name: ""})
	require.NoError(t, dev.WriteBlock(0, buf))

	val, stop, err := addEntryVisitor(9, FileTypeRegular, "x")(dev, 0)
	require.NoError(t, err)
	require.True(t, stop)
	require.EqualValues(t, addEntrySuccess, val)

	got, err := dev.ReadBlock(0)
	require.NoError(t, err)
	e := readDirEntry(got, 0)
	require.EqualValues(t, 9, e.ino)
	require.EqualValues(t, blockSize, e.recLen, "tombstone reuse keeps its own record length, no further split")
}

func TestFindInoVisitorMiss(t *testing.T) {
	const blockSize = 32
	dev := blockdev.NewMemDevice(blockSize, 1)
	buf := make([]byte, blockSize)
	writeDirEntry(buf, 0, dirEntry{ino: 2, recLen: blockSize, nameLen: 1, fileType: FileTypeDir, name: "."})
	require.NoError(t, dev.WriteBlock(0, buf))

	_, stop, err := findInoVisitor("missing")(dev, 0)
	require.NoError(t, err)
	require.False(t, stop)
}

func TestInitDirBlock(t *testing.T) {
	const blockSize = 32
	buf := initDirBlock(blockSize, 7, 2)

	dot := readDirEntry(buf, 0)
	require.Equal(t, ".", dot.name)
	require.EqualValues(t, 7, dot.ino)

	dotdot := readDirEntry(buf, int(dot.recLen))
	require.Equal(t, "..", dotdot.name)
	require.EqualValues(t, 2, dotdot.ino)
	require.EqualValues(t, blockSize-uint32(dot.recLen), dotdot.recLen)
}
