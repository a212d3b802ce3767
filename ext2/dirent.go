package ext2

import (
	"encoding/binary"

	"github.com/gokernel/core/blockdev"
)

// Directory record layout, byte-exact:
//
//	offset  size  field
//	0       4     inode
//	4       2     record length
//	6       1     name length
//	7       1     file type (1 regular, 2 directory)
//	8       name_len  name bytes (unterminated)
const dirEntryHeaderSize = 8

// minRecLen returns the minimum record length for a name of length
// nameLen: ceil((8+nameLen)/4)*4.
func minRecLen(nameLen int) uint16 {
	total := dirEntryHeaderSize + nameLen
	return uint16(((total + 3) / 4) * 4)
}

type dirEntry struct {
	ino      uint32
	recLen   uint16
	nameLen  uint8
	fileType uint8
	name     string
}

func readDirEntry(buf []byte, off int) dirEntry {
	nameLen := buf[off+6]
	return dirEntry{
		ino:      binary.LittleEndian.Uint32(buf[off : off+4]),
		recLen:   binary.LittleEndian.Uint16(buf[off+4 : off+6]),
		nameLen:  nameLen,
		fileType: buf[off+7],
		name:     string(buf[off+8 : off+8+int(nameLen)]),
	}
}

func writeDirEntry(buf []byte, off int, e dirEntry) {
	binary.LittleEndian.PutUint32(buf[off:off+4], e.ino)
	binary.LittleEndian.PutUint16(buf[off+4:off+6], e.recLen)
	buf[off+6] = e.nameLen
	buf[off+7] = e.fileType
	copy(buf[off+8:off+8+len(e.name)], e.name)
}

func writeRecLen(buf []byte, off int, recLen uint16) {
	binary.LittleEndian.PutUint16(buf[off+4:off+6], recLen)
}

func writeIno(buf []byte, off int, ino uint32) {
	binary.LittleEndian.PutUint32(buf[off:off+4], ino)
}

// initDirBlock formats a fresh directory block with the "." and ".."
// bootstrap entries: "." references the new inode, ".." references the
// parent; the second entry's record length extends to end-of-block.
func initDirBlock(blockSize uint32, selfIno, parentIno uint32) []byte {
	buf := make([]byte, blockSize)
	dotLen := minRecLen(1)
	writeDirEntry(buf, 0, dirEntry{ino: selfIno, recLen: dotLen, nameLen: 1, fileType: FileTypeDir, name: "."})
	writeDirEntry(buf, int(dotLen), dirEntry{
		ino: parentIno, recLen: uint16(blockSize) - dotLen, nameLen: 2, fileType: FileTypeDir, name: "..",
	})
	return buf
}

// findInoVisitor builds a LeafVisitor that advances by each record's
// length comparing names; a hit returns (ino, stop=true); reaching
// block size without a match returns stop=false so the caller's
// enclosing slot loop tries the next block.
func findInoVisitor(name string) LeafVisitor {
	return func(dev blockdev.Device, block uint32) (int64, bool, error) {
		buf, err := dev.ReadBlock(block)
		if err != nil {
			return 0, false, err
		}
		blockSize := uint32(len(buf))
		for cursor := uint32(0); cursor < blockSize; {
			e := readDirEntry(buf, int(cursor))
			if e.recLen == 0 {
				break
			}
			if e.ino != 0 && e.name == name {
				return int64(e.ino), true, nil
			}
			cursor += uint32(e.recLen)
		}
		return 0, false, nil
	}
}

// addEntrySuccess is the sentinel stop-value addEntryVisitor returns on
// successful placement; its value is unused by callers.
const addEntrySuccess = 1

// addEntryVisitor builds a LeafVisitor that places a new entry: the
// newly placed entry's record length is set to exactly the space
// carved for it (tombstone reuse keeps the tombstone's own length; a
// split shrinks the existing record to its own minimum and gives the
// new entry the entire remainder), never to max(new_rec_len,
// entry->rec_len).
func addEntryVisitor(ino uint32, fileType uint8, name string) LeafVisitor {
	need := minRecLen(len(name))
	return func(dev blockdev.Device, block uint32) (int64, bool, error) {
		buf, err := dev.ReadBlock(block)
		if err != nil {
			return 0, false, err
		}
		blockSize := uint32(len(buf))
		newEntry := dirEntry{ino: ino, recLen: 0, nameLen: uint8(len(name)), fileType: fileType, name: name}

		for cursor := uint32(0); cursor < blockSize; {
			e := readDirEntry(buf, int(cursor))
			if e.recLen == 0 {
				break
			}

			if e.ino == 0 && e.recLen >= need {
				newEntry.recLen = e.recLen
				writeDirEntry(buf, int(cursor), newEntry)
				if err := dev.WriteBlock(block, buf); err != nil {
					return 0, false, err
				}
				return addEntrySuccess, true, nil
			}

			if e.ino != 0 {
				existingMin := minRecLen(int(e.nameLen))
				residual := e.recLen - existingMin
				if e.recLen >= existingMin && residual >= need {
					writeRecLen(buf, int(cursor), existingMin)
					newOff := cursor + uint32(existingMin)
					newEntry.recLen = residual
					writeDirEntry(buf, int(newOff), newEntry)
					writeRecLen(buf, int(newOff), newEntry.recLen)
					if err := dev.WriteBlock(block, buf); err != nil {
						return 0, false, err
					}
					return addEntrySuccess, true, nil
				}
			}

			cursor += uint32(e.recLen)
		}
		return 0, false, nil
	}
}

// deleteEntryVisitor builds a LeafVisitor that finds the named record
// and coalesces it into the previous record in the same block if one
// exists, else zeroes the inode field and leaves a reusable tombstone.
// Returns the removed inode number.
func deleteEntryVisitor(name string) LeafVisitor {
	return func(dev blockdev.Device, block uint32) (int64, bool, error) {
		buf, err := dev.ReadBlock(block)
		if err != nil {
			return 0, false, err
		}
		blockSize := uint32(len(buf))
		prevOff := int64(-1)

		for cursor := uint32(0); cursor < blockSize; {
			e := readDirEntry(buf, int(cursor))
			if e.recLen == 0 {
				break
			}
			if e.ino != 0 && e.name == name {
				removed := e.ino
				writeIno(buf, int(cursor), 0)
				if prevOff >= 0 {
					prev := readDirEntry(buf, int(prevOff))
					writeRecLen(buf, int(prevOff), prev.recLen+e.recLen)
				}
				if err := dev.WriteBlock(block, buf); err != nil {
					return 0, false, err
				}
				return int64(removed), true, nil
			}
			prevOff = int64(cursor)
			cursor += uint32(e.recLen)
		}
		return 0, false, nil
	}
}
