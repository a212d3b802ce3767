package ext2

import (
	"encoding/binary"

	"github.com/gokernel/core/blockdev"
	"github.com/gokernel/core/vfs"
)

// pointersPerBlock is the number of 32-bit block pointers that fit in
// one indirect block.
func pointersPerBlock(blockSize uint32) uint32 {
	return blockSize / 4
}

func decodeUint32Block(buf []byte) []uint32 {
	out := make([]uint32, len(buf)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(buf[i*4 : i*4+4])
	}
	return out
}

func encodeUint32Block(entries []uint32) []byte {
	buf := make([]byte, len(entries)*4)
	for i, e := range entries {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], e)
	}
	return buf
}

// slotLevel returns the indirection level implied by a block-pointer-table
// slot index.
func slotLevel(slot int) int {
	switch {
	case slot < NumDirectBlocks:
		return 0
	case slot == IndSingle:
		return 1
	case slot == IndDouble:
		return 2
	case slot == IndTriple:
		return 3
	default:
		return -1
	}
}

// LeafVisitor is applied to a leaf (level-0) data block by
// WalkDirectoryBlocks. It returns an explicit {continue, stop-with-value,
// error} tri-state rather than encoding "stop" as a sentinel value.
type LeafVisitor func(dev blockdev.Device, block uint32) (value int64, stop bool, err error)

// recursiveBlockAction is the generic recursive traversal: given a
// level and a starting block, either invokes visitor on a leaf block
// (level 0) or loads the indirect block, iterates its blockSize/4
// entries, and recurses with level-1.
func recursiveBlockAction(dev blockdev.Device, level int, block uint32, visitor LeafVisitor) (int64, bool, error) {
	if block == 0 {
		return 0, false, nil
	}
	if level == 0 {
		return visitor(dev, block)
	}

	buf, err := dev.ReadBlock(block)
	if err != nil {
		return 0, false, err
	}
	entries := decodeUint32Block(buf)
	for _, e := range entries {
		if e == 0 {
			continue
		}
		val, stop, err := recursiveBlockAction(dev, level-1, e, visitor)
		if err != nil {
			return 0, false, err
		}
		if stop {
			return val, true, nil
		}
	}
	return 0, false, nil
}

// WalkDirectoryBlocks applies visitor to every data block reachable from
// di's block-pointer table, slot by slot, dispatching each slot at the
// indirection level its position implies. It stops and
// returns the visitor's value as soon as any leaf invocation reports
// stop=true.
func WalkDirectoryBlocks(dev blockdev.Device, di *diskInode, visitor LeafVisitor) (int64, bool, error) {
	for slot := 0; slot < NumBlockPointers; slot++ {
		block := di.block[slot]
		if block == 0 {
			continue
		}
		level := slotLevel(slot)
		if level < 0 {
			continue
		}
		val, stop, err := recursiveBlockAction(dev, level, block, visitor)
		if err != nil {
			return 0, false, err
		}
		if stop {
			return val, true, nil
		}
	}
	return 0, false, nil
}

// AllocFunc allocates and zeroes a fresh block, returning its number.
type AllocFunc func() (uint32, error)

// ResolveBlock resolves file-relative logical block index `logical` to a
// physical block number by level: 0..11 direct, 12..
// single indirect via slot 12, next range double indirect via slot 13,
// next range triple indirect via slot 14. When allocate is true, missing
// direct/indirect/leaf pointers are filled in by calling allocFn, and
// di's block-pointer table is mutated in place — the caller is
// responsible for persisting di afterward.
func ResolveBlock(dev blockdev.Device, di *diskInode, blockSize uint32, logical uint32, allocate bool, allocFn AllocFunc) (uint32, error) {
	p := pointersPerBlock(blockSize)

	if logical < NumDirectBlocks {
		phys := di.block[logical]
		if phys == 0 && allocate {
			var err error
			phys, err = allocFn()
			if err != nil {
				return 0, err
			}
			di.block[logical] = phys
		}
		return phys, nil
	}

	singleEnd := uint32(NumDirectBlocks) + p
	doubleEnd := singleEnd + p*p
	tripleEnd := doubleEnd + p*p*p

	var slot int
	var depth int
	var idx []uint32

	switch {
	case logical < singleEnd:
		slot, depth = IndSingle, 1
		idx = []uint32{logical - NumDirectBlocks}
	case logical < doubleEnd:
		slot, depth = IndDouble, 2
		rem := logical - singleEnd
		idx = []uint32{rem / p, rem % p}
	case logical < tripleEnd:
		slot, depth = IndTriple, 3
		rem := logical - doubleEnd
		idx = []uint32{rem / (p * p), (rem / p) % p, rem % p}
	default:
		return 0, vfs.ErrInvalid
	}

	root := di.block[slot]
	leaf, newRoot, err := resolveIndirect(dev, root, depth, idx, p, allocate, allocFn)
	if err != nil {
		return 0, err
	}
	if newRoot != root {
		di.block[slot] = newRoot
	}
	return leaf, nil
}

// resolveIndirect descends `depth` levels of indirection starting at
// block `blockNum` (0 meaning "not yet allocated"), following idx[0] at
// this level and idx[1:] at the next. It returns the leaf physical block
// number and the (possibly newly-allocated) blockNum for this level.
func resolveIndirect(dev blockdev.Device, blockNum uint32, depth int, idx []uint32, p uint32, allocate bool, allocFn AllocFunc) (leaf uint32, newBlockNum uint32, err error) {
	if blockNum == 0 {
		if !allocate {
			return 0, 0, nil
		}
		blockNum, err = allocFn()
		if err != nil {
			return 0, 0, err
		}
	}

	buf, err := dev.ReadBlock(blockNum)
	if err != nil {
		return 0, 0, err
	}
	entries := decodeUint32Block(buf)
	i := idx[0]

	if depth == 1 {
		leaf = entries[i]
		if leaf == 0 && allocate {
			leaf, err = allocFn()
			if err != nil {
				return 0, 0, err
			}
			entries[i] = leaf
			if err := dev.WriteBlock(blockNum, encodeUint32Block(entries)); err != nil {
				return 0, 0, err
			}
		}
		return leaf, blockNum, nil
	}

	childBlock := entries[i]
	leaf, newChild, err := resolveIndirect(dev, childBlock, depth-1, idx[1:], p, allocate, allocFn)
	if err != nil {
		return 0, 0, err
	}
	if newChild != childBlock {
		entries[i] = newChild
		if err := dev.WriteBlock(blockNum, encodeUint32Block(entries)); err != nil {
			return 0, 0, err
		}
	}
	return leaf, blockNum, nil
}
