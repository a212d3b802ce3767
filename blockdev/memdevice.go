package blockdev

import (
	"fmt"
	"sync"
)

// MemDevice is a Device backed by plain in-memory byte slices, the same
// "byte slice stands in for backing storage" idiom a FUSE-style
// in-memory regular file uses for its own read-only contents, here
// generalized from one file's bytes to a whole block-addressed image:
// each block is its own []byte, so format/superblock code operates on
// it exactly as it would on a real device.
type MemDevice struct {
	blockSize uint32
	blocks    [][]byte

	mu sync.Mutex
}

var _ Device = (*MemDevice)(nil)

// NewMemDevice allocates a zeroed in-memory device of blockCount blocks,
// each blockSize bytes.
func NewMemDevice(blockSize, blockCount uint32) *MemDevice {
	blocks := make([][]byte, blockCount)
	for i := range blocks {
		blocks[i] = make([]byte, blockSize)
	}
	return &MemDevice{blockSize: blockSize, blocks: blocks}
}

func (d *MemDevice) ReadBlock(n uint32) ([]byte, error) {
	if n >= uint32(len(d.blocks)) {
		return nil, &ErrBlockRange{Block: n, Count: uint32(len(d.blocks))}
	}
	return d.blocks[n], nil
}

func (d *MemDevice) WriteBlock(n uint32, buf []byte) error {
	if n >= uint32(len(d.blocks)) {
		return &ErrBlockRange{Block: n, Count: uint32(len(d.blocks))}
	}
	if uint32(len(buf)) != d.blockSize {
		return fmt.Errorf("write of %d bytes to block %d, want %d", len(buf), n, d.blockSize)
	}
	cp := make([]byte, d.blockSize)
	copy(cp, buf)
	d.blocks[n] = cp
	return nil
}

func (d *MemDevice) BlockSize() uint32  { return d.blockSize }
func (d *MemDevice) BlockCount() uint32 { return uint32(len(d.blocks)) }

// Lock/Unlock serialize writers in-process; there is no real file to
// flock, so a mutex plays the mount-lock role instead.
func (d *MemDevice) Lock()   { d.mu.Lock() }
func (d *MemDevice) Unlock() { d.mu.Unlock() }
