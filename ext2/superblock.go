package ext2

import (
	"github.com/gokernel/core/blockdev"
	"github.com/pkg/errors"
)

// Superblock is the in-core cache of the on-disk superblock, bound to a
// backing device: read once at mount time and kept resident, with
// free-count mutations happening in core and flushed back on demand.
type Superblock struct {
	dev blockdev.Device
	sb  *superblock

	blockSize      uint32
	blocksPerGroup uint32
	inodesPerGroup uint32
	numGroups      uint32
}

// ReadSuperblock loads the superblock from its fixed byte offset
// on dev.
func ReadSuperblock(dev blockdev.Device) (*Superblock, error) {
	blockSize := dev.BlockSize()
	block := uint32(SuperblockOffset) / blockSize
	buf, err := dev.ReadBlock(block)
	if err != nil {
		return nil, errors.Wrap(err, "ext2: read superblock block")
	}
	off := SuperblockOffset % blockSize
	if int(off)+onDiskSuperblockSize > len(buf) {
		return nil, errors.New("ext2: superblock does not fit in its block")
	}
	sb := unmarshalSuperblock(buf[off : off+onDiskSuperblockSize])
	return &Superblock{
		dev:            dev,
		sb:             sb,
		blockSize:      sb.blockSize,
		blocksPerGroup: sb.blocksPerGroup,
		inodesPerGroup: sb.inodesPerGroup,
		numGroups:      sb.numGroups,
	}, nil
}

// WriteSuper flushes the in-core superblock back to its fixed offset,
// implementing vfs.SuperblockOperations.
func (s *Superblock) WriteSuper() error {
	blockSize := s.dev.BlockSize()
	block := uint32(SuperblockOffset) / blockSize
	buf, err := s.dev.ReadBlock(block)
	if err != nil {
		return errors.Wrap(err, "ext2: read superblock block for write-back")
	}
	off := SuperblockOffset % blockSize
	copy(buf[off:off+onDiskSuperblockSize], s.sb.marshal())
	return s.dev.WriteBlock(block, buf)
}

func (s *Superblock) Device() blockdev.Device { return s.dev }
func (s *Superblock) BlockSize() uint32        { return s.blockSize }
func (s *Superblock) BlocksPerGroup() uint32   { return s.blocksPerGroup }
func (s *Superblock) InodesPerGroup() uint32   { return s.inodesPerGroup }
func (s *Superblock) NumGroups() uint32        { return s.numGroups }
func (s *Superblock) InodesCount() uint32      { return s.sb.inodesCount }
func (s *Superblock) BlocksCount() uint32      { return s.sb.blocksCount }
func (s *Superblock) FirstDataBlock() uint32   { return s.sb.firstDataBlock }

// DecFreeBlocks / IncFreeBlocks mutate the in-core free-block count; the
// caller is responsible for calling WriteSuper to persist it. Superblock
// and group-descriptor free-count updates are treated as one logical
// transaction per allocation/free.
func (s *Superblock) DecFreeBlocks(n uint32) { s.sb.freeBlocksCount -= n }
func (s *Superblock) IncFreeBlocks(n uint32) { s.sb.freeBlocksCount += n }
func (s *Superblock) DecFreeInodes(n uint32) { s.sb.freeInodesCount -= n }
func (s *Superblock) IncFreeInodes(n uint32) { s.sb.freeInodesCount += n }

func (s *Superblock) FreeBlocksCount() uint32 { return s.sb.freeBlocksCount }
func (s *Superblock) FreeInodesCount() uint32 { return s.sb.freeInodesCount }
