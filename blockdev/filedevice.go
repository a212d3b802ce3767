package blockdev

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// FileDevice is a Device backed by a real file, used by cmd/mkfs and
// cmd/kernsim to persist an ext2 image across process runs. Reads/writes
// are positioned with Pread/Pwrite rather than Seek+Read so concurrent
// callers on different blocks never race on a shared file offset.
type FileDevice struct {
	f          *os.File
	blockSize  uint32
	blockCount uint32
}

var _ Device = (*FileDevice)(nil)

// OpenFileDevice opens (or creates, with Truncate) path as a block
// device of blockCount blocks of blockSize bytes each.
func OpenFileDevice(path string, blockSize, blockCount uint32, create bool) (*FileDevice, error) {
	flags := os.O_RDWR
	if create {
		flags |= os.O_CREATE
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, err
	}
	if create {
		size := int64(blockSize) * int64(blockCount)
		if err := f.Truncate(size); err != nil {
			f.Close()
			return nil, err
		}
	}
	return &FileDevice{f: f, blockSize: blockSize, blockCount: blockCount}, nil
}

func (d *FileDevice) Close() error { return d.f.Close() }

func (d *FileDevice) ReadBlock(n uint32) ([]byte, error) {
	if n >= d.blockCount {
		return nil, &ErrBlockRange{Block: n, Count: d.blockCount}
	}
	buf := make([]byte, d.blockSize)
	off := int64(n) * int64(d.blockSize)
	if _, err := d.f.ReadAt(buf, off); err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *FileDevice) WriteBlock(n uint32, buf []byte) error {
	if n >= d.blockCount {
		return &ErrBlockRange{Block: n, Count: d.blockCount}
	}
	if uint32(len(buf)) != d.blockSize {
		return fmt.Errorf("write of %d bytes to block %d, want %d", len(buf), n, d.blockSize)
	}
	off := int64(n) * int64(d.blockSize)
	_, err := d.f.WriteAt(buf, off)
	return err
}

func (d *FileDevice) BlockSize() uint32  { return d.blockSize }
func (d *FileDevice) BlockCount() uint32 { return d.blockCount }

// Lock/Unlock take an advisory exclusive flock on the backing file,
// serving as the mount lock.
func (d *FileDevice) Lock() {
	_ = unix.Flock(int(d.f.Fd()), unix.LOCK_EX)
}

func (d *FileDevice) Unlock() {
	_ = unix.Flock(int(d.f.Fd()), unix.LOCK_UN)
}
