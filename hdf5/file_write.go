package hdf5

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/baltrad/vpconvert/internal/alloc"
	binpkg "github.com/baltrad/vpconvert/internal/binary"
	"github.com/baltrad/vpconvert/internal/message"
	"github.com/baltrad/vpconvert/internal/object"
	"github.com/baltrad/vpconvert/internal/superblock"
)

// Create creates an HDF5 file at path, truncating any existing file. The
// file has a version 2 superblock, 8 byte addresses and an empty root
// group directly after the superblock.
func Create(path string) (*File, error) {
	osf, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	f, err := initFile(path, osf)
	if err != nil {
		osf.Close()
		os.Remove(path)
		return nil, err
	}
	return f, nil
}

func initFile(path string, osf *os.File) (*File, error) {
	const width = 8
	w := binpkg.NewWriter(osf, binpkg.Config{ByteOrder: binary.LittleEndian, OffsetSize: width, LengthSize: width})

	sb := superblock.NewSuperblock()
	sb.OffsetSize, sb.LengthSize = width, width
	sb.RootGroupAddress = uint64(sb.Size())

	root, err := object.Encode(w, object.GroupMessages(nil, nil), object.MinGroupChunkSize)
	if err != nil {
		return nil, fmt.Errorf("encoding root group: %w", err)
	}
	sb.EOFAddress = sb.RootGroupAddress + uint64(len(root))
	if _, err := sb.Write(w); err != nil {
		return nil, fmt.Errorf("writing superblock: %w", err)
	}
	if err := w.At(int64(sb.RootGroupAddress)).WriteBytes(root); err != nil {
		return nil, fmt.Errorf("writing root group: %w", err)
	}

	f := &File{
		path:      path,
		file:      osf,
		sb:        sb,
		writer:    w,
		allocator: alloc.New(sb.EOFAddress),
		groups:    make(map[string]*Group),
	}
	f.root = &Group{file: f, path: "/", addr: sb.RootGroupAddress}
	f.groups["/"] = f.root
	return f, nil
}

// Flush rewrites the superblock with the current end of file and syncs.
// It does nothing for files opened with Open.
func (f *File) Flush() error {
	if !f.writable() {
		return nil
	}
	f.sb.EOFAddress = f.allocator.EOFAddr()
	if _, err := f.sb.Write(f.writer.At(0)); err != nil {
		return err
	}
	return f.file.Sync()
}

// AllocStats reports the space reserved in a created file.
func (f *File) AllocStats() alloc.Stats {
	if f.allocator == nil {
		return alloc.Stats{}
	}
	return f.allocator.Stats()
}

func (f *File) allocate(size int64) uint64 {
	return f.allocator.Alloc(uint64(size))
}

// writeBlock stores b in newly allocated space.
func (f *File) writeBlock(b []byte) (uint64, error) {
	addr := f.allocate(int64(len(b)))
	return addr, f.writer.At(int64(addr)).WriteBytes(b)
}

// writeHeader encodes an object header into newly allocated space.
func (f *File) writeHeader(msgs []message.Message, minChunk int) (uint64, error) {
	b, err := object.Encode(f.writer, msgs, minChunk)
	if err != nil {
		return 0, err
	}
	return f.writeBlock(b)
}
