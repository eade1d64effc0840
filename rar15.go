// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/unrar

package unrar

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
)

// RAR 1.5-4.x block layout constants.
const (
	rar15BaseHeaderSize = 7
	rar15FileHeaderSize = rar15BaseHeaderSize + 25

	rar15BlockArchive = 0x73
	rar15BlockFile    = 0x74
	rar15BlockEnd     = 0x7b

	rar15FlagHasData = 0x8000

	rar15ArcVolume    = 0x0001
	rar15ArcEncrypted = 0x0080

	rar15FileSplitBefore = 0x0001
	rar15FileLargeData   = 0x0100
	rar15FileUnicode     = 0x0200
)

var (
	rar15Signature = []byte("Rar!\x1a\x07\x00")

	// errRAR15Layout means the archive block layout cannot be walked.
	errRAR15Layout = errors.New("unsupported rar block layout")
)

// rar15Layout is the raw block layout of a single-volume RAR 1.5-4.x archive.
type rar15Layout struct {
	files []rar15File
	// headEnd is the offset right after the archive block.
	headEnd int64
	size    int64
}

// rar15File locates one file in the archive.
type rar15File struct {
	name string
	// size is the unpacked size, -1 when unknown.
	size int64
	// dataEnd is the offset right after the file data.
	dataEnd int64
}

// readRAR15Layout walks the block headers of the archive at path.
func readRAR15Layout(path string) (rar15Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return rar15Layout{}, err
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return rar15Layout{}, err
	}

	return scanRAR15(f, st.Size())
}

// scanRAR15 lists file blocks in order. Continuation blocks of split
// files are skipped. Multi-volume and header-encrypted archives are rejected.
func scanRAR15(r io.ReaderAt, size int64) (rar15Layout, error) {
	sig := make([]byte, len(rar15Signature))
	if _, err := r.ReadAt(sig, 0); err != nil || !bytes.Equal(sig, rar15Signature) {
		return rar15Layout{}, errRAR15Layout
	}

	layout := rar15Layout{size: size}
	base := make([]byte, rar15BaseHeaderSize)

	for off := int64(len(rar15Signature)); off+rar15BaseHeaderSize <= size; {
		if _, err := r.ReadAt(base, off); err != nil {
			return rar15Layout{}, err
		}

		htype := base[2]
		flags := binary.LittleEndian.Uint16(base[3:])
		headSize := int64(binary.LittleEndian.Uint16(base[5:]))
		if headSize < rar15BaseHeaderSize || off+headSize > size {
			return rar15Layout{}, errRAR15Layout
		}

		head := make([]byte, headSize)
		if _, err := r.ReadAt(head, off); err != nil {
			return rar15Layout{}, err
		}

		var dataSize int64
		if flags&rar15FlagHasData != 0 {
			if headSize < rar15BaseHeaderSize+4 {
				return rar15Layout{}, errRAR15Layout
			}

			dataSize = int64(binary.LittleEndian.Uint32(head[rar15BaseHeaderSize:]))
		}

		next := off + headSize
		switch htype {
		case rar15BlockArchive:
			if flags&(rar15ArcVolume|rar15ArcEncrypted) != 0 {
				return rar15Layout{}, errRAR15Layout
			}

			layout.headEnd = next
		case rar15BlockFile:
			if layout.headEnd == 0 {
				return rar15Layout{}, errRAR15Layout
			}

			file, highData, err := parseRAR15File(head, flags)
			if err != nil {
				return rar15Layout{}, err
			}

			dataSize |= highData << 32
			if flags&rar15FileSplitBefore == 0 {
				file.dataEnd = next + dataSize
				layout.files = append(layout.files, file)
			}
		case rar15BlockEnd:
			return layout, nil
		}

		off = next + dataSize
	}

	return layout, nil
}

// parseRAR15File decodes name and unpacked size of a file block header.
// It also returns the high 32 bits of the packed size.
func parseRAR15File(head []byte, flags uint16) (rar15File, int64, error) {
	fixed := rar15FileHeaderSize
	if flags&rar15FileLargeData != 0 {
		fixed += 8
	}

	if len(head) < fixed {
		return rar15File{}, 0, errRAR15Layout
	}

	unpacked := int64(binary.LittleEndian.Uint32(head[11:]))
	nameSize := int(binary.LittleEndian.Uint16(head[26:]))

	var highData int64
	if flags&rar15FileLargeData != 0 {
		highData = int64(binary.LittleEndian.Uint32(head[32:]))
		unpacked |= int64(binary.LittleEndian.Uint32(head[36:])) << 32
	} else if uint32(unpacked) == 0xFFFFFFFF {
		unpacked = -1
	}

	if len(head) < fixed+nameSize {
		return rar15File{}, 0, errRAR15Layout
	}

	name := head[fixed : fixed+nameSize]
	// Unicode names keep an OEM name before the NUL and the encoded form after it.
	if flags&rar15FileUnicode != 0 {
		if i := bytes.IndexByte(name, 0); i >= 0 {
			name = name[:i]
		}
	}

	return rar15File{name: NormalizeSeparators(string(name)), size: unpacked}, highData, nil
}
