// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/unrar

package unrar

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Archive is the decoding backend contract consumed by Session.
//
// Append* methods append raw bytes of unknown encoding to dst and return
// the extended slice; nothing is appended when the value is absent.
// Stat may report false for an index without metadata.
type Archive interface {
	// Format returns the container format served by the backend.
	Format() Format
	// Len returns number of entries.
	Len() int
	// Stat returns metadata of entry i.
	Stat(i int) (EntryInfo, bool)
	// AppendName appends raw name bytes of entry i.
	AppendName(dst []byte, i int) []byte
	// AppendComment appends raw archive comment bytes.
	AppendComment(dst []byte) []byte
	// AppendFileComment appends raw comment bytes of entry i.
	AppendFileComment(dst []byte, i int) []byte
	// Supported returns nil when entry i can be decoded.
	Supported(i int) error
	// Open returns decompressed payload stream of entry i.
	Open(i int) (io.ReadCloser, error)
	// Close releases all backend resources.
	Close() error
}

// openFunc opens one archive format by path.
type openFunc func(path string, opts Options) (Archive, error)

// archiveSignature maps a leading magic to a container format.
type archiveSignature struct {
	magic  []byte
	format Format
}

var (
	// archiveSignatures are checked in order against the file head.
	archiveSignatures = []archiveSignature{
		{magic: []byte("Rar!\x1a\x07\x01\x00"), format: FormatRAR},
		{magic: []byte("Rar!\x1a\x07\x00"), format: FormatRAR},
		{magic: []byte("7z\xbc\xaf\x27\x1c"), format: FormatSevenZip},
		{magic: []byte("PK\x03\x04"), format: FormatZIP},
		{magic: []byte("PK\x05\x06"), format: FormatZIP},
	}

	// archiveExtensions maps lower-case file extensions to container formats.
	archiveExtensions = map[string]Format{
		".rar": FormatRAR,
		".zip": FormatZIP,
		".7z":  FormatSevenZip,
	}

	// archiveOpeners holds one backend per format.
	archiveOpeners = map[Format]openFunc{
		FormatRAR:      openRAR,
		FormatZIP:      openZIP,
		FormatSevenZip: openSevenZip,
	}
)

// sniffSize is number of leading bytes read for signature detection.
const sniffSize = 8

// IsArchivePath reports whether path looks like an archive by extension or,
// for a readable file, by signature.
func IsArchivePath(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}

	return DetectFormat(path) != FormatUnknown
}

// DetectFormat resolves container format of path. A readable file
// signature wins over the extension.
func DetectFormat(path string) Format {
	if format := sniffFormat(path); format != FormatUnknown {
		return format
	}

	return formatByExtension(path)
}

// formatByExtension maps path extension to format.
func formatByExtension(path string) Format {
	return archiveExtensions[strings.ToLower(filepath.Ext(path))]
}

// sniffFormat reads the file head and matches known signatures.
func sniffFormat(path string) Format {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown
	}
	defer func() { _ = f.Close() }()

	var head [sniffSize]byte
	n, _ := io.ReadFull(f, head[:])

	return formatBySignature(head[:n])
}

// formatBySignature matches head bytes against known signatures.
func formatBySignature(head []byte) Format {
	for _, sig := range archiveSignatures {
		if bytes.HasPrefix(head, sig.magic) {
			return sig.format
		}
	}

	return FormatUnknown
}

// openArchive opens path with the backend of its detected format.
func openArchive(path string, opts Options) (Archive, error) {
	format := DetectFormat(path)
	open, ok := archiveOpeners[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	archive, err := open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOpen, format, err)
	}

	return archive, nil
}

// checkIndex validates entry index against count.
func checkIndex(i, count int) error {
	if i < 0 || i >= count {
		return fmt.Errorf("%w: %d of %d", ErrEntryIndex, i, count)
	}

	return nil
}
