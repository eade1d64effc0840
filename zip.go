// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/unrar

package unrar

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/encoding/charmap"
)

// zipFlagEncrypted is general purpose bit 0 (traditional or AES encryption).
const zipFlagEncrypted = 0x1

// zipMethodNames maps ZIP compression method ids to names.
var zipMethodNames = map[uint16]string{
	zip.Store:            "store",
	zip.Deflate:          "deflate",
	9:                    "deflate64",
	12:                   "bzip2",
	14:                   "lzma",
	zstd.ZipMethodPKWare: "zstd",
	zstd.ZipMethodWinZip: "zstd",
	95:                   "xz",
	98:                   "ppmd",
	99:                   "aes",
}

// zipDecodableMethods lists methods with a registered decompressor.
var zipDecodableMethods = map[uint16]struct{}{
	zip.Store:            {},
	zip.Deflate:          {},
	zstd.ZipMethodPKWare: {},
	zstd.ZipMethodWinZip: {},
}

// zipArchive serves ZIP archives through klauspost/compress/zip.
// ZIP is the only backend with archive and per-file comments.
type zipArchive struct {
	logger   *slog.Logger
	rc       *zip.ReadCloser
	comment  string
	names    []string
	comments []string
	closed   bool
}

// openZIP opens a ZIP archive and resolves legacy CP437 names.
func openZIP(path string, opts Options) (Archive, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}

	rc.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())
	rc.RegisterDecompressor(zstd.ZipMethodPKWare, zstd.ZipDecompressor())

	// The end record has no UTF-8 flag, so the archive comment is always legacy.
	a := &zipArchive{
		logger:   opts.Logger,
		rc:       rc,
		comment:  decodeZIPComment(rc.Comment, true),
		names:    make([]string, len(rc.File)),
		comments: make([]string, len(rc.File)),
	}

	for i, f := range rc.File {
		a.names[i] = decodeZIPName(f)
		a.comments[i] = decodeZIPComment(f.Comment, f.NonUTF8)
	}

	a.logger.Debug("zip archive listed", "path", path, "entries", len(rc.File))
	return a, nil
}

// decodeZIPName returns entry name as UTF-8 with "/" separators.
func decodeZIPName(f *zip.File) string {
	name := f.Name
	if f.NonUTF8 {
		name = decodeCP437(name)
	}

	return NormalizeSeparators(name)
}

// decodeZIPComment reads a legacy comment as CP437 unless it is valid
// UTF-8 or starts with a UTF-16LE byte order mark.
func decodeZIPComment(comment string, legacy bool) string {
	if !legacy || utf8.ValidString(comment) || strings.HasPrefix(comment, string(bomUTF16LE)) {
		return comment
	}

	return decodeCP437(comment)
}

// decodeCP437 converts CP437 text to UTF-8, returning s unchanged on failure.
func decodeCP437(s string) string {
	decoded, err := charmap.CodePage437.NewDecoder().String(s)
	if err != nil {
		return s
	}

	return decoded
}

// zipMethodName returns a readable name for a ZIP method id.
func zipMethodName(method uint16) string {
	if name, ok := zipMethodNames[method]; ok {
		return name
	}

	return "method " + strconv.Itoa(int(method))
}

func (a *zipArchive) Format() Format { return FormatZIP }

func (a *zipArchive) Len() int { return len(a.rc.File) }

// file returns entry i or nil.
func (a *zipArchive) file(i int) *zip.File {
	if a.closed || checkIndex(i, len(a.rc.File)) != nil {
		return nil
	}

	return a.rc.File[i]
}

func (a *zipArchive) Stat(i int) (EntryInfo, bool) {
	f := a.file(i)
	if f == nil {
		return EntryInfo{}, false
	}

	return EntryInfo{
		Index:      i,
		Size:       int64(f.UncompressedSize64), //nolint:gosec // ZIP64 sizes above MaxInt64 are not representable on disk
		PackedSize: int64(f.CompressedSize64),   //nolint:gosec // same as above
		IsDir:      f.FileInfo().IsDir(),
		Encrypted:  f.Flags&zipFlagEncrypted != 0,
		ModTime:    f.Modified,
		Method:     zipMethodName(f.Method),
	}, true
}

func (a *zipArchive) AppendName(dst []byte, i int) []byte {
	if a.file(i) == nil {
		return dst
	}

	return append(dst, a.names[i]...)
}

func (a *zipArchive) AppendComment(dst []byte) []byte {
	if a.closed {
		return dst
	}

	return append(dst, a.comment...)
}

func (a *zipArchive) AppendFileComment(dst []byte, i int) []byte {
	if a.file(i) == nil {
		return dst
	}

	return append(dst, a.comments[i]...)
}

func (a *zipArchive) Supported(i int) error {
	if a.closed {
		return ErrClosed
	}

	f := a.file(i)
	if f == nil {
		return checkIndex(i, len(a.rc.File))
	}

	if f.Flags&zipFlagEncrypted != 0 {
		return ErrEncryptedEntry
	}

	if _, ok := zipDecodableMethods[f.Method]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedEntry, zipMethodName(f.Method))
	}

	return nil
}

func (a *zipArchive) Open(i int) (io.ReadCloser, error) {
	if a.closed {
		return nil, ErrClosed
	}

	f := a.file(i)
	if f == nil {
		return nil, checkIndex(i, len(a.rc.File))
	}

	return f.Open()
}

func (a *zipArchive) Close() error {
	if a.closed {
		return nil
	}

	a.closed = true
	return a.rc.Close()
}
