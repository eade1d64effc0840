// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/unrar

package unrar

import (
	"io"

	"github.com/javi11/sevenzip"
)

// sevenZipArchive serves 7z archives through sevenzip. The format has no comments.
type sevenZipArchive struct {
	rc     *sevenzip.ReadCloser
	closed bool
}

// openSevenZip opens a 7z archive, using the session password when set.
func openSevenZip(path string, opts Options) (Archive, error) {
	var (
		rc  *sevenzip.ReadCloser
		err error
	)

	if opts.Password != "" {
		rc, err = sevenzip.OpenReaderWithPassword(path, opts.Password)
	} else {
		rc, err = sevenzip.OpenReader(path)
	}
	if err != nil {
		return nil, err
	}

	opts.Logger.Debug("7z archive listed", "path", path, "entries", len(rc.File))
	return &sevenZipArchive{rc: rc}, nil
}

func (a *sevenZipArchive) Format() Format { return FormatSevenZip }

func (a *sevenZipArchive) Len() int { return len(a.rc.File) }

// file returns entry i or nil.
func (a *sevenZipArchive) file(i int) *sevenzip.File {
	if a.closed || checkIndex(i, len(a.rc.File)) != nil {
		return nil
	}

	return a.rc.File[i]
}

func (a *sevenZipArchive) Stat(i int) (EntryInfo, bool) {
	f := a.file(i)
	if f == nil {
		return EntryInfo{}, false
	}

	return EntryInfo{
		Index:   i,
		Size:    int64(f.UncompressedSize), //nolint:gosec // sizes above MaxInt64 are not representable on disk
		IsDir:   f.FileInfo().IsDir(),
		ModTime: f.Modified,
	}, true
}

func (a *sevenZipArchive) AppendName(dst []byte, i int) []byte {
	f := a.file(i)
	if f == nil {
		return dst
	}

	return append(dst, NormalizeSeparators(f.Name)...)
}

func (a *sevenZipArchive) AppendComment(dst []byte) []byte { return dst }

func (a *sevenZipArchive) AppendFileComment(dst []byte, _ int) []byte { return dst }

// Supported accepts every listed entry; decoder errors surface on Open or read.
func (a *sevenZipArchive) Supported(i int) error {
	if a.closed {
		return ErrClosed
	}

	return checkIndex(i, len(a.rc.File))
}

func (a *sevenZipArchive) Open(i int) (io.ReadCloser, error) {
	if a.closed {
		return nil, ErrClosed
	}

	f := a.file(i)
	if f == nil {
		return nil, checkIndex(i, len(a.rc.File))
	}

	return f.Open()
}

func (a *sevenZipArchive) Close() error {
	if a.closed {
		return nil
	}

	a.closed = true
	return a.rc.Close()
}
