// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/unrar

package unrar

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// extractCopyBufferSize defines buffer size for file copy during extraction.
const extractCopyBufferSize = 64 * 1024

// writeEntry writes decompressed payload of entry to name inside the
// output directory and returns bytes written and the output path.
func (s *Session) writeEntry(entry EntryInfo, name string) (int64, string, error) {
	if !filepath.IsLocal(name) {
		return 0, "", fmt.Errorf("%w: %q", ErrInvalidExtractPath, name)
	}

	dstRootAbs, err := s.outputRoot()
	if err != nil {
		return 0, "", err
	}

	outPath := filepath.Join(dstRootAbs, name)

	rc, err := s.archive.Open(entry.Index)
	if err != nil {
		return 0, outPath, fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { _ = rc.Close() }()

	file, needsTruncate, err := openExtractFile(outPath, s.opts.Extract.FileMode, entry.Size)
	if err != nil {
		return 0, outPath, fmt.Errorf("create %s: %w", name, err)
	}

	if s.copyBuf == nil {
		s.copyBuf = make([]byte, extractCopyBufferSize)
	}

	written, copyErr := copyExtractData(file, rc, s.copyBuf)
	if copyErr == nil && needsTruncate {
		if truncErr := file.Truncate(written); truncErr != nil {
			_ = file.Close()
			return written, outPath, fmt.Errorf("truncate %s: %w", name, truncErr)
		}
	}

	closeErr := file.Close()
	if copyErr != nil {
		return written, outPath, fmt.Errorf("write %s: %w", name, copyErr)
	}

	if closeErr != nil {
		return written, outPath, fmt.Errorf("close %s: %w", name, closeErr)
	}

	return written, outPath, nil
}

// outputRoot resolves and creates the output directory once per session.
func (s *Session) outputRoot() (string, error) {
	if s.destAbs != "" {
		return s.destAbs, nil
	}

	dstRootAbs, err := filepath.Abs(s.opts.Extract.Directory)
	if err != nil {
		return "", fmt.Errorf("resolve output dir: %w", err)
	}

	if err := os.MkdirAll(dstRootAbs, 0o750); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	s.destAbs = dstRootAbs
	return dstRootAbs, nil
}

// openExtractFile opens output path according to selected extract file mode.
func openExtractFile(path string, mode ExtractFileMode, expectedSize int64) (*os.File, bool, error) {
	switch mode {
	case ExtractFileModeTruncate:
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
		return file, false, err
	case ExtractFileModeAuto:
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err == nil {
			return file, false, nil
		}

		if !os.IsExist(err) {
			return nil, false, err
		}

		file, err = os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0o600)
		return file, false, err
	case ExtractFileModeOverwriteSmart:
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o600)
		if err != nil {
			return nil, false, err
		}

		info, err := file.Stat()
		if err != nil {
			_ = file.Close()
			return nil, false, err
		}

		return file, info.Size() > expectedSize, nil
	case ExtractFileModeCreateOnly:
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		return file, false, err
	default:
		return nil, false, fmt.Errorf("unknown extract file mode %q", mode)
	}
}

// copyExtractData copies one entry stream to output file using a fixed buffer.
func copyExtractData(dst io.Writer, src io.Reader, buf []byte) (int64, error) {
	if len(buf) == 0 {
		return 0, io.ErrShortBuffer
	}

	var total int64
	for {
		readN, readErr := src.Read(buf)
		if readN > 0 {
			writeN, writeErr := dst.Write(buf[:readN])
			total += int64(writeN)

			if writeErr != nil {
				return total, writeErr
			}

			if writeN != readN {
				return total, io.ErrShortWrite
			}
		}

		switch readErr {
		case nil:
			continue
		case io.EOF:
			return total, nil
		default:
			return total, readErr
		}
	}
}
