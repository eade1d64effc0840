// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/unrar

package unrar

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/javi11/rardecode/v2"
)

// rarArchive serves RAR 1.5-5.0 archives (including multi-volume sets) through rardecode.
//
// rardecode is a forward-only stream, so entry headers are listed once at
// open and payload access keeps a cursor that reopens the archive when a
// lower index is requested. Comment blocks are not exposed by the decoder.
//
// The decoder cannot step over a file header it rejects. For single-volume
// RAR 1.5-4.x archives listing resumes in a new segment: a stream made of
// the archive head followed by everything after the rejected entry data.
type rarArchive struct {
	logger   *slog.Logger
	stream   *rarStream
	layout   *rar15Layout
	path     string
	password string
	entries  []rarEntry
	// segments are stream start offsets; 0 is the whole archive.
	segments []int64
	// segment and pos locate the stream: pos is the entry sequence
	// number inside segment, -1 before first.
	segment int
	pos     int
	closed  bool
}

// rarEntry is one listed RAR entry.
type rarEntry struct {
	// header is nil when the decoder rejected the entry header.
	header *rardecode.FileHeader
	// err is the rejection reason for an entry without header.
	err     error
	name    string
	size    int64
	segment int
	seq     int
}

// rarStream is a decoder over one segment and the file behind it.
type rarStream struct {
	reader *rardecode.Reader
	closer io.Closer
}

// openRAR lists RAR headers and keeps nothing open until first payload access.
func openRAR(path string, opts Options) (Archive, error) {
	a := &rarArchive{
		logger:   opts.Logger,
		path:     path,
		password: opts.Password,
		segments: []int64{0},
		pos:      -1,
	}

	for seg := 0; seg < len(a.segments); seg++ {
		if err := a.listSegment(seg); err != nil {
			if seg == 0 {
				return nil, err
			}

			a.logger.Warn("rar listing stopped", "path", path, "entries", len(a.entries), "err", err)
			break
		}
	}

	a.logger.Debug("rar archive listed", "path", path, "entries", len(a.entries), "segments", len(a.segments))
	return a, nil
}

// listSegment appends entry headers of segment seg.
func (a *rarArchive) listSegment(seg int) error {
	stream, err := a.openStream(seg)
	if err != nil {
		return err
	}
	defer func() { _ = stream.closer.Close() }()

	for seq := 0; ; seq++ {
		header, err := stream.reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return a.rejectHeader(err)
		}

		size := header.UnPackedSize
		if header.UnKnownSize {
			size = 0
		}

		a.entries = append(a.entries, rarEntry{
			header:  header,
			name:    header.Name,
			size:    size,
			segment: seg,
			seq:     seq,
		})
	}
}

// rejectHeader records the entry whose header the decoder refused and
// schedules a segment past its data when the block layout is known.
func (a *rarArchive) rejectHeader(err error) error {
	if !isRARDecoderError(err) {
		if len(a.entries) == 0 {
			return err
		}

		a.logger.Warn("rar header listing stopped early", "path", a.path, "entries", len(a.entries), "err", err)
		a.entries = append(a.entries, rarEntry{err: err, segment: -1})
		return nil
	}

	entry := rarEntry{err: err, segment: -1}
	file, ok := a.rawFile(len(a.entries))
	if !ok {
		a.logger.Warn("rar entries after rejected header are unreachable", "path", a.path, "index", len(a.entries), "err", err)
		a.entries = append(a.entries, entry)
		return nil
	}

	entry.name = file.name
	entry.size = max(file.size, 0)
	a.entries = append(a.entries, entry)

	if file.dataEnd < a.layout.size {
		a.segments = append(a.segments, file.dataEnd)
	}

	return nil
}

// rawFile returns file i of the RAR 1.5-4.x block layout, scanning it once.
func (a *rarArchive) rawFile(i int) (rar15File, bool) {
	if a.layout == nil {
		layout, err := readRAR15Layout(a.path)
		if err != nil {
			a.logger.Debug("rar block layout unavailable", "path", a.path, "err", err)
		}

		a.layout = &layout
	}

	if i >= len(a.layout.files) {
		return rar15File{}, false
	}

	return a.layout.files[i], true
}

// isRARDecoderError reports per-entry header rejections of rardecode.
func isRARDecoderError(err error) bool {
	return errors.Is(err, rardecode.ErrUnsupportedDecoder) ||
		errors.Is(err, rardecode.ErrUnknownDecoder) ||
		errors.Is(err, rardecode.ErrDictionaryTooLarge)
}

// openStream opens a decoder positioned before the first entry of segment seg.
func (a *rarArchive) openStream(seg int) (*rarStream, error) {
	off := a.segments[seg]
	if off == 0 {
		rc, err := rardecode.OpenReader(a.path, a.decodeOptions()...)
		if err != nil {
			return nil, err
		}

		return &rarStream{reader: &rc.Reader, closer: rc}, nil
	}

	f, err := os.Open(a.path)
	if err != nil {
		return nil, err
	}

	src := io.MultiReader(
		io.NewSectionReader(f, 0, a.layout.headEnd),
		io.NewSectionReader(f, off, a.layout.size-off),
	)

	reader, err := rardecode.NewReader(src, a.decodeOptions()...)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return &rarStream{reader: reader, closer: f}, nil
}

// decodeOptions returns rardecode options for this archive.
func (a *rarArchive) decodeOptions() []rardecode.Option {
	if a.password == "" {
		return nil
	}

	return []rardecode.Option{rardecode.Password(a.password)}
}

func (a *rarArchive) Format() Format { return FormatRAR }

func (a *rarArchive) Len() int { return len(a.entries) }

func (a *rarArchive) Stat(i int) (EntryInfo, bool) {
	if checkIndex(i, len(a.entries)) != nil {
		return EntryInfo{}, false
	}

	e := a.entries[i]
	if e.header == nil {
		if e.name == "" {
			return EntryInfo{}, false
		}

		return EntryInfo{Index: i, Size: e.size}, true
	}

	h := e.header
	return EntryInfo{
		Index:      i,
		Size:       e.size,
		PackedSize: h.PackedSize,
		IsDir:      h.IsDir,
		Encrypted:  h.Encrypted,
		ModTime:    h.ModificationTime,
	}, true
}

func (a *rarArchive) AppendName(dst []byte, i int) []byte {
	if checkIndex(i, len(a.entries)) != nil {
		return dst
	}

	return append(dst, a.entries[i].name...)
}

func (a *rarArchive) AppendComment(dst []byte) []byte { return dst }

func (a *rarArchive) AppendFileComment(dst []byte, _ int) []byte { return dst }

func (a *rarArchive) Supported(i int) error {
	if err := checkIndex(i, len(a.entries)); err != nil {
		return err
	}

	e := a.entries[i]
	if e.header == nil {
		return &unsupportedError{err: e.err}
	}

	if e.header.Encrypted && a.password == "" {
		return ErrEncryptedEntry
	}

	return nil
}

// Open positions the shared stream on entry i. The returned reader is
// valid until the next Open or Close call.
func (a *rarArchive) Open(i int) (io.ReadCloser, error) {
	if a.closed {
		return nil, ErrClosed
	}

	if err := checkIndex(i, len(a.entries)); err != nil {
		return nil, err
	}

	if a.entries[i].header == nil {
		return nil, &unsupportedError{err: a.entries[i].err}
	}

	if err := a.seek(a.entries[i]); err != nil {
		return nil, fmt.Errorf("seek entry %d: %w", i, err)
	}

	return io.NopCloser(a.stream.reader), nil
}

// seek advances the stream to entry e, reopening it for backward moves
// and segment changes.
func (a *rarArchive) seek(e rarEntry) error {
	if a.stream == nil || e.segment != a.segment || e.seq <= a.pos {
		if err := a.reopen(e.segment); err != nil {
			return err
		}
	}

	for a.pos < e.seq {
		if _, err := a.stream.reader.Next(); err != nil {
			// A failed Next leaves the decoder unusable.
			_ = a.closeStream()
			if errors.Is(err, io.EOF) {
				return io.ErrUnexpectedEOF
			}

			return err
		}

		a.pos++
	}

	return nil
}

// reopen restarts the payload stream from the first entry of segment seg.
func (a *rarArchive) reopen(seg int) error {
	_ = a.closeStream()

	stream, err := a.openStream(seg)
	if err != nil {
		return err
	}

	a.stream = stream
	a.segment = seg
	a.pos = -1
	return nil
}

// closeStream drops the payload stream.
func (a *rarArchive) closeStream() error {
	if a.stream == nil {
		return nil
	}

	err := a.stream.closer.Close()
	a.stream = nil
	return err
}

func (a *rarArchive) Close() error {
	if a.closed {
		return nil
	}

	a.closed = true
	return a.closeStream()
}
