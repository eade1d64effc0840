// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/unrar

package unrar

import (
	"fmt"
	"iter"
	"log/slog"
	"path/filepath"
)

// sessionState tracks the Session lifecycle.
type sessionState uint8

// Session lifecycle states.
const (
	stateUninitialized sessionState = iota
	stateInitialized
	stateOpened
	stateClosed
)

// String returns the state name.
func (st sessionState) String() string {
	switch st {
	case stateInitialized:
		return "initialized"
	case stateOpened:
		return "opened"
	case stateClosed:
		return "closed"
	default:
		return "uninitialized"
	}
}

// Session owns one open archive for the duration of a run.
//
// Lifecycle is NewSession (init), Open, any number of entry operations,
// then exactly one Close. A Session is not safe for concurrent use.
type Session struct {
	// archive is the open backend; nil until Open.
	archive Archive
	// logger receives diagnostic records.
	logger *slog.Logger
	// filter selects entries for extraction; nil includes all.
	filter *entryFilter
	// path is the opened archive path.
	path string
	// destAbs is resolved extraction directory, set on first extraction.
	destAbs string
	// copyBuf is reused for every extracted entry.
	copyBuf []byte
	// opts are the validated session options.
	opts Options
	// buffers accounts raw name/comment buffers.
	buffers bufferLedger
	// state is the lifecycle state.
	state sessionState
}

// NewSession validates options and prepares an empty session.
func NewSession(opts Options) (*Session, error) {
	opts.applyDefaults()

	if err := opts.Extract.validate(); err != nil {
		return nil, err
	}

	filter, err := newEntryFilter(opts.Extract.Filter, opts.Extract.FilterMatcherOptions)
	if err != nil {
		return nil, err
	}

	return &Session{
		logger: opts.Logger,
		filter: filter,
		opts:   opts,
		state:  stateInitialized,
	}, nil
}

// Open opens the archive at path with the backend matching its format.
func (s *Session) Open(path string) error {
	if err := s.requireState(stateInitialized); err != nil {
		return err
	}

	if !IsArchivePath(path) {
		return fmt.Errorf("%w: %s", ErrNotArchivePath, path)
	}

	archive, err := openArchive(path, s.opts)
	if err != nil {
		return err
	}

	s.attach(path, archive)
	return nil
}

// OpenArchive attaches an already opened backend. The session takes
// ownership and closes it on Close.
func (s *Session) OpenArchive(archive Archive) error {
	if archive == nil {
		return fmt.Errorf("%w: nil archive", ErrInvalidOptions)
	}

	if err := s.requireState(stateInitialized); err != nil {
		return err
	}

	s.attach("", archive)
	return nil
}

// attach switches the session to opened state.
func (s *Session) attach(path string, archive Archive) {
	s.archive = archive
	s.path = path
	s.state = stateOpened
	s.logger.Debug("archive opened", "path", path, "format", archive.Format(), "entries", archive.Len())
}

// requireState checks the session is in want state.
func (s *Session) requireState(want sessionState) error {
	if s == nil || s.state == stateUninitialized {
		return ErrNotInitialized
	}

	if s.state == want {
		return nil
	}

	switch s.state {
	case stateClosed:
		return ErrClosed
	case stateOpened:
		return ErrAlreadyOpen
	default:
		return ErrNotOpen
	}
}

// Format returns format of the open archive.
func (s *Session) Format() Format {
	if s.requireState(stateOpened) != nil {
		return FormatUnknown
	}

	return s.archive.Format()
}

// Len returns number of entries in the open archive.
func (s *Session) Len() int {
	if s.requireState(stateOpened) != nil {
		return 0
	}

	return s.archive.Len()
}

// Comment returns the decoded archive comment.
func (s *Session) Comment() (string, bool) {
	if s.requireState(stateOpened) != nil {
		return "", false
	}

	return s.decodeRaw(s.archive.AppendComment)
}

// FileComment returns the decoded comment of entry i.
func (s *Session) FileComment(i int) (string, bool) {
	if s.requireState(stateOpened) != nil {
		return "", false
	}

	return s.decodeRaw(func(dst []byte) []byte {
		return s.archive.AppendFileComment(dst, i)
	})
}

// decodeRaw fills one pooled buffer and decodes it; the buffer is released on every path.
func (s *Session) decodeRaw(fill func(dst []byte) []byte) (string, bool) {
	tb := s.buffers.acquire()
	defer s.buffers.release(tb)

	tb.b = fill(tb.b)
	return DecodeText(tb.b)
}

// BufferStats reports raw text buffer accounting.
func (s *Session) BufferStats() BufferStats {
	return s.buffers.stats()
}

// Results yields one processed result per entry in index order.
func (s *Session) Results(cmd Command) iter.Seq[EntryResult] {
	return func(yield func(EntryResult) bool) {
		if s.requireState(stateOpened) != nil {
			return
		}

		count := s.archive.Len()
		for i := range count {
			if !yield(s.Process(i, cmd)) {
				return
			}
		}
	}
}

// Run reports the archive comment, then folds every entry result into a
// Summary. Per-entry failures never stop the run; only session state
// errors are returned. rep may be nil.
func (s *Session) Run(cmd Command, rep *Reporter) (Summary, error) {
	var summary Summary
	if err := s.requireState(stateOpened); err != nil {
		return summary, err
	}

	if cmd != CommandList && cmd != CommandExtract {
		return summary, fmt.Errorf("%w: command %q", ErrInvalidOptions, cmd.String())
	}

	if comment, ok := s.Comment(); ok {
		rep.ArchiveComment(comment)
	}

	for res := range s.Results(cmd) {
		rep.Entry(res)
		summary.add(res)
	}

	s.logger.Info("archive processed",
		"path", s.path,
		"command", cmd.String(),
		"entries", summary.Entries,
		"extracted", summary.Extracted,
		"unsupported", summary.Unsupported,
		"failed", summary.Failed,
	)

	return summary, nil
}

// Close releases the archive. A second Close returns ErrClosed.
func (s *Session) Close() error {
	if s == nil || s.state == stateUninitialized {
		return ErrNotInitialized
	}

	if s.state == stateClosed {
		return ErrClosed
	}

	s.state = stateClosed
	if s.archive == nil {
		return nil
	}

	err := s.archive.Close()
	s.archive = nil
	if err != nil {
		return fmt.Errorf("close archive %s: %w", filepath.Base(s.path), err)
	}

	return nil
}
