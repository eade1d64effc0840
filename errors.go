// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/unrar

package unrar

import (
	"errors"
	"strings"
)

// Sentinel errors for archive sessions. Use errors.Is in callers.
var (
	// ErrNotArchivePath means the path is not recognized as an archive by extension or signature.
	ErrNotArchivePath = errors.New("not a recognized archive path")
	// ErrUnknownFormat means no backend can open the archive.
	ErrUnknownFormat = errors.New("unknown archive format")
	// ErrOpen means the archive could not be opened by its backend.
	ErrOpen = errors.New("open archive")
	// ErrNotInitialized means the session was not created with NewSession.
	ErrNotInitialized = errors.New("session is not initialized")
	// ErrNotOpen means the session has no open archive.
	ErrNotOpen = errors.New("session has no open archive")
	// ErrAlreadyOpen means Open was called twice on one session.
	ErrAlreadyOpen = errors.New("session already has an open archive")
	// ErrClosed means the session or archive is already closed.
	ErrClosed = errors.New("session already closed")
	// ErrEntryIndex means the entry index is outside [0, Len).
	ErrEntryIndex = errors.New("entry index out of range")
	// ErrUnsupportedEntry means the entry compression method cannot be decoded.
	ErrUnsupportedEntry = errors.New("unsupported compression method")
	// ErrEncryptedEntry means the entry is encrypted and no password was given.
	ErrEncryptedEntry = errors.New("entry is encrypted, password required")
	// ErrInvalidOptions means session options failed validation.
	ErrInvalidOptions = errors.New("invalid session options")
	// ErrInvalidFilterRules means one or more include/exclude rules are invalid.
	ErrInvalidFilterRules = errors.New("invalid filter rules")
	// ErrInvalidExtractPath means the entry name is unusable as an output file name.
	ErrInvalidExtractPath = errors.New("invalid extract path")
)

// unsupportedError is a decoder rejection reported as ErrUnsupportedEntry.
// Its message is the decoder message alone.
type unsupportedError struct {
	err error
}

func (e *unsupportedError) Error() string { return e.err.Error() }

func (e *unsupportedError) Unwrap() []error { return []error{ErrUnsupportedEntry, e.err} }

// decoderErrorPrefixes are package prefixes of decoder error messages.
var decoderErrorPrefixes = []string{"rardecode: ", "sevenzip: ", "zip: ", "flate: ", "zstd: "}

// Describe renders err as a one-line human-readable description.
// Decoder package prefixes of wrapped messages are dropped, nil yields "no error".
func Describe(err error) string {
	if err == nil {
		return "no error"
	}

	msg := err.Error()
	for _, prefix := range decoderErrorPrefixes {
		msg = strings.TrimPrefix(msg, prefix)
		msg = strings.ReplaceAll(msg, ": "+prefix, ": ")
	}

	return msg
}
