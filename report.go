// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/unrar

package unrar

import (
	"fmt"
	"io"
)

// Reporter renders run results in the classic unrar listing format.
// Listing and comments go to out; unsupported and failed entries go to errOut.
// A nil Reporter discards everything.
type Reporter struct {
	out    io.Writer
	errOut io.Writer
}

// NewReporter returns a Reporter writing to out and errOut.
func NewReporter(out, errOut io.Writer) *Reporter {
	if out == nil {
		out = io.Discard
	}

	if errOut == nil {
		errOut = io.Discard
	}

	return &Reporter{out: out, errOut: errOut}
}

// ArchiveComment prints the archive comment frame.
func (r *Reporter) ArchiveComment(text string) {
	if r == nil {
		return
	}

	writeCommentFrame(r.out, "Archive comment", text)
}

// Entry prints one entry line, its comment frame, and its error line.
func (r *Reporter) Entry(res EntryResult) {
	if r == nil {
		return
	}

	var size int64
	if res.HasInfo {
		size = res.Info.Size
	}

	_, _ = fmt.Fprintf(r.out, "%d/%d: \"%s\" - %d bytes\n", res.Info.Index+1, res.Count, res.Name, size)

	if res.HasComment {
		writeCommentFrame(r.out, "File comment", res.Comment)
	}

	switch res.Outcome {
	case OutcomeUnsupported:
		_, _ = fmt.Fprintf(r.errOut, "Not supported: %s\n", Describe(res.Err))
	case OutcomeFailed:
		_, _ = fmt.Fprintf(r.errOut, "Error: %s\n", Describe(res.Err))
	}
}

// writeCommentFrame prints text between ".--- <title>:" and "'---" lines.
func writeCommentFrame(w io.Writer, title, text string) {
	_, _ = fmt.Fprintf(w, ".--- %s:\n%s\n'---\n\n", title, text)
}
