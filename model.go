// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/unrar

package unrar

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/woozymasta/pathrules"
)

// Format identifies the archive container handled by a backend.
type Format string

// Supported archive containers.
const (
	FormatUnknown  Format = ""
	FormatRAR      Format = "rar"
	FormatZIP      Format = "zip"
	FormatSevenZip Format = "7z"
)

// Command is the CLI action letter.
type Command byte

// Session commands.
const (
	// CommandInvalid marks a rejected command argument.
	CommandInvalid Command = 0
	// CommandList lists metadata and comments only.
	CommandList Command = 'l'
	// CommandExtract lists and extracts supported non-directory entries.
	CommandExtract Command = 'e'
)

// ParseCommand accepts exactly one of "l" or "e".
func ParseCommand(param string) Command {
	if len(param) != 1 {
		return CommandInvalid
	}

	switch cmd := Command(param[0]); cmd {
	case CommandList, CommandExtract:
		return cmd
	default:
		return CommandInvalid
	}
}

// String returns the command letter.
func (c Command) String() string {
	if c == CommandInvalid {
		return ""
	}

	return string(rune(c))
}

// EntryInfo describes one archive entry as exposed by the backend.
type EntryInfo struct {
	// ModTime is entry modification time when the format stores one.
	ModTime time.Time `json:"mod_time,omitzero" yaml:"mod_time,omitempty"`
	// Method is a human-readable compression method name.
	Method string `json:"method,omitempty" yaml:"method,omitempty"`
	// Index is 0-based and stable for the session.
	Index int `json:"index" yaml:"index"`
	// Size is uncompressed size in bytes.
	Size int64 `json:"size" yaml:"size"`
	// PackedSize is stored size in bytes.
	PackedSize int64 `json:"packed_size,omitempty" yaml:"packed_size,omitempty"`
	// IsDir reports a directory record.
	IsDir bool `json:"is_dir,omitempty" yaml:"is_dir,omitempty"`
	// Encrypted reports encrypted entry payload.
	Encrypted bool `json:"encrypted,omitempty" yaml:"encrypted,omitempty"`
}

// Outcome classifies what happened to one entry during a run.
type Outcome string

// Per-entry outcomes.
const (
	// OutcomeListed means the entry was reported only.
	OutcomeListed Outcome = "listed"
	// OutcomeExtracted means the entry was written to disk.
	OutcomeExtracted Outcome = "extracted"
	// OutcomeSkipped means the entry was silently excluded from extraction.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeUnsupported means the backend cannot decode the entry.
	OutcomeUnsupported Outcome = "unsupported"
	// OutcomeFailed means extraction was attempted and failed.
	OutcomeFailed Outcome = "failed"
)

// EntryResult is the per-entry report produced by Session.Process.
type EntryResult struct {
	// Err is set for OutcomeUnsupported and OutcomeFailed.
	Err error `json:"-" yaml:"-"`
	// Name is the normalized entry name; empty when HasName is false.
	Name string `json:"name" yaml:"name"`
	// Comment is the decoded entry comment; empty when HasComment is false.
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`
	// OutputPath is the written file path for OutcomeExtracted.
	OutputPath string `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	// Outcome classifies the entry result.
	Outcome Outcome `json:"outcome" yaml:"outcome"`
	// Info is entry metadata; zero when HasInfo is false.
	Info EntryInfo `json:"info" yaml:"info"`
	// Count is total entries in the archive.
	Count int `json:"count" yaml:"count"`
	// Written is bytes written for OutcomeExtracted.
	Written int64 `json:"written,omitempty" yaml:"written,omitempty"`
	// HasName reports whether the entry has a usable name.
	HasName bool `json:"has_name" yaml:"has_name"`
	// HasInfo reports whether the backend returned metadata.
	HasInfo bool `json:"has_info" yaml:"has_info"`
	// HasComment reports whether a comment was decoded.
	HasComment bool `json:"has_comment,omitempty" yaml:"has_comment,omitempty"`
}

// Summary aggregates a full run over archive entries.
type Summary struct {
	Entries     int   `json:"entries" yaml:"entries"`
	Extracted   int   `json:"extracted" yaml:"extracted"`
	Skipped     int   `json:"skipped" yaml:"skipped"`
	Unsupported int   `json:"unsupported" yaml:"unsupported"`
	Failed      int   `json:"failed" yaml:"failed"`
	Written     int64 `json:"written" yaml:"written"`
}

// add folds one entry result into the summary.
func (s *Summary) add(res EntryResult) {
	s.Entries++
	switch res.Outcome {
	case OutcomeExtracted:
		s.Extracted++
		s.Written += res.Written
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeUnsupported:
		s.Unsupported++
	case OutcomeFailed:
		s.Failed++
	}
}

// ExtractFileMode controls output file open behavior during extraction.
type ExtractFileMode string

// Output file creation policies for extraction.
const (
	// ExtractFileModeTruncate opens existing files with truncate and creates missing files.
	ExtractFileModeTruncate ExtractFileMode = "truncate"
	// ExtractFileModeAuto first tries create-only, then falls back to truncate for existing files.
	ExtractFileModeAuto ExtractFileMode = "auto"
	// ExtractFileModeOverwriteSmart rewrites files in place and truncates only when existing file is larger.
	ExtractFileModeOverwriteSmart ExtractFileMode = "overwrite_smart"
	// ExtractFileModeCreateOnly creates files only when absent and fails on existing files.
	ExtractFileModeCreateOnly ExtractFileMode = "create_only"
)

// ExtractOptions configures the extract command.
type ExtractOptions struct {
	// OnEntryDone is called after one entry is fully written to disk.
	OnEntryDone func(entry EntryInfo, written int64, outputPath string) `json:"-" yaml:"-"`
	// Directory is the output directory; empty means current working directory.
	Directory string `json:"directory,omitempty" yaml:"directory,omitempty"`
	// FileMode controls output file creation policy. Default is truncate (overwrite).
	FileMode ExtractFileMode `json:"file_mode,omitempty" yaml:"file_mode,omitempty"`
	// Filter defines ordered include/exclude rules matched against full entry names.
	Filter []pathrules.Rule `json:"filter,omitempty" yaml:"filter,omitempty"`
	// FilterMatcherOptions control filter rule matching.
	FilterMatcherOptions pathrules.MatcherOptions `json:"filter_matcher_options,omitzero" yaml:"filter_matcher_options,omitempty"`
	// SanitizeNames rewrites stripped names to portable filesystem-safe form.
	SanitizeNames bool `json:"sanitize_names,omitempty" yaml:"sanitize_names,omitempty"`
}

// Options configures a Session.
type Options struct {
	// Logger receives diagnostic records; nil discards them.
	Logger *slog.Logger `json:"-" yaml:"-"`
	// Password is used for encrypted RAR and 7z archives.
	Password string `json:"-" yaml:"-"`
	// Extract configures the extract command.
	Extract ExtractOptions `json:"extract,omitzero" yaml:"extract,omitempty"`
}

// applyDefaults fills zero-valued extract options with defaults.
func (opts *ExtractOptions) applyDefaults() {
	if opts.Directory == "" {
		opts.Directory = "."
	}

	if opts.FileMode == "" {
		opts.FileMode = ExtractFileModeTruncate
	}

	if opts.FilterMatcherOptions == (pathrules.MatcherOptions{}) {
		opts.FilterMatcherOptions = pathrules.MatcherOptions{
			CaseInsensitive: true,
			DefaultAction:   pathrules.ActionInclude,
		}
	}

	if opts.FilterMatcherOptions.DefaultAction == pathrules.ActionUnknown {
		opts.FilterMatcherOptions.DefaultAction = pathrules.ActionInclude
	}
}

// validate reports unusable extract options.
func (opts *ExtractOptions) validate() error {
	switch opts.FileMode {
	case ExtractFileModeTruncate, ExtractFileModeAuto, ExtractFileModeOverwriteSmart, ExtractFileModeCreateOnly:
	default:
		return fmt.Errorf("%w: unknown extract file mode %q", ErrInvalidOptions, opts.FileMode)
	}

	return nil
}

// applyDefaults fills zero-valued session options with defaults.
func (opts *Options) applyDefaults() {
	opts.Extract.applyDefaults()

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
}
