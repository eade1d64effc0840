// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/unrar

/*
Package unrar lists and extracts RAR, ZIP and 7z archives through one
entry-oriented Session. It is designed for streaming workflows: entry
payloads are copied to disk with a fixed buffer and never loaded fully
into memory.

Entry handling (summary):
  - every entry is reported with its index, name and uncompressed size;
  - archive and per-entry comments are decoded from UTF-8 or UTF-16LE;
  - extraction writes only the part of a name after its last "/";
  - directory records and names without a usable final component are skipped;
  - unsupported or failing entries are reported and never stop the run.

# Listing

Open an archive and print its contents:

	s, err := unrar.NewSession(unrar.Options{})
	if err != nil {
	    return err
	}
	defer s.Close()
	if err := s.Open("data.rar"); err != nil {
	    return err
	}
	summary, err := s.Run(unrar.CommandList, unrar.NewReporter(os.Stdout, os.Stderr))

Results can also be consumed directly:

	for res := range s.Results(unrar.CommandList) {
	    fmt.Println(res.Info.Index, res.Name, res.Info.Size)
	}

# Extracting

Extraction uses ExtractOptions from the session options:

	s, err := unrar.NewSession(unrar.Options{
	    Password: "secret",
	    Extract: unrar.ExtractOptions{
	        Directory: "out",
	        FileMode:  unrar.ExtractFileModeCreateOnly,
	        Filter:    unrar.IncludeRules("*.txt"),
	        FilterMatcherOptions: pathrules.MatcherOptions{
	            CaseInsensitive: true,
	            DefaultAction:   pathrules.ActionExclude,
	        },
	    },
	})

Output file modes:
  - truncate: create or overwrite (default);
  - auto: create, fall back to truncate for existing files;
  - overwrite_smart: rewrite in place, truncate only when the old file is larger;
  - create_only: fail for existing files.

SanitizeNames additionally rewrites output names into a portable form
(reserved device names, unsafe characters, over-long names).

# Backends

Formats are detected by file signature, falling back to the extension:
  - RAR through github.com/javi11/rardecode/v2 (no comment support);
  - ZIP through github.com/klauspost/compress/zip with zstd registered;
  - 7z through github.com/javi11/sevenzip.

Custom backends implement Archive and are attached with Session.OpenArchive.

# Errors

Use errors.Is with exported sentinel errors:
  - ErrNotArchivePath, ErrUnknownFormat, ErrOpen;
  - ErrNotInitialized, ErrNotOpen, ErrAlreadyOpen, ErrClosed;
  - ErrUnsupportedEntry, ErrEncryptedEntry, ErrEntryIndex;
  - ErrInvalidOptions, ErrInvalidFilterRules, ErrInvalidExtractPath.
*/
package unrar
