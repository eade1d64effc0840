// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/unrar

package unrar

import (
	"path"
	"strings"
)

// StripDirectory returns the part of an archive path after its last "/".
// It returns false for absent input, names ending in "/" (directory
// records), and the degenerate results "." and "..". The result is a
// substring of name and is never allocated separately.
func StripDirectory(name string, ok bool) (string, bool) {
	if !ok {
		return "", false
	}

	base := name
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		base = name[idx+1:]
	}

	switch base {
	case "", ".", "..":
		return "", false
	}

	return base, true
}

// NormalizeSeparators converts "\" separators to "/".
func NormalizeSeparators(name string) string {
	if strings.IndexByte(name, '\\') < 0 {
		return name
	}

	return strings.ReplaceAll(name, `\`, `/`)
}

// NormalizePath converts an archive path to normalized slash-separated form for rule matching.
// It trims spaces, accepts both "/" and "\", removes leading "./" and "/", and cleans "." segments.
func NormalizePath(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = NormalizeSeparators(raw)
	raw = strings.TrimPrefix(raw, "./")
	raw = strings.TrimPrefix(raw, "/")
	raw = path.Clean("/" + raw)
	raw = strings.TrimPrefix(raw, "/")
	if raw == "." {
		return ""
	}

	return strings.TrimSuffix(raw, "/")
}
