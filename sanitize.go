// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/unrar

package unrar

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"
)

// maxSanitizedNameLen limits one output file name to common filesystem-safe length.
const maxSanitizedNameLen = 240

// unsafeNameRunes are rejected by at least one common filesystem.
const unsafeNameRunes = `<>:"/\|?*`

var (
	// reservedDeviceNames contains case-insensitive reserved DOS/Windows/OS2 device names.
	reservedDeviceNames = map[string]struct{}{
		"$": {}, "$addstor": {}, "$idle$": {}, "386max$$": {}, "4dosstak": {}, "82164a": {},
		"aux": {}, "cloak$$$": {}, "clock": {}, "clock$": {}, "con": {}, "config$": {},
		"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {}, "com6": {}, "com7": {}, "com8": {}, "com9": {},
		"dblssys$": {}, "dpmixxx0": {}, "dpmsxxx0": {}, "emm$$$$$": {}, "emmqxxx0": {}, "emmxxxq0": {},
		"emmxxxx0": {}, "hmaldsys": {}, "ifs$hlp$": {}, "kbd$": {}, "keybd$": {},
		"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {}, "lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
		"lst": {}, "mouse$": {}, "ndosstak": {}, "nul": {}, "pc$mouse": {}, "plt": {}, "pointer$": {},
		"prn": {}, "protman$": {}, "qdpmi$$$": {}, "qemm386$": {}, "qextxxx0": {}, "qmmxxxx0": {},
		"screen$": {}, "vcpixxx0": {}, "xmsxxxx0": {},
	}
)

// SanitizeName rewrites a directory-stripped entry name to portable
// filesystem-safe form. Unsafe and control runes become "_", trailing dots
// and spaces are dropped, reserved device names get a "_" prefix and
// over-long names are shortened with a stable hash suffix.
func SanitizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidExtractPath, name)
	}

	reserved := isReservedDeviceName(name)

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if isUnsafeNameRune(r) {
			b.WriteByte('_')
			continue
		}

		b.WriteRune(r)
	}

	sanitized := strings.TrimRight(b.String(), ". ")
	if sanitized == "" {
		sanitized = "_"
	}

	if reserved || isReservedDeviceName(sanitized) {
		sanitized = "_" + sanitized
	}

	return shortenName(sanitized, maxSanitizedNameLen), nil
}

// isUnsafeNameRune reports whether rune must be replaced in output file names.
func isUnsafeNameRune(r rune) bool {
	if strings.ContainsRune(unsafeNameRunes, r) {
		return true
	}

	if unicode.IsControl(r) || unicode.In(r, unicode.Cf) {
		return true
	}

	// U+FFFD marks bytes replaced during UTF-8 normalization.
	return r == '\uFFFD'
}

// isReservedDeviceName reports whether name matches reserved DOS/Windows/OS2 device identifier.
func isReservedDeviceName(name string) bool {
	candidate := strings.ToLower(strings.TrimRight(strings.TrimSpace(name), ". :"))
	if dot := strings.IndexByte(candidate, '.'); dot >= 0 {
		candidate = strings.TrimRight(candidate[:dot], ". :")
	}

	if candidate == "" {
		return false
	}

	_, ok := reservedDeviceNames[candidate]
	return ok
}

// shortenName shortens long name keeping its extension and a deterministic identity suffix.
func shortenName(name string, maxLen int) string {
	if len(name) <= maxLen {
		return name
	}

	ext := ""
	if dot := strings.LastIndexByte(name, '.'); dot > 0 && len(name)-dot <= 16 {
		ext = name[dot:]
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	hashPart := fmt.Sprintf("~%08x", h.Sum32())

	prefixLen := max(maxLen-len(hashPart)-len(ext), 1)
	prefix := trimToRuneBoundary(name[:len(name)-len(ext)], prefixLen)

	return prefix + hashPart + ext
}

// trimToRuneBoundary cuts s to at most n bytes without splitting a UTF-8 sequence.
func trimToRuneBoundary(s string, n int) string {
	if len(s) <= n {
		return s
	}

	for n > 0 && !isRuneStart(s[n]) {
		n--
	}

	return s[:n]
}

// isRuneStart reports whether b begins a UTF-8 sequence.
func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
