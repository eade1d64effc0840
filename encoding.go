// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/unrar

package unrar

import (
	"bytes"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// Encoding is a detected text encoding of a raw comment or name buffer.
type Encoding uint8

// Detectable text encodings.
const (
	// EncodingUnknown marks empty, binary, or malformed input.
	EncodingUnknown Encoding = iota
	// EncodingUTF8 marks UTF-8 text (optionally with BOM).
	EncodingUTF8
	// EncodingUTF16LE marks UTF-16 little-endian text (optionally with BOM).
	EncodingUTF16LE
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// String returns a short encoding name.
func (e Encoding) String() string {
	switch e {
	case EncodingUTF8:
		return "utf-8"
	case EncodingUTF16LE:
		return "utf-16le"
	default:
		return "unknown"
	}
}

// DetectEncoding classifies raw text as UTF-8, UTF-16LE or unknown.
//
// A byte order mark wins. Without one, NUL-free valid UTF-8 (ignoring
// trailing terminators) is UTF-8. Text with an embedded NUL is read as a
// C string cut at that NUL when the cut is valid UTF-8 of even length,
// since UTF-16LE text of Latin script has its first NUL at an odd offset.
// Otherwise an even-sized buffer of well-formed UTF-16LE code units is
// UTF-16LE, and a valid UTF-8 cut is the last resort.
func DetectEncoding(data []byte) Encoding {
	if len(data) == 0 {
		return EncodingUnknown
	}

	if bytes.HasPrefix(data, bomUTF8) {
		if utf8.Valid(data[len(bomUTF8):]) {
			return EncodingUTF8
		}

		return EncodingUnknown
	}

	if bytes.HasPrefix(data, bomUTF16LE) && len(data)%2 == 0 {
		if isUTF16LE(data[len(bomUTF16LE):]) {
			return EncodingUTF16LE
		}

		return EncodingUnknown
	}

	trimmed := bytes.TrimRight(data, "\x00")
	if len(trimmed) == 0 {
		return EncodingUnknown
	}

	if bytes.IndexByte(trimmed, 0) < 0 && utf8.Valid(trimmed) {
		return EncodingUTF8
	}

	cut := cString(data)
	validCut := len(cut) > 0 && utf8.Valid(cut)
	if validCut && len(cut)%2 == 0 {
		return EncodingUTF8
	}

	if len(data)%2 == 0 && isUTF16LE(data) {
		return EncodingUTF16LE
	}

	if validCut {
		return EncodingUTF8
	}

	return EncodingUnknown
}

// DecodeText converts raw text of detected encoding to UTF-8.
// It returns false for empty, malformed, or unrecognized input and never
// returns partial text. UTF-8 text ends at its first NUL.
func DecodeText(data []byte) (string, bool) {
	switch DetectEncoding(data) {
	case EncodingUTF8:
		text := cString(bytes.TrimPrefix(data, bomUTF8))
		if len(text) == 0 {
			return "", false
		}

		return string(text), true
	case EncodingUTF16LE:
		out, ok := convertUTF16LE(bytes.TrimPrefix(data, bomUTF16LE))
		if !ok {
			return "", false
		}

		return string(out), true
	default:
		return "", false
	}
}

// cString returns data up to its first NUL.
func cString(data []byte) []byte {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return data[:i]
	}

	return data
}

// convertUTF16LE converts UTF-16LE to UTF-8 in two passes: an exact
// length scan, then one x/text decode into a buffer of that size.
func convertUTF16LE(src []byte) ([]byte, bool) {
	src = trimUTF16Terminators(src)

	size := utf16LEToUTF8Len(src)
	if size == 0 {
		return nil, false
	}

	dst := make([]byte, size)
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	nDst, nSrc, err := decoder.Transform(dst, src, true)
	if err != nil || nDst != size || nSrc != len(src) {
		return nil, false
	}

	return dst, true
}

// utf16LEToUTF8Len returns exact UTF-8 size of src, or zero when src is
// empty, odd-sized, or holds unpaired surrogates or NUL code units.
func utf16LEToUTF8Len(src []byte) int {
	if len(src) == 0 || len(src)%2 != 0 {
		return 0
	}

	size := 0
	for i := 0; i < len(src); i += 2 {
		unit := rune(src[i]) | rune(src[i+1])<<8
		if unit == 0 {
			return 0
		}

		if !utf16.IsSurrogate(unit) {
			size += utf8.RuneLen(unit)
			continue
		}

		if i+3 >= len(src) {
			return 0
		}

		low := rune(src[i+2]) | rune(src[i+3])<<8
		r := utf16.DecodeRune(unit, low)
		if r == utf8.RuneError {
			return 0
		}

		size += utf8.RuneLen(r)
		i += 2
	}

	return size
}

// isUTF16LE reports whether data is well-formed UTF-16LE text with optional trailing terminators.
func isUTF16LE(data []byte) bool {
	return utf16LEToUTF8Len(trimUTF16Terminators(data)) > 0
}

// trimUTF16Terminators drops trailing zero code units.
func trimUTF16Terminators(data []byte) []byte {
	for len(data) >= 2 && data[len(data)-2] == 0 && data[len(data)-1] == 0 {
		data = data[:len(data)-2]
	}

	return data
}
