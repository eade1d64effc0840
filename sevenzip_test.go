// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/unrar

package unrar

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// sevenZipCopyArchive holds "bar" ("bar\n") and "foo" ("foo\n") stored with the copy coder.
var sevenZipCopyArchive = []byte{
	0x37, 0x7a, 0xbc, 0xaf, 0x27, 0x1c, 0x00, 0x04, 0xa0, 0x47, 0xa5, 0x88,
	0x08, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x66, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xdd, 0x91, 0xf3, 0xf1, 0x62, 0x61, 0x72, 0x0a,
	0x66, 0x6f, 0x6f, 0x0a, 0x01, 0x04, 0x06, 0x00, 0x02, 0x09, 0x04, 0x04,
	0x00, 0x07, 0x0b, 0x02, 0x00, 0x01, 0x01, 0x00, 0x01, 0x01, 0x00, 0x0c,
	0x04, 0x04, 0x00, 0x08, 0x0a, 0x01, 0xe9, 0xb3, 0xa2, 0x04, 0xa8, 0x65,
	0x32, 0x7e, 0x00, 0x00, 0x05, 0x02, 0x19, 0x05, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x11, 0x11, 0x00, 0x62, 0x00, 0x61, 0x00, 0x72, 0x00, 0x00, 0x00,
	0x66, 0x00, 0x6f, 0x00, 0x6f, 0x00, 0x00, 0x00, 0x19, 0x02, 0x00, 0x00,
	0x14, 0x12, 0x01, 0x00, 0x00, 0x85, 0x33, 0x73, 0xf2, 0x63, 0xd6, 0x01,
	0x00, 0x58, 0x02, 0x72, 0xf2, 0x63, 0xd6, 0x01, 0x15, 0x0a, 0x01, 0x00,
	0x20, 0x80, 0xa4, 0x81, 0x20, 0x80, 0xa4, 0x81, 0x00, 0x00,
}

// writeTestSevenZip writes sevenZipCopyArchive into dir and returns its path.
func writeTestSevenZip(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "copy.7z")
	if err := os.WriteFile(path, sevenZipCopyArchive, 0o600); err != nil {
		t.Fatalf("write 7z: %v", err)
	}

	return path
}

func TestSevenZipArchive(t *testing.T) {
	t.Parallel()

	path := writeTestSevenZip(t, t.TempDir())
	if DetectFormat(path) != FormatSevenZip {
		t.Fatalf("DetectFormat=%q, want 7z", DetectFormat(path))
	}

	archive, err := openSevenZip(path, Options{Logger: discardLogger()})
	if err != nil {
		t.Fatalf("openSevenZip: %v", err)
	}

	if archive.Format() != FormatSevenZip || archive.Len() != 2 {
		t.Fatalf("Format=%q Len=%d", archive.Format(), archive.Len())
	}

	for i, want := range []string{"bar", "foo"} {
		if got := string(archive.AppendName(nil, i)); got != want {
			t.Fatalf("AppendName(%d)=%q, want %q", i, got, want)
		}

		info, ok := archive.Stat(i)
		if !ok || info.Size != 4 || info.IsDir {
			t.Fatalf("Stat(%d)=%+v ok=%v", i, info, ok)
		}

		if err := archive.Supported(i); err != nil {
			t.Fatalf("Supported(%d): %v", i, err)
		}
	}

	if got := archive.AppendComment(nil); len(got) != 0 {
		t.Fatalf("AppendComment=%q, want none", got)
	}

	rc, err := archive.Open(1)
	if err != nil {
		t.Fatalf("Open(1): %v", err)
	}

	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil || string(data) != "foo\n" {
		t.Fatalf("entry 1=%q err=%v", data, err)
	}

	if err := archive.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := archive.Open(0); !errors.Is(err, ErrClosed) {
		t.Fatalf("Open after Close err=%v, want ErrClosed", err)
	}

	if err := archive.Supported(0); !errors.Is(err, ErrClosed) {
		t.Fatalf("Supported after Close err=%v, want ErrClosed", err)
	}
}

func TestSevenZipSessionExtract(t *testing.T) {
	t.Parallel()

	work := t.TempDir()
	path := writeTestSevenZip(t, work)
	out := filepath.Join(work, "out")

	s := openTestSession(t, path, ExtractOptions{Directory: out})
	summary, stdout, stderr := runSession(t, s, CommandExtract)

	if stdout != "1/2: \"bar\" - 4 bytes\n2/2: \"foo\" - 4 bytes\n" {
		t.Fatalf("stdout=%q", stdout)
	}

	if stderr != "" {
		t.Fatalf("unexpected stderr: %q", stderr)
	}

	if summary.Extracted != 2 || summary.Written != 8 {
		t.Fatalf("summary=%+v", summary)
	}

	for _, name := range []string{"bar", "foo"} {
		got, err := os.ReadFile(filepath.Join(out, name))
		if err != nil || string(got) != name+"\n" {
			t.Fatalf("%s=%q err=%v", name, got, err)
		}
	}
}
