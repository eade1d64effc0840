// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/unrar

package unrar

import (
	"bytes"
	"errors"
	"hash/crc32"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// zipTestEntry describes one entry written by writeTestZIP.
type zipTestEntry struct {
	name    string
	comment string
	data    []byte
	method  uint16
	nonUTF8 bool
	raw     bool
}

// writeTestZIP creates a ZIP archive in dir and returns its path.
func writeTestZIP(t testing.TB, dir, name, comment string, entries []zipTestEntry) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer func() { _ = f.Close() }()

	w := zip.NewWriter(f)
	w.RegisterCompressor(zstd.ZipMethodWinZip, zstd.ZipCompressor())

	if comment != "" {
		if err := w.SetComment(comment); err != nil {
			t.Fatalf("set comment: %v", err)
		}
	}

	for _, e := range entries {
		fh := &zip.FileHeader{
			Name:    e.name,
			Comment: e.comment,
			Method:  e.method,
			NonUTF8: e.nonUTF8,
		}

		if e.raw {
			fh.CRC32 = crc32.ChecksumIEEE(e.data)
			fh.CompressedSize64 = uint64(len(e.data))
			fh.UncompressedSize64 = uint64(len(e.data))

			rw, err := w.CreateRaw(fh)
			if err != nil {
				t.Fatalf("create raw %s: %v", e.name, err)
			}

			if _, err := rw.Write(e.data); err != nil {
				t.Fatalf("write raw %s: %v", e.name, err)
			}

			continue
		}

		ew, err := w.CreateHeader(fh)
		if err != nil {
			t.Fatalf("create %s: %v", e.name, err)
		}

		if len(e.data) > 0 {
			if _, err := ew.Write(e.data); err != nil {
				t.Fatalf("write %s: %v", e.name, err)
			}
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}

	return path
}

// discardLogger returns a logger that drops every record.
func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// openTestSession opens path in a new session extracting into dir.
func openTestSession(t *testing.T, path string, extract ExtractOptions) *Session {
	t.Helper()

	s, err := NewSession(Options{Extract: extract})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	if err := s.Open(path); err != nil {
		t.Fatalf("Open(%s): %v", path, err)
	}

	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestZIPArchiveStat(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte("a"), 100)
	path := writeTestZIP(t, t.TempDir(), "stat.zip", "", []zipTestEntry{
		{name: "dir/"},
		{name: "dir/data.txt", data: payload, method: zip.Deflate},
		{name: "top.txt", data: []byte("w"), method: zip.Store},
		{name: "\x81ber.txt", data: []byte("u"), method: zip.Store, nonUTF8: true},
	})

	archive, err := openZIP(path, Options{Logger: discardLogger()})
	if err != nil {
		t.Fatalf("openZIP: %v", err)
	}
	defer func() { _ = archive.Close() }()

	if archive.Format() != FormatZIP || archive.Len() != 4 {
		t.Fatalf("Format=%q Len=%d", archive.Format(), archive.Len())
	}

	info, ok := archive.Stat(0)
	if !ok || !info.IsDir {
		t.Fatalf("Stat(0)=%+v ok=%v, want directory", info, ok)
	}

	info, ok = archive.Stat(1)
	if !ok || info.Size != 100 || info.IsDir || info.Method != "deflate" {
		t.Fatalf("Stat(1)=%+v ok=%v", info, ok)
	}

	if _, ok := archive.Stat(9); ok {
		t.Fatal("Stat(9) must be absent")
	}

	names := []string{"dir/", "dir/data.txt", "top.txt", "über.txt"}
	for i, want := range names {
		got := string(archive.AppendName(nil, i))
		if got != want {
			t.Fatalf("AppendName(%d)=%q, want %q", i, got, want)
		}
	}

	if got := archive.AppendName([]byte("keep"), 42); string(got) != "keep" {
		t.Fatalf("AppendName(out of range)=%q, want dst unchanged", got)
	}
}

func TestZIPListAndExtract(t *testing.T) {
	t.Parallel()

	work := t.TempDir()
	payload := bytes.Repeat([]byte("0123456789"), 10)
	path := writeTestZIP(t, work, "data.zip", "", []zipTestEntry{
		{name: "dir/"},
		{name: "dir/file.bin", data: payload, method: zip.Deflate},
	})

	listSession := openTestSession(t, path, ExtractOptions{})
	_, stdout, _ := runSession(t, listSession, CommandList)

	wantList := "1/2: \"dir/\" - 0 bytes\n2/2: \"dir/file.bin\" - 100 bytes\n"
	if stdout != wantList {
		t.Fatalf("list stdout=%q, want %q", stdout, wantList)
	}

	out := filepath.Join(work, "out")
	extractSession := openTestSession(t, path, ExtractOptions{Directory: out})
	summary, _, stderr := runSession(t, extractSession, CommandExtract)
	if stderr != "" {
		t.Fatalf("unexpected stderr: %q", stderr)
	}

	if summary.Extracted != 1 || summary.Skipped != 1 || summary.Written != 100 {
		t.Fatalf("summary=%+v", summary)
	}

	got, err := os.ReadFile(filepath.Join(out, "file.bin"))
	if err != nil {
		t.Fatalf("read file.bin: %v", err)
	}

	if !bytes.Equal(got, payload) {
		t.Fatal("file.bin content mismatch")
	}

	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("output entries=%d, want only file.bin", len(entries))
	}
}

func TestZIPComments(t *testing.T) {
	t.Parallel()

	archiveComment := string(append([]byte{0xFF, 0xFE}, utf16LE("Größe: 5")...))
	path := writeTestZIP(t, t.TempDir(), "comments.zip", archiveComment, []zipTestEntry{
		{name: "a.txt", data: []byte("a"), comment: "first ✓"},
		{name: "b.txt", data: []byte("b"), comment: string(utf16LE("zweite"))},
		{name: "c.txt", data: []byte("c")},
	})

	s := openTestSession(t, path, ExtractOptions{})

	comment, ok := s.Comment()
	if !ok || comment != "Größe: 5" {
		t.Fatalf("Comment()=%q ok=%v", comment, ok)
	}

	for i, want := range []string{"first ✓", "zweite"} {
		got, ok := s.FileComment(i)
		if !ok || got != want {
			t.Fatalf("FileComment(%d)=%q ok=%v, want %q", i, got, ok, want)
		}
	}

	if got, ok := s.FileComment(2); ok {
		t.Fatalf("FileComment(2)=%q, want absent", got)
	}

	_, stdout, _ := runSession(t, s, CommandList)
	if !strings.HasPrefix(stdout, ".--- Archive comment:\nGröße: 5\n'---\n\n") {
		t.Fatalf("stdout missing archive comment frame: %q", stdout)
	}

	if !strings.Contains(stdout, "2/3: \"b.txt\" - 1 bytes\n.--- File comment:\nzweite\n'---\n\n") {
		t.Fatalf("stdout missing file comment frame: %q", stdout)
	}

	if s.BufferStats().Outstanding() != 0 {
		t.Fatalf("buffers leaked: %+v", s.BufferStats())
	}
}

func TestZIPLegacyComments(t *testing.T) {
	t.Parallel()

	path := writeTestZIP(t, t.TempDir(), "legacy.zip", "Gr\x94\xe1e!", []zipTestEntry{
		{name: "\x81ber.txt", data: []byte("u"), comment: "\x81ber", nonUTF8: true},
		{name: "plain.txt", data: []byte("p"), comment: "plain"},
	})

	s := openTestSession(t, path, ExtractOptions{})

	if comment, ok := s.Comment(); !ok || comment != "Größe!" {
		t.Fatalf("Comment()=%q ok=%v, want CP437 text", comment, ok)
	}

	if comment, ok := s.FileComment(0); !ok || comment != "über" {
		t.Fatalf("FileComment(0)=%q ok=%v, want CP437 text", comment, ok)
	}

	if comment, ok := s.FileComment(1); !ok || comment != "plain" {
		t.Fatalf("FileComment(1)=%q ok=%v", comment, ok)
	}
}

func TestZIPUnsupportedMethod(t *testing.T) {
	t.Parallel()

	work := t.TempDir()
	path := writeTestZIP(t, work, "methods.zip", "", []zipTestEntry{
		{name: "ppmd.bin", data: []byte("opaque"), method: 98, raw: true},
		{name: "ok.txt", data: []byte("fine"), method: zip.Store},
	})

	out := filepath.Join(work, "out")
	s := openTestSession(t, path, ExtractOptions{Directory: out})

	if err := s.archive.Supported(0); !errors.Is(err, ErrUnsupportedEntry) {
		t.Fatalf("Supported(0) err=%v, want ErrUnsupportedEntry", err)
	}

	summary, _, stderr := runSession(t, s, CommandExtract)
	if stderr != "Not supported: unsupported compression method: ppmd\n" {
		t.Fatalf("stderr=%q", stderr)
	}

	if summary.Unsupported != 1 || summary.Extracted != 1 {
		t.Fatalf("summary=%+v", summary)
	}

	if got, err := os.ReadFile(filepath.Join(out, "ok.txt")); err != nil || string(got) != "fine" {
		t.Fatalf("ok.txt=%q err=%v", got, err)
	}
}

func TestZIPZstdEntry(t *testing.T) {
	t.Parallel()

	work := t.TempDir()
	payload := bytes.Repeat([]byte("zstd payload "), 64)
	path := writeTestZIP(t, work, "zstd.zip", "", []zipTestEntry{
		{name: "z.bin", data: payload, method: zstd.ZipMethodWinZip},
	})

	out := filepath.Join(work, "out")
	s := openTestSession(t, path, ExtractOptions{Directory: out})

	summary, _, stderr := runSession(t, s, CommandExtract)
	if summary.Extracted != 1 {
		t.Fatalf("summary=%+v stderr=%q", summary, stderr)
	}

	got, err := os.ReadFile(filepath.Join(out, "z.bin"))
	if err != nil || !bytes.Equal(got, payload) {
		t.Fatalf("z.bin mismatch err=%v", err)
	}
}

func TestZIPCreateOnlyContinues(t *testing.T) {
	t.Parallel()

	work := t.TempDir()
	path := writeTestZIP(t, work, "dup.zip", "", []zipTestEntry{
		{name: "exists.txt", data: []byte("archive"), method: zip.Store},
		{name: "fresh.txt", data: []byte("fresh"), method: zip.Store},
	})

	out := filepath.Join(work, "out")
	if err := os.MkdirAll(out, 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := os.WriteFile(filepath.Join(out, "exists.txt"), []byte("local"), 0o600); err != nil {
		t.Fatalf("write existing: %v", err)
	}

	s := openTestSession(t, path, ExtractOptions{Directory: out, FileMode: ExtractFileModeCreateOnly})
	summary, _, stderr := runSession(t, s, CommandExtract)

	if summary.Failed != 1 || summary.Extracted != 1 {
		t.Fatalf("summary=%+v", summary)
	}

	if !strings.HasPrefix(stderr, "Error: create exists.txt:") {
		t.Fatalf("stderr=%q", stderr)
	}

	if got, _ := os.ReadFile(filepath.Join(out, "exists.txt")); string(got) != "local" {
		t.Fatalf("existing file overwritten: %q", got)
	}

	if got, _ := os.ReadFile(filepath.Join(out, "fresh.txt")); string(got) != "fresh" {
		t.Fatalf("fresh.txt=%q", got)
	}
}

func TestZIPClosedArchive(t *testing.T) {
	t.Parallel()

	path := writeTestZIP(t, t.TempDir(), "closed.zip", "note", []zipTestEntry{
		{name: "a.txt", data: []byte("a"), method: zip.Store},
	})

	archive, err := openZIP(path, Options{Logger: discardLogger()})
	if err != nil {
		t.Fatalf("openZIP: %v", err)
	}

	if err := archive.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := archive.Close(); err != nil {
		t.Fatalf("second backend Close: %v", err)
	}

	if _, err := archive.Open(0); !errors.Is(err, ErrClosed) {
		t.Fatalf("Open after Close err=%v, want ErrClosed", err)
	}

	if got := archive.AppendComment(nil); len(got) != 0 {
		t.Fatalf("AppendComment after Close=%q", got)
	}
}
