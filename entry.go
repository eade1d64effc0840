// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/unrar

package unrar

import "strings"

// Process reports entry i and, for CommandExtract, writes it to the
// output directory. Every failure is recorded in the result; Process
// never stops the caller's iteration.
func (s *Session) Process(i int, cmd Command) EntryResult {
	res := EntryResult{
		Info:    EntryInfo{Index: i},
		Outcome: OutcomeListed,
	}

	if err := s.requireState(stateOpened); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	res.Count = s.archive.Len()

	nameBuf := s.buffers.acquire()
	defer s.buffers.release(nameBuf)

	res.Name, res.HasName = s.entryName(nameBuf, i)

	if info, ok := s.archive.Stat(i); ok {
		res.Info = info
		res.Info.Index = i
		res.HasInfo = true
	}

	if !res.HasName {
		return res
	}

	res.Comment, res.HasComment = s.FileComment(i)

	if cmd == CommandExtract {
		s.extractEntry(&res)
	}

	return res
}

// entryName fetches raw name bytes into tb and returns them as valid UTF-8.
func (s *Session) entryName(tb *textBuffer, i int) (string, bool) {
	tb.b = s.archive.AppendName(tb.b, i)
	if len(tb.b) == 0 {
		return "", false
	}

	name := strings.ToValidUTF8(string(tb.b), "\uFFFD")
	name = strings.TrimRight(name, "\x00")
	if name == "" {
		return "", false
	}

	return name, true
}

// extractEntry applies extraction policy to one named entry and records the outcome.
func (s *Session) extractEntry(res *EntryResult) {
	if res.Info.IsDir {
		res.Outcome = OutcomeSkipped
		return
	}

	name, ok := StripDirectory(res.Name, res.HasName)
	if !ok {
		res.Outcome = OutcomeSkipped
		return
	}

	if !s.filter.Included(res.Name, false) {
		s.logger.Debug("entry excluded by filter", "index", res.Info.Index, "name", res.Name)
		res.Outcome = OutcomeSkipped
		return
	}

	if s.opts.Extract.SanitizeNames {
		sanitized, err := SanitizeName(name)
		if err != nil {
			res.Outcome = OutcomeSkipped
			return
		}

		name = sanitized
	}

	if err := s.archive.Supported(res.Info.Index); err != nil {
		s.logger.Debug("entry not supported", "index", res.Info.Index, "name", res.Name, "err", err)
		res.Outcome = OutcomeUnsupported
		res.Err = err
		return
	}

	written, outPath, err := s.writeEntry(res.Info, name)
	if err != nil {
		s.logger.Debug("entry extraction failed", "index", res.Info.Index, "name", res.Name, "err", err)
		res.Outcome = OutcomeFailed
		res.Err = err
		return
	}

	res.Outcome = OutcomeExtracted
	res.Written = written
	res.OutputPath = outPath
	s.logger.Debug("entry extracted", "index", res.Info.Index, "name", res.Name, "path", outPath, "bytes", written)

	if s.opts.Extract.OnEntryDone != nil {
		s.opts.Extract.OnEntryDone(res.Info, written, outPath)
	}
}
