// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/unrar

// unrar lists and extracts RAR, ZIP and 7z archives.
//
//	unrar [flags] <command> <archive>
//
// Command "l" lists entries with their comments, command "e" also
// extracts supported non-directory entries into the output directory
// (current directory by default) using their names without directories.
// Per-entry failures are reported and never change the exit status.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/woozymasta/unrar"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
)

// Build metadata injected with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one invocation and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	for _, arg := range args {
		if arg == "--version" {
			_, _ = fmt.Fprintf(stdout, "unrar %s (%s)\n", version, commit)
			return exitOK
		}
	}

	flagSet, flags := newFlagSet()
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(stderr, flagSet)
			return exitOK
		}

		_, _ = fmt.Fprintf(stderr, "error: %v\n\n", err)
		printUsage(stderr, flagSet)
		return exitFailure
	}

	if flags.help {
		printUsage(stderr, flagSet)
		return exitOK
	}

	positional := flagSet.Args()
	if len(positional) != 2 {
		printUsage(stderr, flagSet)
		return exitFailure
	}

	cmd := unrar.ParseCommand(positional[0])
	if cmd == unrar.CommandInvalid {
		printUsage(stderr, flagSet)
		return exitFailure
	}

	archivePath := positional[1]
	if !unrar.IsArchivePath(archivePath) {
		printUsage(stderr, flagSet)
		return exitFailure
	}

	cfg, err := loadConfig(flagSet, flags)
	if err != nil {
		return displayError(stderr, "Config", err)
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.logLevel}))

	session, err := unrar.NewSession(unrar.Options{
		Logger:   logger,
		Password: cfg.password,
		Extract:  cfg.extract,
	})
	if err != nil {
		return displayError(stderr, "Init", err)
	}

	if err := session.Open(archivePath); err != nil {
		_ = session.Close()
		return displayError(stderr, "Open", err)
	}

	summary, runErr := session.Run(cmd, unrar.NewReporter(stdout, stderr))
	if err := session.Close(); err != nil {
		logger.Warn("close archive", "path", archivePath, "err", err)
	}

	if runErr != nil {
		return displayError(stderr, "Run", runErr)
	}

	logger.Debug("done", "entries", summary.Entries, "written", summary.Written, "buffers", session.BufferStats().Outstanding())
	return exitOK
}

// displayError prints "<where> failed: <description>" and returns failure status.
func displayError(w io.Writer, where string, err error) int {
	_, _ = fmt.Fprintf(w, "%s failed: %s\n", where, unrar.Describe(err))
	return exitFailure
}
