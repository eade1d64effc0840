// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/unrar

package main

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

// cliFlags holds raw flag values before config merge.
type cliFlags struct {
	directory  string
	password   string
	mode       string
	configPath string
	envFile    string
	logLevel   string
	include    []string
	exclude    []string
	sanitize   bool
	help       bool
}

// newFlagSet declares all command-line flags.
func newFlagSet() (*pflag.FlagSet, *cliFlags) {
	flags := &cliFlags{}

	flagSet := pflag.NewFlagSet("unrar", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.SetInterspersed(true)

	flagSet.StringVarP(&flags.directory, "directory", "C", "", "extract into this directory (default: current directory)")
	flagSet.StringVarP(&flags.password, "password", "p", "", "archive password (env UNRAR_PASSWORD)")
	flagSet.StringVar(&flags.mode, "mode", "", "output file mode: truncate, auto, overwrite_smart, create_only")
	flagSet.StringArrayVar(&flags.include, "include", nil, "extract only entries matching pattern (repeatable)")
	flagSet.StringArrayVar(&flags.exclude, "exclude", nil, "skip entries matching pattern (repeatable)")
	flagSet.BoolVar(&flags.sanitize, "sanitize", false, "rewrite output names to portable filesystem-safe form")
	flagSet.StringVar(&flags.configPath, "config", "", "YAML config file (env UNRAR_CONFIG)")
	flagSet.StringVar(&flags.envFile, "env-file", "", "load environment variables from dotenv file")
	flagSet.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error (env UNRAR_LOG_LEVEL)")
	flagSet.BoolVarP(&flags.help, "help", "h", false, "show help")
	flagSet.Bool("version", false, "show version")

	return flagSet, flags
}

// printUsage writes help text to w.
func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	_, _ = fmt.Fprintf(w, "unrar - list and extract RAR, ZIP and 7z archives\n")
	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, "Usage: unrar [flags] <command> <archive>\n")
	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, "Commands:\n")
	_, _ = fmt.Fprintf(w, "  l        List archive contents\n")
	_, _ = fmt.Fprintf(w, "  e        Extract archive to current directory\n")
	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, "Flags:\n")
	_, _ = fmt.Fprint(w, flagSet.FlagUsages())
	_, _ = fmt.Fprintf(w, "\n")
}
