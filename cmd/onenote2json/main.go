// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command onenote2json decodes a .one/.onetoc2 file into a JSON
// document tree (spec §6).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	onestore "github.com/onestore-go/onenote"
)

// exitInterrupted is the exit code for a user abort (spec §7).
const exitInterrupted = 130

var (
	outputFile      string
	outputDirectory string
	allRevisions    bool
	timestamp       int64
	combineMinutes  int
	includeOIDs     bool
	listRevisions   bool
	incremental     bool
	recurse         bool
	logFile         string
	verbosity       int
)

var rootCmd = &cobra.Command{
	Use:   "onenote2json <file>",
	Short: "Decode a OneNote .one/.onetoc2 file into JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  run,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&outputFile, "output", "O", "", "Emit single JSON snapshot")
	flags.StringVarP(&outputDirectory, "output-directory", "R", "", "Emit one JSON per revision")
	flags.BoolVarP(&allRevisions, "all-revisions", "A", false, "Include all revisions in output")
	flags.Int64VarP(&timestamp, "timestamp", "T", 0, "Snapshot at FILETIME64 timestamp")
	flags.IntVarP(&combineMinutes, "combine-revisions", "c", 600, "Coalesce threshold in minutes (0 disables)")
	flags.BoolVarP(&includeOIDs, "include-oids", "o", false, "Accepted; object ids are not added to the output")
	flags.BoolVarP(&listRevisions, "list-revisions", "l", false, "List timestamps on stdout")
	flags.BoolVarP(&incremental, "incremental", "i", false, "Emit only changed files per revision")
	flags.BoolVarP(&recurse, "recurse", "r", false, "Allow -R on a .onetoc2 file; child notebooks are not read")
	flags.StringVarP(&logFile, "log", "L", "", "Human-readable decode dump")
	flags.IntVarP(&verbosity, "verbose", "v", 0, "Dump verbosity level")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		os.Exit(exitInterrupted)
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	path := args[0]

	store, err := onestore.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer store.Close()

	if recurse && store.Kind != onestore.FileKindTOC2 {
		return fmt.Errorf("%w: --recurse requires a .onetoc2 file", onestore.ErrMisuse)
	}
	if outputDirectory != "" && store.Kind == onestore.FileKindTOC2 && !recurse {
		return fmt.Errorf("%w: --output-directory on a .onetoc2 file requires --recurse", onestore.ErrMisuse)
	}

	if logFile != "" {
		f, err := os.Create(logFile)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		if err := store.Dump(f, verbosity); err != nil {
			return fmt.Errorf("dumping decode log: %w", err)
		}
	}

	builder, err := onestore.NewObjectTreeBuilder(store, combineMinutes)
	if err != nil {
		return fmt.Errorf("building object tree: %w", err)
	}

	if listRevisions {
		versions, err := builder.GetVersions()
		if err != nil {
			return err
		}
		for _, v := range versions {
			fmt.Printf("%d\t%s\n", v.Timestamp, v.Author)
		}
		return nil
	}

	if outputDirectory != "" {
		return builder.MakeVersionFiles(outputDirectory, allRevisions, timestamp, incremental)
	}

	rootName := "onenote-document"
	var tree map[string]any
	switch {
	case allRevisions:
		tree = builder.BuildAllRevisionsJsonTree(rootName)
	case timestamp != 0:
		tree, err = builder.BuildRevisionJsonTree(rootName, timestamp)
		if err != nil {
			return err
		}
	default:
		tree = builder.BuildJsonTree(rootName)
	}

	if !onestore.Validate(tree) {
		return fmt.Errorf("internal error: generated tree is not JSON-representable")
	}

	data, err := json.MarshalIndent(tree, "", "\t")
	if err != nil {
		return err
	}

	if outputFile == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(outputFile, data, 0o644)
}
