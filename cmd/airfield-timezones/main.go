// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Command airfield-timezones prints the IANA time zone of every airport
// listed in the airport/facility directory of FAA chart supplement PDFs.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	airtz "github.com/RavuAlHemio/airfield-timezones"
	"github.com/RavuAlHemio/airfield-timezones/logger"
	"github.com/RavuAlHemio/airfield-timezones/tracer"
)

var version = "0.1.0"

type options struct {
	timeZones     string
	mode          string
	pattern       string
	jobs          int
	workers       int
	timeout       time.Duration
	chapterSuffix string
	checkZones    bool
	debug         bool
	trace         bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	defaults := airtz.NewDefaultConfig()
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "airfield-timezones [flags] PDF...",
		Short: "Map airports in FAA chart supplements to IANA time zones",
		Long: `airfield-timezones reads the AIRPORT/FACILITY DIRECTORY chapter of
FAA chart supplement PDFs and prints one line per airport:

  <ICAO code> <IANA time zone, or ? if no definition matches>

Time zones are chosen by UTC offset (and, optionally, ICAO code pattern)
from a YAML definition file.`,
		Version:       version,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.Flags().StringVarP(&opts.timeZones, "time-zones", "t", "time_zones.yaml", "Time zone definition file (YAML)")
	cmd.Flags().StringVar(&opts.mode, "mode", string(defaults.ParsingMode), "Failure handling: strict or best-effort")
	cmd.Flags().StringVar(&opts.pattern, "pattern", defaults.OffsetPattern, "Offset pattern: lenient or strict")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", defaults.MaxConcurrentPDFs, "Documents processed in parallel")
	cmd.Flags().IntVar(&opts.workers, "workers", defaults.MaxWorkersPerPDF, "Pages interpreted in parallel per document")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", defaults.DocumentTimeout, "Time limit per document")
	cmd.Flags().StringVar(&opts.chapterSuffix, "chapter-suffix", defaults.ChapterSuffix, "Title suffix of the directory bookmark")
	cmd.Flags().BoolVar(&opts.checkZones, "check-zones", false, "Verify that every IANA zone in the definition file exists")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Write debug log to stderr")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "Dump the trace log to stderr when a document fails")

	cmd.AddCommand(versionCmd(stdout))
	return cmd
}

func versionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "airfield-timezones %s\n", version)
		},
	}
}

func run(ctx context.Context, opts *options, paths []string, stdout, stderr io.Writer) error {
	cfg := airtz.NewDefaultConfig()
	cfg.ParsingMode = airtz.ParsingMode(opts.mode)
	cfg.OffsetPattern = opts.pattern
	cfg.MaxConcurrentPDFs = opts.jobs
	cfg.MaxWorkersPerPDF = opts.workers
	cfg.DocumentTimeout = opts.timeout
	cfg.ChapterSuffix = opts.chapterSuffix
	cfg.CheckZones = opts.checkZones
	cfg.DebugOn = opts.debug
	cfg.Logger = logger.Writer(stderr)
	if err := cfg.Validate(); err != nil {
		return err
	}

	zones, err := airtz.LoadTimeZonesFile(opts.timeZones)
	if err != nil {
		return err
	}
	if cfg.CheckZones {
		if err := airtz.CheckZones(zones); err != nil {
			return fmt.Errorf("time zones: %w", err)
		}
	}

	tracer.Reset()
	proc := airtz.NewProcessor(cfg, zones)
	failed, err := proc.Run(ctx, paths, stdout)
	if (err != nil || failed > 0) && opts.trace {
		tracer.Flush(stderr)
	}
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(paths))
	}
	return nil
}
