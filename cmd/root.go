package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/junkmole/internal/audit"
	"github.com/lakshaymaurya-felt/junkmole/internal/rules"
	"github.com/lakshaymaurya-felt/junkmole/internal/run"
)

var (
	// Global flags
	debug bool

	// Sweep flags
	recursive    bool
	directory    string
	logPath      string
	dryRun       bool
	extraAttrs   []string
	excludeGit   bool
	workers      int
	rulesFile    string
	splitRecords int
	splitBytes   int64
	groupBy      string
	noProgress   bool

	// Version info populated from main
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets build-time version information.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "jm",
	Short: "Sweep junk files from a directory tree",
	Long: `JunkMole - Sweep junk files from a directory tree.

Scans a directory for OS metadata files (.DS_Store, Thumbs.db, ...),
editor swap and backup leftovers, alternate-data-stream marker files,
and stale extended attributes, removes them in parallel, and records
every action in a CSV audit log.

Symbolic links are never followed: a link matching a junk rule is
deleted as a link, its target is left alone.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSweep(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Show traversal warnings after the run")

	rootCmd.Flags().BoolVarP(&recursive, "recursive", "R", false, "Recurse into subdirectories")
	rootCmd.Flags().StringVarP(&directory, "directory", "d", ".", "Root directory to scan")
	rootCmd.Flags().StringVarP(&logPath, "log", "l", "", "Base path for the CSV log (default junkmole_<timestamp>.csv)")
	rootCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Classify and log without deleting anything")
	rootCmd.Flags().StringArrayVarP(&extraAttrs, "attr", "a", nil, "Extra extended-attribute names to strip (repeatable)")
	rootCmd.Flags().BoolVarP(&excludeGit, "exclude-git", "g", false, "Skip .git directories")
	rootCmd.Flags().IntVarP(&workers, "workers", "j", 0, "Deletion worker count (default: number of CPUs)")
	rootCmd.Flags().StringVar(&rulesFile, "rules", "", "YAML rules file merged after the built-in rules")
	rootCmd.Flags().IntVar(&splitRecords, "split-records", audit.DefaultMaxRecords, "Records per log file before splitting (0 = unlimited)")
	rootCmd.Flags().Int64Var(&splitBytes, "split-bytes", audit.DefaultMaxBytes, "Bytes per log file before splitting (0 = unlimited)")
	rootCmd.Flags().StringVar(&groupBy, "group-by", "none", "Route log records to separate files: none, action, or result")
	rootCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the live progress display")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(completionCmd)
}

// runSweep assembles the configuration and drives one sweep, choosing
// between the live progress display and plain output.
func runSweep(ctx context.Context) error {
	set, err := buildRules()
	if err != nil {
		return err
	}

	base := logPath
	if base == "" {
		base = fmt.Sprintf("junkmole_%s.csv", time.Now().Format("20060102_150405"))
	}

	cfg := run.Config{
		Root:       directory,
		Recursive:  recursive,
		ExcludeGit: excludeGit,
		DryRun:     dryRun,
		Workers:    workers,
		Rules:      set,
		Audit: audit.Config{
			BasePath:   base,
			MaxRecords: splitRecords,
			MaxBytes:   splitBytes,
			GroupBy:    audit.GroupBy(groupBy),
		},
	}

	var summary *run.Summary
	if useProgressUI() {
		summary, err = runWithProgress(ctx, cfg)
	} else {
		summary, err = run.Run(ctx, cfg)
	}
	if summary != nil {
		printSummary(summary, dryRun)
		if debug {
			printWarnings(summary.Warnings)
		}
	}
	return err
}

// buildRules merges the built-in table, the optional rules file, and the
// --attr flags, in that order.
func buildRules() (*rules.Set, error) {
	set := rules.Default()

	if rulesFile != "" {
		extra, err := rules.LoadFile(rulesFile)
		if err != nil {
			return nil, err
		}
		if set, err = set.Append(extra...); err != nil {
			return nil, fmt.Errorf("rules file %s: %w", rulesFile, err)
		}
	}

	for _, attr := range extraAttrs {
		var err error
		if set, err = set.Append(rules.AttrRule(attr)); err != nil {
			return nil, fmt.Errorf("--attr %s: %w", attr, err)
		}
	}
	return set, nil
}
