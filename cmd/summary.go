package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/lakshaymaurya-felt/junkmole/internal/run"
)

// printSummary writes the final run report to stdout. Individual
// failures live in the CSV log, not here.
func printSummary(s *run.Summary, dryRun bool) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)
	dim := color.New(color.Faint)

	fmt.Println()
	if dryRun {
		bold.Printf("Dry run complete")
	} else {
		bold.Printf("Sweep complete")
	}
	if s.Interrupted {
		yellow.Printf(" (interrupted, partial results)")
	}
	fmt.Printf(" in %s\n", s.Elapsed.Round(time.Millisecond))

	fmt.Printf("  scanned  %d entries under %s\n", s.Scanned, s.Root)
	if dryRun {
		green.Printf("  planned  %d removals\n", s.Planned)
	} else {
		green.Printf("  removed  %d", s.Removed)
		if s.BytesFreed > 0 {
			fmt.Printf("  (%s freed)", humanSize(s.BytesFreed))
		}
		fmt.Println()
	}
	if s.Skipped > 0 {
		yellow.Printf("  skipped  %d\n", s.Skipped)
	}
	if s.Failed > 0 {
		red.Printf("  failed   %d  (see log for reasons)\n", s.Failed)
	}

	if s.FreeBefore > 0 && s.FreeAfter > s.FreeBefore {
		fmt.Printf("  disk     %s free (+%s)\n",
			humanSize(int64(s.FreeAfter)), humanSize(int64(s.FreeAfter-s.FreeBefore)))
	}

	if len(s.LogFiles) > 0 {
		fmt.Printf("  log      %s\n", strings.Join(s.LogFiles, ", "))
	}
	dim.Printf("  run      %s\n", s.RunID)
}

// printWarnings echoes traversal warnings, shown only with --debug.
func printWarnings(ws []string) {
	if len(ws) == 0 {
		return
	}
	yellow := color.New(color.FgYellow)
	yellow.Printf("\n%d traversal warnings:\n", len(ws))
	for _, w := range ws {
		fmt.Printf("  %s\n", w)
	}
}

// humanSize formats a byte count for display (1 KB = 1024 bytes).
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
