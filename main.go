package main

import (
	"fmt"
	"os"

	"github.com/lakshaymaurya-felt/junkmole/cmd"
)

// Populated by the linker at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
