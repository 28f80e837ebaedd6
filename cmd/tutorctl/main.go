// tutorctl inspects and exports engine state: per-learner progress
// reports, cross-learner statistics, and feedback aggregates.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
