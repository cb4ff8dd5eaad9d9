// Command quizctl runs maintenance tasks against the quizlab database and
// grading pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "quizctl",
		Short:         "Maintenance commands for the quizlab backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGradeCmd(), newCleanupGuestsCmd(), newIndexCmd(), newTokenCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
