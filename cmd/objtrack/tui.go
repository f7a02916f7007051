package objtrack

import (
	"github.com/spf13/cobra"

	"github.com/objtrack/objtrack/internal/gitinfo"
	"github.com/objtrack/objtrack/internal/tui"
)

func init() {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the match report interactively",
		Long:  "Runs the comparison tool and opens the report in an interactive terminal view with filtering, sorting and per-unit symbol detail.",
		RunE:  runTUI,
	}
	rootCmd.AddCommand(cmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	abs := resolveProject()

	runner, _, _, err := newRunner(abs)
	if err != nil {
		return err
	}

	return tui.Run(runner, abs, gitinfo.Describe(abs))
}
