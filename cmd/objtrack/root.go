package objtrack

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagProject       string
	flagJSON          bool
	flagNoColor       bool
	flagNoUpdateCheck bool
	flagSelfUpdate    bool

	version = "0.1.0"
)

// rootCmd is the base Cobra command for the objtrack CLI.
var rootCmd = &cobra.Command{
	Use:           "objtrack",
	Short:         "Track decompilation match progress",
	Long:          "Objtrack runs your project's object comparison tool, aggregates the per-unit match report and presents it as a one-shot summary or an interactive view.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the objtrack CLI. It should be called by the main package.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagProject, "project", "p", ".", "project directory to run the comparison tool in")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVar(&flagNoUpdateCheck, "no-update-check", false, "disable update check")
	rootCmd.PersistentFlags().BoolVar(&flagSelfUpdate, "self-update", false, "update objtrack to the latest release")
}
