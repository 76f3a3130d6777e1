// Command availability computes and visualises data availability for a
// miniSEED archive. The compute subcommand scans the archive and writes one
// availability table per station per year; the visualise subcommand renders
// persisted tables as an HTML bar chart.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "availability",
		Short:         "Compute and visualise miniSEED data availability",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")
	cobra.CheckErr(root.MarkPersistentFlagRequired("config"))

	root.AddCommand(newComputeCommand())
	root.AddCommand(newVisualiseCommand())
	return root
}
