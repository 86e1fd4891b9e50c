package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:           "legacy-import",
		Short:         "Import legacy SQL-dump JSON tables into Fieldstone",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.inputDir, "input", "", "Directory containing <table>.json dump files (required)")
	cmd.PersistentFlags().StringVar(&opts.tenant, "tenant", "", "Tenant UUID the rows are imported into (required)")
	cmd.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, "Read and classify rows without writing")
	cmd.PersistentFlags().IntVar(&opts.progressEvery, "progress-every", 0, "Log progress every N rows (0 = default)")
	_ = cmd.MarkPersistentFlagRequired("input")
	_ = cmd.MarkPersistentFlagRequired("tenant")

	cmd.AddCommand(newPhaseCmd(&opts, "reference", "Import farms, clients, vehicles and plant templates"))
	cmd.AddCommand(newPhaseCmd(&opts, "blocks", "Import physical blocks"))
	cmd.AddCommand(newPhaseCmd(&opts, "plantings", "Resolve active plantings into virtual blocks"))
	cmd.AddCommand(newPhaseCmd(&opts, "history", "Import block history, harvests and prices"))
	cmd.AddCommand(newPhaseCmd(&opts, "run", "Run every phase in dependency order"))
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(exitCode(err))
	}
}
