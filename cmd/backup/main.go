package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldstone-hq/fieldstone/internal/backup"
	"github.com/fieldstone-hq/fieldstone/pkg/configuration"
)

// The dump itself is produced externally (mongodump); this tool only
// manages the retention tiers of the resulting directories.

const (
	exitOK    = 0
	exitUsage = 3
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return 1
}

func newTagCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "tag <backup-dir>",
		Short: "Write the retention tier marker for one backup directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			conf := configuration.Use()
			when := time.Now()
			if at != "" {
				parsed, err := time.Parse("2006-01-02", at)
				if err != nil {
					return &cliError{code: exitUsage, err: fmt.Errorf("invalid --at: %w", err)}
				}
				when = parsed
			}
			tier, err := backup.Tag(args[0], when, time.Weekday(conf.Backup.WeeklyDay))
			if err != nil {
				return err
			}
			fmt.Printf("%s tagged %s\n", args[0], tier)
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Backup date as YYYY-MM-DD (default: today)")
	return cmd
}

func newPruneCmd() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete backups beyond the retained count of their tier",
		RunE: func(_ *cobra.Command, _ []string) error {
			conf := configuration.Use()
			dir := root
			if dir == "" {
				dir = conf.Backup.Dir
			}
			removed, err := backup.Prune(dir, backup.PolicyFrom(conf.Backup))
			if err != nil {
				return err
			}
			for _, path := range removed {
				fmt.Println("removed", path)
			}
			fmt.Printf("pruned %d backups\n", len(removed))
			return nil
		},
	}
	cmd.Flags().StringVar(&root, "dir", "", "Backup root directory (default: BACKUP_DIR)")
	return cmd
}

func main() {
	cmd := &cobra.Command{
		Use:           "backup",
		Short:         "Backup retention tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newTagCmd())
	cmd.AddCommand(newPruneCmd())

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(exitCode(err))
	}
}
