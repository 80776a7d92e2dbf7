package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rootCommand creates the operator CLI
func rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "timesheetctl",
		Short:         "Timesheet maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		tokenCommand(),
		autoCloseCommand(),
		migrateCommand(),
	)

	return rootCmd
}
