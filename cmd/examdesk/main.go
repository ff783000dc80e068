// Command examdesk runs the exam topic portal and its database migrations.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "examdesk",
		Short:         "Exam topic portal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default ./configs/config.yaml)")

	root.AddCommand(
		newServeCommand(&configPath),
		newMigrateCommand(&configPath),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "examdesk:", err)
		os.Exit(1)
	}
}
