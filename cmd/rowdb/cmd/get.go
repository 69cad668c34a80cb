package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get <table> <row>",
		Short: "Print a row",
		Long: `Decode and print the row at the given index.

Example:
  rowdb get users 0
  rowdb get users 0 --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			idx, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("row index must be an integer: %w", err)
			}

			store, err := openCatalog(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			t, err := store.Load(args[0])
			if err != nil {
				return err
			}

			row, err := t.Row(idx)
			if err != nil {
				return err
			}
			return outputRow(cmd.OutOrStdout(), t, row, asJSON)
		},
	}

	getCmd.Flags().Bool("json", false, "Print the row as JSON")

	return getCmd
}
