package cmd

import (
	"github.com/spf13/cobra"
)

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <table>",
		Short: "Show the layout and size of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCatalog(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			t, err := store.Load(args[0])
			if err != nil {
				return err
			}
			return outputTable(cmd.OutOrStdout(), t)
		},
	}
}
