package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInsertCmd() *cobra.Command {
	insertCmd := &cobra.Command{
		Use:   "insert <table> <value>...",
		Short: "Insert a row",
		Long: `Insert one row. Values are given in schema order and parsed by field
type. Pass the null marker to use the field default, or null for nullable
fields.

Example:
  rowdb insert users 1 Ada NULL`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			nullMarker, _ := cmd.Flags().GetString("null")

			store, err := openCatalog(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			t, err := store.Load(name)
			if err != nil {
				return err
			}

			sch := t.Schema()
			texts := args[1:]

			values := make([]any, len(texts))
			for i, text := range texts {
				// Extra values are left for Insert to reject
				if text == nullMarker || i >= sch.Len() {
					continue
				}
				f := sch.Field(i)
				v, err := f.Type.Parse(text)
				if err != nil {
					return fmt.Errorf("field %q: %w", f.Name, err)
				}
				values[i] = v.Native()
			}

			idx, err := t.Insert(values)
			if err != nil {
				return err
			}
			if _, err := store.Save(t); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Inserted row %d into %s\n", idx, name)
			return nil
		},
	}

	insertCmd.Flags().String("null", "NULL", "Marker for a missing value")

	return insertCmd
}
