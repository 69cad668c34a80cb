package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/rowdb/pkg/schema"
	"github.com/ssargent/rowdb/pkg/table"
)

func newCreateCmd() *cobra.Command {
	createCmd := &cobra.Command{
		Use:   "create <table>",
		Short: "Create a table from a schema file",
		Long: `Create an empty table from a YAML schema file.

Example schema:
  fields:
    - name: id
      type: uint64
    - name: name
      type: varchar(30)
      default: anonymous
    - name: bio
      type: varchar(1000)
      nullable: true

Example:
  rowdb create users --schema users.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			schemaPath, _ := cmd.Flags().GetString("schema")

			sch, err := schema.LoadFile(schemaPath)
			if err != nil {
				return err
			}

			store, err := openCatalog(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			exists, err := store.Exists(name)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("table %q already exists", name)
			}

			t := table.New(name, sch)
			id, err := store.Save(t)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created table %s (%s): %d fields, %d byte rows\n",
				name, id, sch.Len(), sch.RowLength())
			return nil
		},
	}

	createCmd.Flags().StringP("schema", "s", "", "Path to the YAML schema file (required)")
	_ = createCmd.MarkFlagRequired("schema")

	return createCmd
}
