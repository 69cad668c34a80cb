package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/ssargent/rowdb/pkg/catalog"
	"github.com/ssargent/rowdb/pkg/table"
)

// outputRow displays one decoded row in schema order
func outputRow(w io.Writer, t *table.Table, row []any, asJSON bool) error {
	sch := t.Schema()

	if asJSON {
		obj := make(map[string]any, len(row))
		for i, v := range row {
			obj[sch.Field(i).Name] = v
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(obj)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	for i, v := range row {
		fmt.Fprintf(tw, "%s:\t%s\n", sch.Field(i).Name, formatValue(v))
	}
	return nil
}

// outputTable displays the layout and size of a table
func outputTable(w io.Writer, t *table.Table) error {
	sch := t.Schema()
	stats := t.Stats()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Table:\t%s\n", t.Name())
	fmt.Fprintf(tw, "Rows:\t%s\n", humanize.Comma(int64(stats.Rows)))
	fmt.Fprintf(tw, "Row length:\t%d bytes\n", stats.RowLength)
	fmt.Fprintf(tw, "Fixed region:\t%s\n", humanize.Bytes(stats.FixedBytes))
	fmt.Fprintf(tw, "Heap:\t%s\n", humanize.Bytes(stats.HeapBytes))
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "FIELD\tTYPE\tOFFSET\tSIZE\tNULLABLE\tDEFAULT")
	for i, f := range sch.Fields() {
		def := ""
		if f.HasDefault() {
			text, err := f.FormatDefault()
			if err != nil {
				return err
			}
			def = text
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%t\t%s\n", f.Name, f.Type, sch.Offset(i), f.Footprint(), f.Nullable, def)
	}

	return tw.Flush()
}

// outputEntries displays the catalog listing
func outputEntries(w io.Writer, entries []catalog.Entry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No tables found")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "NAME\tID\tCREATED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.ID, humanize.Time(e.CreatedAt))
	}
	return nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		if len(x) > 32 {
			return fmt.Sprintf("0x%x... (%s)", x[:32], humanize.Bytes(uint64(len(x))))
		}
		return fmt.Sprintf("0x%x", x)
	default:
		return fmt.Sprint(x)
	}
}
