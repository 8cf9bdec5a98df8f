package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tandemgrid/tandemgrid/internal/grid"
	"github.com/tandemgrid/tandemgrid/internal/store"
)

// DumpOptions holds flags for the dump command.
type DumpOptions struct {
	Root     *RootOptions
	Database string
	Sheet    string
}

// sheetDump is the JSON payload emitted by the dump command.
type sheetDump struct {
	Sheet        string        `json:"sheet"`
	Cells        grid.CellMap  `json:"cells"`
	Columns      []grid.Column `json:"columns"`
	ArchivedRows []int         `json:"archivedRows"`
}

// NewDumpCommand creates the dump command, which prints the persisted
// contents of a sheet.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DumpOptions{Root: rootOpts}

	cmd := &cobra.Command{
		Use:           "dump",
		Short:         "Print the persisted state of a sheet",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runDump(ctx, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "gridd.db", "path to the shared store")
	cmd.Flags().StringVar(&opts.Sheet, "sheet", "default", "sheet id")

	return cmd
}

func runDump(ctx context.Context, opts *DumpOptions, out io.Writer) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	dump := sheetDump{Sheet: opts.Sheet}
	if dump.Cells, err = st.Cells(ctx, opts.Sheet); err != nil {
		return WrapExitError(ExitCommandError, "failed to read cells", err)
	}
	if dump.Columns, err = st.Columns(ctx, opts.Sheet); err != nil {
		return WrapExitError(ExitCommandError, "failed to read columns", err)
	}
	if dump.ArchivedRows, err = st.ArchivedRows(ctx, opts.Sheet); err != nil {
		return WrapExitError(ExitCommandError, "failed to read archived rows", err)
	}

	formatter := &OutputFormatter{Format: opts.Root.Format, Writer: out}
	return formatter.Emit(dump, func(w io.Writer) error {
		return writeDumpText(w, dump)
	})
}

func writeDumpText(w io.Writer, dump sheetDump) error {
	fmt.Fprintf(w, "sheet %s: %d cells, %d columns, %d archived rows\n",
		dump.Sheet, len(dump.Cells), len(dump.Columns), len(dump.ArchivedRows))

	for _, col := range dump.Columns {
		locked := ""
		if col.ReadOnly {
			locked = " [locked]"
		}
		fmt.Fprintf(w, "column %s (%s, %s)%s\n", col.ID, col.Label, col.Type, locked)
	}

	ids := make([]string, 0, len(dump.Cells))
	for id := range dump.Cells {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		cell := dump.Cells[id]
		if cell.IsFormula {
			fmt.Fprintf(w, "%s = %s (=%s)\n", id, cell.Value, cell.Formula)
			continue
		}
		fmt.Fprintf(w, "%s = %s\n", id, cell.Value)
	}

	if len(dump.ArchivedRows) > 0 {
		fmt.Fprintf(w, "archived rows: %v\n", dump.ArchivedRows)
	}
	return nil
}
