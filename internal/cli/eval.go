package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tandemgrid/tandemgrid/internal/formula"
	"github.com/tandemgrid/tandemgrid/internal/grid"
	"github.com/tandemgrid/tandemgrid/internal/store"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Database string
	Sheet    string
	Row      int
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate a formula against stored cells",
		Long: `Evaluate an arithmetic expression with cell references against the
sheet's stored cells. Column references bind to --row.

Example:
  gridd eval "A1*2" --db sheet.db
  gridd eval "A+B" --db sheet.db --row 3 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runEval(ctx, opts, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the shared store (omit to evaluate against no cells)")
	cmd.Flags().StringVar(&opts.Sheet, "sheet", "default", "sheet id")
	cmd.Flags().IntVar(&opts.Row, "row", 1, "row binding for bare column references")

	return cmd
}

func runEval(ctx context.Context, opts *EvalOptions, expr string, out io.Writer) error {
	cells := grid.CellMap{}
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()

		cells, err = st.Cells(ctx, opts.Sheet)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read cells", err)
		}
	}

	result, ok := formula.Evaluate(expr, opts.Row, cells)
	if !ok {
		return WrapExitError(ExitFailure, fmt.Sprintf("expression %q is not evaluable", expr), nil)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: out}
	payload := map[string]any{"expression": expr, "row": opts.Row, "result": result}
	return formatter.Emit(payload, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, result)
		return err
	})
}
