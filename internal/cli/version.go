package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is the build version, overridden at link time.
var Version = "dev"

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			payload := map[string]string{
				"version": Version,
				"go":      runtime.Version(),
			}
			return formatter.Emit(payload, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "gridd %s (%s)\n", Version, runtime.Version())
				return err
			})
		},
	}
}
