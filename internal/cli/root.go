// Package cli implements the uniqid command.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/iv-menshenin/uniqid/internal/logging"
)

var log = logging.New("uniqid")

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "uniqid",
		Short:         "Generate, inspect and exchange 16-byte identifiers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newGenerateCmd(),
		newParseCmd(),
		newCompareCmd(),
		newUUIDCmd(),
		newNodeCmd(),
	)
	return root
}

// Main runs the command line and gives the process exit code.
func Main() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		root.PrintErrln("Error:", err)
		return 1
	}
	return 0
}
