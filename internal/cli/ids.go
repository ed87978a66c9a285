package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iv-menshenin/uniqid/platform"
	"github.com/iv-menshenin/uniqid/uid"
)

func newGenerateCmd() *cobra.Command {
	var (
		count   int
		entropy string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print new identifiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, ok := platform.ByName(entropy)
			if !ok {
				return fmt.Errorf("unknown entropy source %q", entropy)
			}
			if count < 0 {
				return fmt.Errorf("count must not be negative, got %d", count)
			}
			for n := 0; n < count; n++ {
				fmt.Fprintln(cmd.OutOrStdout(), uid.Generate(src))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "how many identifiers to print")
	cmd.Flags().StringVar(&entropy, "entropy", "crypto", "entropy source: crypto or uuid")
	return cmd
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse IDENTIFIER",
		Short: "Validate an identifier and show its bytes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uid.Parse(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:    %s\n", id)
			fmt.Fprintf(out, "bytes: % x\n", id.Bytes())
			fmt.Fprintf(out, "uuid:  %s\n", id.UUID())
			fmt.Fprintf(out, "hash:  %016x\n", id.Hash())
			return nil
		},
	}
}

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare A B",
		Short: "Print -1, 0 or 1 as A orders before, equal to or after B",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := uid.Parse(args[0])
			if err != nil {
				return err
			}
			b, err := uid.Parse(args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.Compare(b))
			return nil
		},
	}
}

func newUUIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uuid TEXT",
		Short: "Convert between an identifier and RFC 4122 text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if id, ok := uid.FromString(args[0]); ok {
				fmt.Fprintln(cmd.OutOrStdout(), id.UUID())
				return nil
			}
			u, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("neither identifier nor uuid: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), uid.FromUUID(u))
			return nil
		},
	}
}
