package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"funcmatch/internal/disasm"
	"funcmatch/internal/symtab"
)

func newSymbolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "symbols <symbols>",
		Short: "List the functions of a symbol table",
		Long:  "List every function of a symbol table with its demangled name, address range and instruction count.",
		Example: `
funcmatch symbols symbols.csv
  `,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := symtab.Load(args[0])
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "START\tEND\tINSNS\tNAME")
			for _, sym := range table.Symbols {
				fmt.Fprintf(tw, "%08x\t%08x\t%d\t%s\n", sym.Start, sym.End, sym.Size()/disasm.WordSize, sym.Demangled())
			}
			return tw.Flush()
		},
	}
}
