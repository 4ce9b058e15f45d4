package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/clr-host/host"
	"github.com/wippyai/clr-host/loader"
)

var entryPoints = []string{
	host.SymbolInitialize,
	host.SymbolCreateDelegate,
	host.SymbolShutdown,
}

func newSymbolsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "symbols [library]",
		Short: "Check that a library exports the hosting entry points",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.v.GetString("library")
			if len(args) == 1 {
				path = args[0]
			}

			lib, err := loader.Open(path)
			if err != nil {
				return err
			}
			defer lib.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Library: %s\n", lib.Path())
			missing := 0
			for _, name := range entryPoints {
				addr, err := lib.Lookup(name)
				if err != nil {
					missing++
					fmt.Fprintf(out, "  %-24s missing\n", name)
					continue
				}
				fmt.Fprintf(out, "  %-24s %#x\n", name, addr)
			}
			if missing > 0 {
				return fmt.Errorf("%d of %d entry points missing", missing, len(entryPoints))
			}
			return nil
		},
	}
}
