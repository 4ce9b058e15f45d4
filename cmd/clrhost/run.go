package main

import (
	stderrors "errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wippyai/clr-host/config"
	"github.com/wippyai/clr-host/host"
)

func newRunCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "run [delegate [args...]]",
		Short: "Initialize the runtime, optionally call a delegate, and shut down",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}

			var target *config.DelegateConfig
			if len(args) > 0 {
				d, ok := cfg.Delegate(args[0])
				if !ok {
					return fmt.Errorf("delegate %q not defined in config", args[0])
				}
				target, args = &d, args[1:]
			}

			h, s, err := c.start(cfg)
			if err != nil {
				return err
			}
			return runSession(cmd.OutOrStdout(), h, s, target, args)
		},
	}
}

// runSession calls d, if given, and always shuts the runtime down.
func runSession(out io.Writer, h *host.Host, s *host.Session, d *config.DelegateConfig, args []string) error {
	fmt.Fprintf(out, "Runtime initialized: %s\n", s.Handle())

	if d != nil {
		result, err := newInvoker(s).invoke(*d, args)
		if err != nil {
			return stderrors.Join(err, stop(h, s))
		}
		fmt.Fprintf(out, "%s = %s\n", signature(*d), result)
	}

	if err := stop(h, s); err != nil {
		return err
	}
	fmt.Fprintln(out, "Runtime shut down")
	return nil
}
