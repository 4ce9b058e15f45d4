package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	clrhost "github.com/wippyai/clr-host"
	"github.com/wippyai/clr-host/config"
)

type cli struct {
	v       *viper.Viper
	log     *zap.Logger
	cfgFile string
	library string
	verbose bool
}

func newRootCmd() *cobra.Command {
	c := &cli{log: zap.NewNop()}

	root := &cobra.Command{
		Use:           "clrhost",
		Short:         "Host a .NET runtime and call managed methods",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.log.Sync()
		},
	}

	root.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "", "config file (YAML)")
	root.PersistentFlags().StringVar(&c.library, "library", "", "runtime library path (overrides config)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newRunCmd(c),
		newSymbolsCmd(c),
		newInitCmd(c),
		newTUICmd(c),
	)
	return root
}

func (c *cli) setup() error {
	v, err := config.NewViper(c.cfgFile)
	if err != nil {
		return err
	}
	if c.library != "" {
		v.Set("library", c.library)
	}
	c.v = v

	lc := config.LoggingConfig{
		Level:  v.GetString("logging.level"),
		Format: v.GetString("logging.format"),
	}
	if c.verbose {
		lc.Level = "debug"
	}
	log, err := config.NewLogger(lc)
	if err != nil {
		return err
	}
	c.log = log
	clrhost.SetLogger(log)
	return nil
}

func (c *cli) config() (*config.Config, error) {
	return config.Load(c.v)
}
