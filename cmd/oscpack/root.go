package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/showcontroller/oscpack/internal/config"
	"github.com/showcontroller/oscpack/internal/logging"
	"github.com/showcontroller/oscpack/osc"
)

// app carries what every command needs once flags and config are resolved.
type app struct {
	configFile string
	cfg        *config.Config
	log        *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "oscpack",
		Short: "Inspect, build and rewrite Open Sound Control packets",
		Long: `oscpack works on encoded OSC 1.0/1.1 packets.

It decodes raw, hex or SLIP framed packets into text or YAML, encodes YAML
descriptions into packets, rewrites addresses inside messages and bundles,
reads OSC traffic out of pcap files and turns key presses into messages.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "config file path")
	root.PersistentFlags().Bool("strict", false, "reject malformed packets instead of reading what is possible")
	root.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	root.PersistentFlags().String("log-file", "", "also log to this file, with rotation")

	root.AddCommand(
		a.newDecodeCmd(),
		a.newEncodeCmd(),
		a.newRemapCmd(),
		a.newPcapCmd(),
		a.newKeypadCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configFile, cmd.Flags())
	if err != nil {
		return err
	}

	l, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = l
	osc.SetLogger(l)
	return nil
}
