// Command rabbiteye runs the filesystem change-detection daemon:
// periodically scans a directory tree, detects which entries changed
// since the previous scan, and publishes one message per change.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Stroniax/rabbit-eye/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg config.Config
	var logLevel string
	var logJSON bool

	cmd := &cobra.Command{
		Use:           "rabbiteye",
		Short:         "Scan a directory tree and publish changes to a broker",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(&cfg, logLevel, logJSON)
		},
	}

	flags := cmd.Flags()
	cfg.Bind(flags)
	bindLogFlags(flags, &logLevel, &logJSON)

	return cmd
}

func bindLogFlags(flags *pflag.FlagSet, level *string, asJSON *bool) {
	flags.StringVar(level, "logLevel", "info", "logrus level: trace, debug, info, warn, error")
	flags.BoolVar(asJSON, "logJson", false, "emit logs as JSON instead of text")
}

func run(cfg *config.Config, logLevel string, logJSON bool) error {
	if err := configureLogging(logLevel, logJSON); err != nil {
		return err
	}

	if err := cfg.Preflight(); err != nil {
		log.WithError(err).Error("invalid configuration")
		return err
	}

	d, err := newDaemon(cfg)
	if err != nil {
		log.WithError(err).Error("failed to start")
		return err
	}
	defer d.publisher.Close()

	d.run()
	return nil
}
