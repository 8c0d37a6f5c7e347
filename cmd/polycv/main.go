// Command polycv selects a polynomial regression order for synthetic (or
// CSV-supplied) data by K-fold cross-validation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/polycv/pkg/errors"
	"github.com/YuminosukeSato/polycv/pkg/log"
)

type rootOptions struct {
	logLevel  string
	logFormat string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "polycv",
		Short:         "K-fold cross-validated polynomial order selection",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd, opts)
		},
	}

	root.PersistentFlags().StringVarP(&opts.logLevel, "log-level", "", "info", "Logging level: debug, info, warn or error")
	root.PersistentFlags().StringVarP(&opts.logFormat, "log-format", "", "pretty", "Logging format: pretty or json")

	root.AddCommand(newRunCommand())
	root.AddCommand(newGenerateCommand())
	return root
}

func setupLogging(cmd *cobra.Command, opts *rootOptions) error {
	level, err := log.ParseLevel(opts.logLevel)
	if err != nil {
		return errors.NewValidationError("log-level", err.Error(), opts.logLevel)
	}

	switch opts.logFormat {
	case "pretty":
		logger := log.NewConsoleLogger(cmd.ErrOrStderr(), level)
		log.SetLogger(logger)
		log.InstallWarnings(logger)
	case "json":
		if err := log.SetupLogger(cmd.ErrOrStderr(), opts.logLevel); err != nil {
			return errors.NewValidationError("log-level", err.Error(), opts.logLevel)
		}
		log.InstallWarnings(nil)
		errors.SetWarningHandler(func(w error) {
			log.GetLogger().Warn(w.Error(), log.ErrAttrKey, w)
		})
	default:
		return errors.NewValidationError("log-format", "must be pretty or json", opts.logFormat)
	}
	return nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "polycv: %v\n", err)
		os.Exit(1)
	}
}
