package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ffmigrate/cmd/ffmigrate/commands"
	"github.com/walteh/ffmigrate/cmd/ffmigrate/opts"
	"github.com/walteh/ffmigrate/pkg/config"
	"github.com/walteh/ffmigrate/pkg/profile"
)

var (
	// Flags
	configFile  string
	profileName string
	profilePath string
	firefoxDir  string
	debug       bool
	verbose     bool
)

// NewRootCmd creates the ffmigrate root command
func NewRootCmd() *cobra.Command {
	rootOpts := &opts.RootOpts{}

	cmd := &cobra.Command{
		Use:           "ffmigrate",
		Short:         "Backup Firefox profiles and rewrite URLs for a domain change",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()
			ctx := zerolog.Ctx(cmd.Context()).WithContext(cmd.Context())
			cmd.SetContext(ctx)

			cfg, err := config.Load(ctx, configFile)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}

			// Flags override file values.
			if profileName != "" {
				cfg.Profile = profileName
			}
			if profilePath != "" {
				cfg.ProfilePath = profilePath
			}
			if firefoxDir != "" {
				cfg.FirefoxDir = firefoxDir
			}

			baseDir := cfg.FirefoxDir
			if baseDir == "" {
				baseDir, err = profile.DefaultBaseDir()
				if err != nil {
					return errors.Errorf("resolving Firefox directory: %w", err)
				}
			}

			rootOpts.Config = cfg
			rootOpts.BaseDir = baseDir
			rootOpts.Out = cmd.OutOrStdout()
			rootOpts.Verbose = verbose
			return nil
		},
	}

	addRootFlags(cmd)

	cmd.AddCommand(
		commands.NewListProfilesCmd(rootOpts),
		commands.NewBackupCmd(rootOpts),
		commands.NewRestoreCmd(rootOpts),
		commands.NewRewriteCmd(rootOpts),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (default .ffmigrate.{yaml,json,hcl})")
	cmd.PersistentFlags().StringVar(&profileName, "profile", "", "profile name suffix (e.g. default-release)")
	cmd.PersistentFlags().StringVar(&profilePath, "profile-path", "", "explicit path to a profile directory")
	cmd.PersistentFlags().StringVar(&firefoxDir, "firefox-dir", "", "Firefox application directory holding profiles.ini")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "list every planned change, not just counts")
}

// setupLogging configures zerolog based on flags
func setupLogging() {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log
}
