package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ffmigrate/cmd/ffmigrate/opts"
	"github.com/walteh/ffmigrate/pkg/backup"
	"github.com/walteh/ffmigrate/pkg/migrate"
	"github.com/walteh/ffmigrate/pkg/profile"
)

// NewRestoreCmd creates a new restore command
func NewRestoreCmd(opts *opts.RootOpts) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Replace the profile contents from a previous backup",
		Long: `Restore clears the selected profile directory and copies a backup back
into it. A pre-restore copy of the current contents is kept next to the
profile so the restore itself can be rolled back.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			prof, err := opts.PickProfile(ctx)
			if err != nil {
				return errors.Errorf("picking profile: %w", err)
			}
			if profile.Locked(prof.Dir) {
				return errors.Errorf("%w: %s", migrate.ErrBrowserRunning, prof.Dir)
			}

			preRestore, err := backup.Restore(ctx, prof.Dir, from)
			if err != nil {
				return errors.Errorf("restoring profile: %w", err)
			}

			pterm.Success.WithWriter(opts.Out).Printfln("pre-restore copy kept at %s", preRestore)
			pterm.Success.WithWriter(opts.Out).Printfln("restored %s from %s", prof.Dir, from)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "backup directory to restore from")
	cmd.MarkFlagRequired("from")
	return cmd
}
