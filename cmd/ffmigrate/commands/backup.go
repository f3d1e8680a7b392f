package commands

import (
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ffmigrate/cmd/ffmigrate/opts"
	"github.com/walteh/ffmigrate/pkg/backup"
	"github.com/walteh/ffmigrate/pkg/migrate"
	"github.com/walteh/ffmigrate/pkg/profile"
)

// NewBackupCmd creates a new backup command
func NewBackupCmd(opts *opts.RootOpts) *cobra.Command {
	var dest string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Copy the profile directory to a timestamped backup",
		Long: `Backup copies the selected profile directory aside before any rewrite.
Browser caches are excluded by the configured ignore patterns. The browser
must be closed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			prof, err := opts.PickProfile(ctx)
			if err != nil {
				return errors.Errorf("picking profile: %w", err)
			}
			if profile.Locked(prof.Dir) {
				return errors.Errorf("%w: %s", migrate.ErrBrowserRunning, prof.Dir)
			}

			destRoot := dest
			if destRoot == "" {
				destRoot = opts.Config.BackupDir
			}
			if destRoot == "" {
				destRoot = filepath.Join(".", "firefox-profile-backups")
			}

			path, sum, err := backup.Run(ctx, prof.Dir, destRoot, opts.BackupIgnore())
			if err != nil {
				return errors.Errorf("backing up profile: %w", err)
			}

			pterm.Success.WithWriter(opts.Out).Printfln("copied profile to %s", path)
			pterm.Success.WithWriter(opts.Out).Printfln("backup contains %d files, total size %s", sum.Files, backup.HumanSize(sum.Bytes))
			return nil
		},
	}

	cmd.Flags().StringVar(&dest, "dest", "", "directory to place the backup in")
	return cmd
}
