package opts

import (
	"context"
	"io"

	"github.com/walteh/ffmigrate/pkg/config"
	"github.com/walteh/ffmigrate/pkg/profile"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Config  *config.Config
	BaseDir string    // Firefox application directory holding profiles.ini
	Out     io.Writer // console output for reports and listings
	Verbose bool
}

// PickProfile resolves the profile the command should operate on, honoring
// the profile name or explicit path from flags/config.
func (o *RootOpts) PickProfile(ctx context.Context) (*profile.Profile, error) {
	return profile.Pick(ctx, o.BaseDir, o.Config.Profile, o.Config.ProfilePath)
}

// BackupIgnore returns the configured backup ignore globs, falling back to
// the default cache exclusions.
func (o *RootOpts) BackupIgnore() []string {
	if len(o.Config.BackupIgnore) > 0 {
		return o.Config.BackupIgnore
	}
	return config.DefaultBackupIgnore()
}
