package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ffmigrate/cmd/ffmigrate/opts"
	"github.com/walteh/ffmigrate/pkg/backup"
	"github.com/walteh/ffmigrate/pkg/migrate"
	"github.com/walteh/ffmigrate/pkg/profile"
)

// NewListProfilesCmd creates a new list-profiles command
func NewListProfilesCmd(opts *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "list-profiles",
		Short: "List discoverable profiles with per-store presence, record counts, and size",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			profiles, err := profile.Discover(ctx, opts.BaseDir)
			if err != nil {
				return errors.Errorf("discovering profiles: %w", err)
			}
			if len(profiles) == 0 {
				return errors.Errorf("no profiles found under %s", opts.BaseDir)
			}

			bold := color.New(color.Bold)
			for _, p := range profiles {
				flags := ""
				if p.Default {
					flags = " " + color.GreenString("[default]")
				}
				if !p.Exists() {
					fmt.Fprintf(opts.Out, "%s%s (%s)\n", bold.Sprint(p.Dir), flags, color.RedString("missing"))
					continue
				}

				size := "n/a"
				if sum, err := backup.Summarize(p.Dir); err == nil {
					size = fmt.Sprintf("%d files, %s", sum.Files, backup.HumanSize(sum.Bytes))
				}
				fmt.Fprintf(opts.Out, "%s%s (%s)\n", bold.Sprint(p.Dir), flags, size)

				for _, role := range profile.Roles() {
					if !p.HasRole(role) {
						fmt.Fprintf(opts.Out, "  - %-12s not present\n", role)
						continue
					}
					records := "n/a"
					if n, err := migrate.NewAdapter(role, p.RolePath(role)).Count(ctx); err == nil {
						records = fmt.Sprintf("%d records", n)
					}
					fmt.Fprintf(opts.Out, "  - %-12s %s\n", role, records)
				}
			}
			return nil
		},
	}
}
