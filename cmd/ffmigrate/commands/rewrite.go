package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ffmigrate/cmd/ffmigrate/opts"
	"github.com/walteh/ffmigrate/pkg/domain"
	"github.com/walteh/ffmigrate/pkg/migrate"
	"github.com/walteh/ffmigrate/pkg/profile"
	"github.com/walteh/ffmigrate/pkg/report"
)

// NewRewriteCmd creates a new rewrite command
func NewRewriteCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		oldSuffix string
		newSuffix string
		dryRun    bool
		stores    []string
	)

	cmd := &cobra.Command{
		Use:   "rewrite",
		Short: "Rewrite the old domain suffix to the new one across the profile's stores",
		Long: `Rewrite scans history, cookies, form history, saved logins, and prefs for
the old domain suffix and rewrites each match in place, one store at a time,
all-or-nothing per store. With --dry-run every planned change is listed and
nothing is mutated. Take a backup first; the browser must be closed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if oldSuffix == "" {
				oldSuffix = opts.Config.OldSuffix
			}
			if newSuffix == "" {
				newSuffix = opts.Config.NewSuffix
			}
			sfx, err := domain.NewSuffix(oldSuffix, newSuffix)
			if err != nil {
				return errors.Errorf("invalid suffix pair: %w", err)
			}

			roles, err := parseRoles(stores)
			if err != nil {
				return err
			}

			prof, err := opts.PickProfile(ctx)
			if err != nil {
				return errors.Errorf("picking profile: %w", err)
			}

			rep, err := migrate.Run(ctx, prof, sfx, migrate.Options{
				DryRun: dryRun,
				Stores: roles,
			})
			if err != nil {
				return err
			}

			report.NewPrinter(opts.Out, opts.Verbose).Print(rep, dryRun)

			if !rep.OK() {
				return errors.Errorf("stores failed: %s", strings.Join(rep.FailedStores(), ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&oldSuffix, "old", "", "old domain suffix (e.g. old-domain.com)")
	cmd.Flags().StringVar(&newSuffix, "new", "", "new domain suffix (e.g. new-domain.com)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report every intended change without mutating anything")
	cmd.Flags().StringSliceVar(&stores, "store", nil, "restrict to specific stores (history, cookies, formhistory, logins, prefs)")
	return cmd
}

func parseRoles(names []string) ([]profile.Role, error) {
	var roles []profile.Role
	for _, name := range names {
		role := profile.Role(strings.ToLower(strings.TrimSpace(name)))
		switch role {
		case profile.RoleHistory, profile.RoleCookies, profile.RoleFormHistory, profile.RoleLogins, profile.RolePrefs:
			roles = append(roles, role)
		default:
			return nil, errors.Errorf("unknown store %q", name)
		}
	}
	return roles, nil
}
