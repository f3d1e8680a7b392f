package migrate

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ffmigrate/pkg/store"
)

// 🎬 Result is the outcome of executing one store's plan
type Result struct {
	Plan    *store.Plan
	DryRun  bool
	Applied int // changes applied, or simulated in dry-run mode
	Err     error
}

// Execute applies a plan to its store, or simulates it. A dry run never
// mutates anything and reflects exactly what a real run would do. A real run
// delegates to the adapter's all-or-nothing Apply: on failure the store is
// guaranteed to be left as it was, and the failure is reported in the result
// rather than aborting the remaining stores.
func Execute(ctx context.Context, a store.Adapter, plan *store.Plan, dryRun bool) Result {
	res := Result{Plan: plan, DryRun: dryRun}

	if dryRun {
		res.Applied = len(plan.Changes)
		zerolog.Ctx(ctx).Debug().Str("store", a.Name()).Int("changes", res.Applied).Msg("dry-run, nothing mutated")
		return res
	}

	if len(plan.Changes) == 0 {
		return res
	}

	if err := a.Apply(ctx, plan.Changes); err != nil {
		res.Err = errors.Errorf("applying %d changes to %s: %w", len(plan.Changes), a.Name(), err)
		return res
	}
	res.Applied = len(plan.Changes)
	zerolog.Ctx(ctx).Debug().Str("store", a.Name()).Int("changes", res.Applied).Msg("plan applied")
	return res
}
