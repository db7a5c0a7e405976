package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"receptionist-dashboard/internal/calls"
	"receptionist-dashboard/internal/leads"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var namesCmd = &cobra.Command{
	Use:   "names",
	Short: "Copy known lead names onto unnamed calls from the same number",
	Long: `For every lead that has both a phone and a name, sets caller_name on
that org's calls from the same number whose caller_name is still empty.
Names already on a call are never overwritten, so the command is safe to
re-run.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		orgID, _ := cmd.Flags().GetString("org")

		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		b := calls.NewBackfiller(calls.NewPostgresRepo(pool), log)
		total, err := propagateNames(ctx, leads.NewPostgresRepo(pool), b, orgID, log)
		fmt.Fprintf(cmd.OutOrStdout(), "calls updated: %d\n", total)
		return err
	},
}

func init() {
	namesCmd.Flags().String("org", "", "limit to one org id (default: all orgs)")
}

type namedLeadLister interface {
	ListNamed(ctx context.Context, orgID string) ([]leads.Lead, error)
}

// propagateNames backfills every named lead. A failure on one lead is logged
// and the rest still run; the first error is returned at the end.
func propagateNames(ctx context.Context, src namedLeadLister, b *calls.Backfiller, orgID string, log *slog.Logger) (int64, error) {
	named, err := src.ListNamed(ctx, orgID)
	if err != nil {
		return 0, eris.Wrap(err, "backfill names: list leads")
	}

	var (
		total    int64
		firstErr error
	)
	for _, l := range named {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		if l.Phone == nil {
			continue
		}
		n, err := b.Backfill(ctx, l.OrgID, *l.Phone, l.DisplayName())
		if err != nil {
			log.Warn("lead backfill failed", "org_id", l.OrgID, "lead_id", l.ID, "err", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		total += n
	}
	log.Info("lead names propagated", "leads", len(named), "calls_updated", total)
	return total, firstErr
}
