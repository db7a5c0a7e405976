package calls

import (
	"context"
	"log/slog"

	"github.com/rotisserie/eris"
)

// CallerNameUpdater is the slice of Repository the backfill needs.
type CallerNameUpdater interface {
	BackfillCallerName(ctx context.Context, orgID, callerNumber, name string) (int64, error)
}

// Backfiller propagates a newly resolved caller name onto earlier calls from
// the same number that have none. It is a bulk correction, not part of the
// call's own write, and is safe to repeat.
type Backfiller struct {
	repo CallerNameUpdater
	log  *slog.Logger
}

func NewBackfiller(repo CallerNameUpdater, log *slog.Logger) *Backfiller {
	if log == nil {
		log = slog.Default()
	}
	return &Backfiller{repo: repo, log: log}
}

// Backfill returns how many calls were named. Without a number or a name it
// does nothing.
func (b *Backfiller) Backfill(ctx context.Context, orgID, callerNumber, name string) (int64, error) {
	if orgID == "" || callerNumber == "" || name == "" {
		return 0, nil
	}
	n, err := b.repo.BackfillCallerName(ctx, orgID, callerNumber, name)
	if err != nil {
		return 0, eris.Wrapf(err, "backfill org %s", orgID)
	}
	if n > 0 {
		b.log.Debug("caller name backfilled", "org_id", orgID, "caller_number", callerNumber, "rows", n)
	}
	return n, nil
}
