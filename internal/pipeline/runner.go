package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/agallego-css/GraphTools/internal/common/logger"
)

// Source queries one mailbox for items matching the criterion.
// Implementations must return the complete match set, not just one page.
type Source interface {
	QueryItems(ctx context.Context, mailbox string, c Criterion) ([]Item, error)
}

// Executor applies the run's action to a single refined item.
type Executor interface {
	Execute(ctx context.Context, item Item) error
}

// Summary aggregates the outcome of a run. Failures holds the collected
// QueryError and ActionError values; a run with failures still completes.
type Summary struct {
	Mailboxes int
	Skipped   int
	Matched   int
	Acted     int
	Failures  []error
}

// Runner drives one run: for each resolved mailbox it queries the source,
// refines the results, and hands every refined item to the executor.
// A query failure skips the mailbox; an action failure skips the item.
// Both are recorded on the summary instead of aborting the run.
type Runner struct {
	Source    Source
	Executor  Executor
	Reporter  Reporter
	Logger    *slog.Logger
	Threshold *time.Time // optional start-time cutoff, fixed for the whole run
}

// Run processes the mailboxes sequentially. Context cancellation is honored
// between mailboxes and between items, so a cancelled run never leaves a
// half-applied item behind.
func (r *Runner) Run(ctx context.Context, mailboxes []string, c Criterion) (*Summary, error) {
	rep := r.Reporter
	if rep == nil {
		rep = NopReporter{}
	}

	summary := &Summary{Mailboxes: len(mailboxes)}
	if len(mailboxes) == 0 {
		logger.LogInfo(r.Logger, "No mailboxes to process, nothing to do")
		return summary, nil
	}

	total := len(mailboxes)
	for i, mailbox := range mailboxes {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		rep.MailboxStart(i+1, total, mailbox)

		items, err := r.Source.QueryItems(ctx, mailbox, c)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			qerr := &QueryError{Mailbox: mailbox, Err: err}
			summary.Skipped++
			summary.Failures = append(summary.Failures, qerr)
			logger.LogWarn(r.Logger, "Mailbox query failed, skipping", "mailbox", mailbox, "error", err)
			rep.MailboxSkipped(i+1, total, mailbox, qerr)
			continue
		}

		refined := Refine(items, c, r.Threshold)
		summary.Matched += len(refined)
		if len(refined) == 0 {
			logger.LogInfo(r.Logger, "No matching items", "mailbox", mailbox, "criterion", c.String())
			rep.MailboxDone(i+1, total, mailbox, 0)
			continue
		}

		acted := 0
		for _, item := range refined {
			if err := ctx.Err(); err != nil {
				return summary, err
			}

			rep.ItemStart(mailbox, item)
			err := r.Executor.Execute(ctx, item)
			rep.ItemDone(mailbox, item, err)

			if err != nil {
				if ctx.Err() != nil {
					return summary, ctx.Err()
				}
				summary.Failures = append(summary.Failures, &ActionError{
					Mailbox: mailbox,
					ItemID:  item.ID,
					Subject: item.Subject,
					Err:     err,
				})
				logger.LogWarn(r.Logger, "Item action failed, continuing", "mailbox", mailbox, "subject", item.Subject, "error", err)
				continue
			}
			acted++
		}

		summary.Acted += acted
		rep.MailboxDone(i+1, total, mailbox, acted)
	}

	return summary, nil
}
