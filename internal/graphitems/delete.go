package graphitems

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agallego-css/GraphTools/internal/common/logger"
	"github.com/agallego-css/GraphTools/internal/common/ratelimit"
	"github.com/agallego-css/GraphTools/internal/common/retry"
	"github.com/agallego-css/GraphTools/internal/graphauth"
	"github.com/agallego-css/GraphTools/internal/pipeline"
)

// Deleter removes items from their owning mailbox, one remove call per item.
// Deleting a meeting makes the service send cancellation notices to its
// attendees. In WhatIf mode the call is previewed and skipped.
//
// A 404 from the API counts as success: the item is already gone, which is
// the state the delete was after.
type Deleter struct {
	Session    *graphauth.Session
	Limiter    *ratelimit.Limiter
	MaxRetries int
	RetryDelay time.Duration
	Logger     *slog.Logger
	WhatIf     bool
}

// Execute implements pipeline.Executor.
func (d *Deleter) Execute(ctx context.Context, item pipeline.Item) error {
	if d.WhatIf {
		fmt.Printf("WHATIF: would delete %s %q (ID: %s) from %s\n", item.Kind, item.Subject, item.ID, item.Mailbox)
		return nil
	}

	if err := d.Limiter.Wait(ctx); err != nil {
		return err
	}

	logger.LogDebug(d.Logger, "Calling Graph API: DELETE item",
		"kind", item.Kind, "mailbox", item.Mailbox, "id", item.ID)

	err := retry.RetryWithBackoff(ctx, d.MaxRetries, d.RetryDelay, func() error {
		return d.deleteByID(ctx, item)
	})
	if err != nil {
		if isNotFound(err) {
			logger.LogInfo(d.Logger, "Item already gone, treating as deleted",
				"mailbox", item.Mailbox, "id", item.ID)
			return nil
		}
		return enrichGraphAPIError(err, d.Logger, "delete")
	}
	return nil
}

func (d *Deleter) deleteByID(ctx context.Context, item pipeline.Item) error {
	users := d.Session.Client.Users().ByUserId(item.Mailbox)
	if item.Kind == pipeline.KindMessage {
		return users.Messages().ByMessageId(item.ID).Delete(ctx, nil)
	}
	return users.Events().ByEventId(item.ID).Delete(ctx, nil)
}
