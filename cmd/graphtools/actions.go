package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agallego-css/GraphTools/internal/common/logger"
	"github.com/agallego-css/GraphTools/internal/common/ratelimit"
	"github.com/agallego-css/GraphTools/internal/export"
	"github.com/agallego-css/GraphTools/internal/graphauth"
	"github.com/agallego-css/GraphTools/internal/graphitems"
	"github.com/agallego-css/GraphTools/internal/pipeline"
)

// executeAction wires the pipeline for the requested action and runs it over
// the resolved mailboxes. All three actions share the same runner; they
// differ only in the item kind queried and the executor applied.
func executeAction(ctx context.Context, session *graphauth.Session, config *Config,
	csvLogger *logger.CSVLogger, slogger *slog.Logger, mailboxes []string) error {

	criterion := buildCriterion(config)
	limiter := ratelimit.New(config.RPS)
	logger.LogInfo(slogger, "Starting action",
		"action", config.Action, "criterion", criterion.String(), "rateLimit", limiter.String())

	kind := pipeline.KindMeeting
	if config.Action == ActionExportMail {
		kind = pipeline.KindMessage
	}

	source := &graphitems.Source{
		Session:    session,
		Kind:       kind,
		Limiter:    limiter,
		MaxRetries: config.MaxRetries,
		RetryDelay: config.RetryDelay,
		Logger:     slogger,
	}

	var executor pipeline.Executor
	var report *export.Writer

	switch config.Action {
	case ActionRemoveCal:
		if config.WhatIf {
			fmt.Println("WHATIF MODE: no items will be deleted")
		}
		executor = &graphitems.Deleter{
			Session:    session,
			Limiter:    limiter,
			MaxRetries: config.MaxRetries,
			RetryDelay: config.RetryDelay,
			Logger:     slogger,
			WhatIf:     config.WhatIf,
		}
	default: // exportcal, exportmail
		path := config.OutPath
		if path == "" {
			path = export.DefaultPath(config.Action)
		}
		w, err := export.NewWriter(path)
		if err != nil {
			return err
		}
		report = w
		executor = w
	}

	runner := &pipeline.Runner{
		Source:    source,
		Executor:  executor,
		Reporter:  newConsoleReporter(config, csvLogger, slogger),
		Logger:    slogger,
		Threshold: runThreshold(config),
	}

	summary, runErr := runner.Run(ctx, mailboxes, criterion)

	if report != nil {
		if err := report.Close(); err != nil {
			logger.LogWarn(slogger, "Could not finalize report", "error", err)
		} else if summary != nil && summary.Acted > 0 {
			fmt.Printf("\nReport written: %s\n", report.Path())
		}
	}

	if summary != nil {
		printSummary(config, summary)
	}
	return runErr
}

// printSummary prints the end-of-run totals and the collected failures.
// Failures do not abort a run, so they are surfaced here for the operator.
func printSummary(config *Config, summary *pipeline.Summary) {
	fmt.Printf("\nRun complete: %d mailbox(es), %d skipped, %d matched, %d acted on\n",
		summary.Mailboxes, summary.Skipped, summary.Matched, summary.Acted)
	if config.WhatIf && config.Action == ActionRemoveCal {
		fmt.Println("WHATIF MODE: no changes were made")
	}
	if len(summary.Failures) > 0 {
		fmt.Printf("%d failure(s):\n", len(summary.Failures))
		for _, f := range summary.Failures {
			fmt.Printf("  - %v\n", f)
		}
	}
}
