package main

import (
	"fmt"
	"log/slog"

	"github.com/agallego-css/GraphTools/internal/common/logger"
	"github.com/agallego-css/GraphTools/internal/pipeline"
)

// auditColumns defines the CSV audit file layout. The CSVLogger prepends a
// timestamp column automatically.
var auditColumns = []string{"Action", "Status", "Mailbox", "Item Id", "Subject", "Organizer", "Detail"}

// consoleReporter prints run progress to stdout and records every item on
// the CSV audit log. An item gets an Attempt row before its action runs, so
// an interrupted run still shows what was about to happen.
type consoleReporter struct {
	action string
	verb   string // past-tense action verb for console output, e.g. "Deleted"
	whatIf bool
	audit  *logger.CSVLogger // may be nil when audit logging failed to start
	log    *slog.Logger
}

func newConsoleReporter(config *Config, audit *logger.CSVLogger, slogger *slog.Logger) *consoleReporter {
	verb := "Exported"
	if config.Action == ActionRemoveCal {
		verb = "Deleted"
	}
	return &consoleReporter{
		action: config.Action,
		verb:   verb,
		whatIf: config.WhatIf,
		audit:  audit,
		log:    slogger,
	}
}

func (r *consoleReporter) MailboxStart(index, total int, mailbox string) {
	fmt.Printf("[%d/%d] Processing mailbox %s...\n", index, total, mailbox)
}

func (r *consoleReporter) MailboxSkipped(index, total int, mailbox string, err error) {
	fmt.Printf("[%d/%d] Skipped mailbox %s: %v\n", index, total, mailbox, err)
	r.writeAudit("Skipped", mailbox, "", "", "", err.Error())
}

func (r *consoleReporter) MailboxDone(index, total int, mailbox string, acted int) {
	r.writeAudit("Summary", mailbox, "", "", "", fmt.Sprintf("%d item(s) acted on", acted))
	if acted == 0 {
		fmt.Printf("[%d/%d] No matching items in %s\n", index, total, mailbox)
		return
	}
	verb := r.verb
	if r.whatIf && r.action == ActionRemoveCal {
		verb = "Would have deleted"
	}
	fmt.Printf("[%d/%d] %s %d item(s) in %s\n", index, total, verb, acted, mailbox)
}

func (r *consoleReporter) ItemStart(mailbox string, item pipeline.Item) {
	logger.LogDebug(r.log, "Processing item", "mailbox", mailbox, "subject", item.Subject, "id", item.ID)
	r.writeAudit("Attempt", mailbox, item.ID, item.Subject, item.Organizer, "")
}

func (r *consoleReporter) ItemDone(mailbox string, item pipeline.Item, err error) {
	if err != nil {
		fmt.Printf("  - Failed: %q (ID: %s): %v\n", item.Subject, item.ID, err)
		r.writeAudit("Error", mailbox, item.ID, item.Subject, item.Organizer, err.Error())
		return
	}
	status := "Success"
	if r.whatIf && r.action == ActionRemoveCal {
		status = "WhatIf"
	}
	fmt.Printf("  - %s: %q (ID: %s)\n", r.verb, item.Subject, item.ID)
	r.writeAudit(status, mailbox, item.ID, item.Subject, item.Organizer, "")
}

func (r *consoleReporter) writeAudit(status, mailbox, itemID, subject, organizer, detail string) {
	if r.audit == nil {
		return
	}
	if err := r.audit.WriteRow([]string{r.action, status, mailbox, itemID, subject, organizer, detail}); err != nil {
		logger.LogWarn(r.log, "Could not write audit row", "error", err)
	}
}
