// Package main provides GraphTools, a portable CLI for Exchange Online
// mailbox administration through Microsoft Graph. One binary covers three
// actions: exporting calendar meetings to CSV, removing calendar meetings,
// and exporting mail messages to CSV. Items are matched by exact subject or
// by organizer/sender address, optionally limited to items starting after a
// cutoff time, across one mailbox (interactive sign-in) or many (service
// credentials).
//
// Authentication methods supported:
//   - Client Secret: Standard App Registration secret
//   - PFX Certificate: Certificate file with private key
//   - Windows Certificate Store: Thumbprint-based certificate retrieval (Windows only)
//   - Device Code: Interactive user sign-in when no service credential is given
//
// Every run writes a transcript log and a per-item CSV audit file to the
// system temp directory unless disabled.
//
// Example usage:
//
//	graphtools -action removecal -subject "All Hands" -start 2026-01-15T14:00:00Z \
//	    -mailboxes "a@example.com,b@example.com" -tenantid "..." -clientid "..." -thumbprint "..." -whatif
//
// Version information is embedded from the VERSION file at compile time using go:embed.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agallego-css/GraphTools/internal/common/logger"
	"github.com/agallego-css/GraphTools/internal/common/version"
	"github.com/agallego-css/GraphTools/internal/graphauth"
	"github.com/agallego-css/GraphTools/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

// setupSignalHandling configures graceful shutdown on interrupt signals
// Returns a cancellable context for use throughout the application
func setupSignalHandling() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	// Handle interrupt signals (Ctrl+C, SIGTERM)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\n\nReceived interrupt signal. Shutting down gracefully...")
		cancel()
	}()

	return ctx, cancel
}

// run is the main application entry point that orchestrates the tool's execution flow.
// It performs the following steps:
//  1. Sets up graceful shutdown handling for interrupt signals
//  2. Parses and validates configuration from flags and environment variables
//  3. Starts the run transcript and the structured logger on top of it
//  4. Opens the per-item CSV audit log
//  5. Acquires a Microsoft Graph session with the appropriate credential
//  6. Resolves the target mailboxes and runs the requested action over them
//
// Returns an error if any step fails, nil on successful completion.
func run() error {
	// 1. Setup signal handling for graceful shutdown
	ctx, cancel := setupSignalHandling()
	defer cancel()

	// 2. Parse command-line flags and apply environment variables
	config := parseAndConfigureFlags()

	// 3. Handle version flag early exit
	if config.ShowVersion {
		fmt.Printf("GraphTools - Exchange Online calendar/mail admin tool - Version %s\n", version.Get())
		return nil
	}

	// 4. Validate configuration
	if err := validateConfiguration(config); err != nil {
		fmt.Printf("Error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	// 5. Start the transcript and setup the structured logger on top of it
	var logWriter io.Writer = os.Stderr
	if !config.NoTranscript {
		transcript, err := logger.StartTranscript("graphtools", config.Action)
		if err != nil {
			log.Printf("Warning: Could not start transcript: %v", err)
		} else {
			defer transcript.Close()
			logWriter = transcript.Writer()
		}
	}
	slogger := logger.SetupLoggerTo(logWriter, config.VerboseMode, config.LogLevel)
	logger.LogInfo(slogger, "Application starting", "version", version.Get(), "action", config.Action)

	if config.VerboseMode {
		printVerboseConfig(config)
	}

	// 6. Open the per-item CSV audit log
	csvLogger := initializeAuditLog(config)
	if csvLogger != nil {
		defer csvLogger.Close()
	}

	// 7. Acquire a Graph session
	provider := graphauth.NewProvider(slogger)
	if config.Disconnect {
		defer provider.Disconnect()
	}
	session, err := provider.Acquire(ctx, authOptions(config))
	if err != nil {
		return err
	}
	if scope := requiredScope(config.Action); !session.HasPermission(scope) {
		// Claims are advisory; the API is the authority. Warn and proceed.
		logger.LogWarn(slogger, "Token does not show the expected permission, requests may be denied",
			"required", scope)
	}

	// 8. Resolve the target mailboxes
	mailboxes := pipeline.ResolveMailboxes(session.Principal, explicitMailboxes(config))
	logger.LogInfo(slogger, "Mailboxes resolved", "count", len(mailboxes))

	// 9. Execute the requested action over the resolved mailboxes
	return executeAction(ctx, session, config, csvLogger, slogger, mailboxes)
}

// initializeAuditLog opens the CSV audit file and writes its header when the
// file is new. A failure here is a warning, not a fatal error: the run still
// makes sense without the audit trail.
func initializeAuditLog(config *Config) *logger.CSVLogger {
	csvLogger, err := logger.NewCSVLogger("graphtools", config.Action)
	if err != nil {
		log.Printf("Warning: Could not initialize CSV logging: %v", err)
		return nil
	}

	if shouldWrite, err := csvLogger.ShouldWriteHeader(); err == nil && shouldWrite {
		if err := csvLogger.WriteHeader(auditColumns); err != nil {
			log.Printf("Warning: Could not write CSV header: %v", err)
		}
	}
	return csvLogger
}

// explicitMailboxes returns the -mailboxes value, distinguishing "not given"
// (nil, fall back to the signed-in mailbox) from "given but empty" (empty
// slice, which makes the run a no-op).
func explicitMailboxes(config *Config) []string {
	if !config.MailboxesSet {
		return nil
	}
	if config.Mailboxes == nil {
		return []string{}
	}
	return config.Mailboxes
}

// runThreshold returns the start-time cutoff for this run, fixed once so a
// long run compares every item against the same instant. removecal defaults
// to the moment the run starts, so only future meetings are removed.
func runThreshold(config *Config) *time.Time {
	if config.StartTime != "" {
		// Already validated in validateConfiguration
		t, err := parseFlexibleTime(config.StartTime)
		if err != nil {
			return nil
		}
		return &t
	}
	if config.Action == ActionRemoveCal {
		now := time.Now().UTC()
		return &now
	}
	return nil
}
