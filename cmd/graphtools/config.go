package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agallego-css/GraphTools/internal/common/security"
	"github.com/agallego-css/GraphTools/internal/common/validation"
	"github.com/agallego-css/GraphTools/internal/common/version"
	"github.com/agallego-css/GraphTools/internal/graphauth"
	"github.com/agallego-css/GraphTools/internal/pipeline"
)

// Action constants
const (
	ActionExportCal  = "exportcal"
	ActionRemoveCal  = "removecal"
	ActionExportMail = "exportmail"
)

// Config holds all application configuration including command-line flags,
// environment variables, and runtime state.
type Config struct {
	// Core configuration
	ShowVersion bool   // Display version information and exit
	Action      string // Operation to perform (exportcal, removecal, exportmail)

	// Selection criterion (mutually exclusive)
	Subject string // Exact subject to match
	Sender  string // Organizer/sender address to match (case-insensitive)

	// Target mailboxes
	Mailboxes    stringSlice // Explicit mailbox list; empty list means an empty run
	MailboxesSet bool        // Whether -mailboxes was given at all

	// Start-time threshold; removecal defaults to the moment the run starts
	StartTime string

	// Authentication configuration
	TenantID   string // Azure AD Tenant ID (GUID format)
	ClientID   string // Application (Client) ID (GUID format)
	Secret     string // Client Secret for authentication
	PfxPath    string // Path to .pfx certificate file
	PfxPass    string // Password for .pfx certificate file
	Thumbprint string // SHA1 thumbprint of certificate in Windows Certificate Store

	// Output configuration
	OutPath      string // Export report path (default: temp directory)
	NoTranscript bool   // Disable the per-run log file
	Disconnect   bool   // Drop the cached session when the run finishes

	// Network configuration
	MaxRetries int           // Maximum retry attempts for transient failures (default: 3)
	RetryDelay time.Duration // Base delay between retries (default: 2000ms)
	RPS        float64       // Requests-per-second cap, 0 disables rate limiting

	// Runtime configuration
	VerboseMode bool   // Enable verbose diagnostic output (maps to DEBUG log level)
	LogLevel    string // Logging level: DEBUG, INFO, WARN, ERROR (default: INFO)
	WhatIf      bool   // Dry run mode - preview deletions without executing
}

// parseAndConfigureFlags defines all command-line flags, parses them,
// applies environment variables, and returns a populated Config struct with
// all configuration values merged from defaults, environment variables, and
// command-line arguments (in that order of precedence).
func parseAndConfigureFlags() *Config {
	// Customize help output
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "GraphTools - Exchange Online calendar/mail admin tool - Version %s\n\n", version.Get())
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(flag.CommandLine.Output(), "\nEnvironment Variables:\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  All flags can be set via environment variables with GRAPHTOOLS prefix\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  Example: GRAPHTOOLSTENANTID, GRAPHTOOLSCLIENTID, GRAPHTOOLSTHUMBPRINT\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  Command-line flags take precedence over environment variables\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Examples:\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  %s -action exportcal -subject \"Team Meeting\"\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "  %s -action removecal -sender \"organizer@example.com\" -start 2026-01-15T14:00:00Z \\\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "      -mailboxes \"a@example.com,b@example.com\" -tenantid \"...\" -clientid \"...\" -thumbprint \"ABC123\"\n\n")
	}

	// Define Command Line Parameters
	showVersion := flag.Bool("version", false, "Show version information")
	action := flag.String("action", ActionExportCal, "Action to perform: exportcal, removecal, exportmail (env: GRAPHTOOLSACTION)")
	subject := flag.String("subject", "", "Exact subject of the items to match (env: GRAPHTOOLSSUBJECT)")
	sender := flag.String("sender", "", "Organizer/sender address of the items to match (env: GRAPHTOOLSSENDER)")

	var mailboxes stringSlice
	flag.Var(&mailboxes, "mailboxes", "Comma-separated list of target mailboxes (defaults to the signed-in mailbox) (env: GRAPHTOOLSMAILBOXES)")

	startTime := flag.String("start", "", "Start-time threshold (RFC3339 or PowerShell 'Get-Date -Format s' format). Items starting at or before it are excluded. removecal defaults to now (env: GRAPHTOOLSSTART)")

	tenantID := flag.String("tenantid", "", "The Azure Tenant ID (env: GRAPHTOOLSTENANTID)")
	clientID := flag.String("clientid", "", "The Application (Client) ID (env: GRAPHTOOLSCLIENTID)")
	secret := flag.String("secret", "", "The Client Secret (env: GRAPHTOOLSSECRET)")
	pfxPath := flag.String("pfx", "", "Path to the .pfx certificate file (env: GRAPHTOOLSPFX)")
	pfxPass := flag.String("pfxpass", "", "Password for the .pfx file (env: GRAPHTOOLSPFXPASS)")
	thumbprint := flag.String("thumbprint", "", "Thumbprint of the certificate in the CurrentUser\\My store (env: GRAPHTOOLSTHUMBPRINT)")

	outPath := flag.String("out", "", "Path of the CSV report for export actions (default: temp directory) (env: GRAPHTOOLSOUT)")
	noTranscript := flag.Bool("notranscript", false, "Disable the per-run log file in the temp directory")
	disconnect := flag.Bool("disconnect", false, "Drop the cached session when the run finishes")

	maxRetries := flag.Int("maxretries", 3, "Maximum retry attempts for transient failures (default: 3) (env: GRAPHTOOLSMAXRETRIES)")
	retryDelay := flag.Int("retrydelay", 2000, "Base delay between retries in milliseconds (default: 2000ms) (env: GRAPHTOOLSRETRYDELAY)")
	rps := flag.Float64("rps", 4, "Maximum Graph API requests per second, 0 disables limiting (default: 4) (env: GRAPHTOOLSRPS)")

	verbose := flag.Bool("verbose", false, "Enable verbose output (shows configuration, tokens, API details)")
	logLevel := flag.String("loglevel", "INFO", "Logging level: DEBUG, INFO, WARN, ERROR (default: INFO)")
	whatif := flag.Bool("whatif", false, "Dry run mode - preview deletions without executing (PowerShell-style) (env: GRAPHTOOLSWHATIF)")

	flag.Parse()

	// Apply environment variables if flags not set via command line
	applyEnvVars(map[string]*string{
		"GRAPHTOOLSACTION":     action,
		"GRAPHTOOLSSUBJECT":    subject,
		"GRAPHTOOLSSENDER":     sender,
		"GRAPHTOOLSSTART":      startTime,
		"GRAPHTOOLSTENANTID":   tenantID,
		"GRAPHTOOLSCLIENTID":   clientID,
		"GRAPHTOOLSSECRET":     secret,
		"GRAPHTOOLSPFX":        pfxPath,
		"GRAPHTOOLSPFXPASS":    pfxPass,
		"GRAPHTOOLSTHUMBPRINT": thumbprint,
		"GRAPHTOOLSOUT":        outPath,
		"GRAPHTOOLSLOGLEVEL":   logLevel,
	})

	// Apply environment variable for the mailbox list
	mailboxesSet := flagProvided("mailboxes")
	if !mailboxesSet {
		if envValue, ok := os.LookupEnv("GRAPHTOOLSMAILBOXES"); ok {
			mailboxes.Set(envValue)
			mailboxesSet = true
		}
	}

	// Apply GRAPHTOOLSMAXRETRIES environment variable if flag wasn't provided
	if !flagProvided("maxretries") {
		if envMaxRetries := os.Getenv("GRAPHTOOLSMAXRETRIES"); envMaxRetries != "" {
			if parsed, err := strconv.Atoi(envMaxRetries); err == nil && parsed >= 0 {
				*maxRetries = parsed
			}
		}
	}

	// Apply GRAPHTOOLSRETRYDELAY environment variable if flag wasn't provided
	if !flagProvided("retrydelay") {
		if envRetryDelay := os.Getenv("GRAPHTOOLSRETRYDELAY"); envRetryDelay != "" {
			if parsed, err := strconv.Atoi(envRetryDelay); err == nil && parsed > 0 {
				*retryDelay = parsed
			}
		}
	}

	// Apply GRAPHTOOLSRPS environment variable if flag wasn't provided
	if !flagProvided("rps") {
		if envRPS := os.Getenv("GRAPHTOOLSRPS"); envRPS != "" {
			if parsed, err := strconv.ParseFloat(envRPS, 64); err == nil && parsed >= 0 {
				*rps = parsed
			}
		}
	}

	// Apply GRAPHTOOLSWHATIF environment variable if flag wasn't provided
	if !flagProvided("whatif") {
		if envWhatIf := os.Getenv("GRAPHTOOLSWHATIF"); envWhatIf != "" {
			if parsed, err := strconv.ParseBool(envWhatIf); err == nil {
				*whatif = parsed
			}
		}
	}

	return &Config{
		ShowVersion:  *showVersion,
		Action:       strings.ToLower(*action),
		Subject:      *subject,
		Sender:       *sender,
		Mailboxes:    mailboxes,
		MailboxesSet: mailboxesSet,
		StartTime:    *startTime,
		TenantID:     *tenantID,
		ClientID:     *clientID,
		Secret:       *secret,
		PfxPath:      *pfxPath,
		PfxPass:      *pfxPass,
		Thumbprint:   *thumbprint,
		OutPath:      *outPath,
		NoTranscript: *noTranscript,
		Disconnect:   *disconnect,
		MaxRetries:   *maxRetries,
		RetryDelay:   time.Duration(*retryDelay) * time.Millisecond,
		RPS:          *rps,
		VerboseMode:  *verbose,
		LogLevel:     *logLevel,
		WhatIf:       *whatif,
	}
}

// printVerboseConfig prints the effective configuration with secrets masked.
func printVerboseConfig(config *Config) {
	fmt.Println("=== Configuration ===")
	fmt.Printf("Action:      %s\n", config.Action)
	if config.Subject != "" {
		fmt.Printf("Subject:     %q\n", config.Subject)
	}
	if config.Sender != "" {
		fmt.Printf("Sender:      %s\n", config.Sender)
	}
	if config.MailboxesSet {
		fmt.Printf("Mailboxes:   %s (%d)\n", config.Mailboxes.String(), len(config.Mailboxes))
	} else {
		fmt.Printf("Mailboxes:   (signed-in mailbox)\n")
	}
	if config.StartTime != "" {
		fmt.Printf("Start:       %s\n", config.StartTime)
	}
	fmt.Printf("Tenant ID:   %s\n", security.MaskGUID(config.TenantID))
	fmt.Printf("Client ID:   %s\n", security.MaskGUID(config.ClientID))
	if config.Secret != "" {
		fmt.Printf("Secret:      %s\n", security.MaskSecret(config.Secret))
	}
	if config.PfxPath != "" {
		fmt.Printf("PFX:         %s\n", config.PfxPath)
	}
	if config.Thumbprint != "" {
		fmt.Printf("Thumbprint:  %s\n", config.Thumbprint)
	}
	fmt.Printf("MaxRetries:  %d\n", config.MaxRetries)
	fmt.Printf("RetryDelay:  %s\n", config.RetryDelay)
	fmt.Printf("RPS:         %g\n", config.RPS)
	fmt.Printf("WhatIf:      %t\n", config.WhatIf)
	fmt.Println("=====================")
}

// buildCriterion converts the validated flags into the run's selection
// criterion. Validation guarantees exactly one of the two is set.
func buildCriterion(config *Config) pipeline.Criterion {
	if config.Sender != "" {
		return pipeline.BySender(config.Sender)
	}
	return pipeline.BySubject(config.Subject)
}

// flagProvided reports whether the named flag was set on the command line.
func flagProvided(name string) bool {
	provided := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			provided = true
		}
	})
	return provided
}

// applyEnvVars applies environment variable values to flags that weren't explicitly set via command line
func applyEnvVars(envMap map[string]*string) {
	// Track which flags were explicitly set via command line
	providedFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		providedFlags[f.Name] = true
	})

	// Map flag names to environment variable names
	flagToEnv := map[string]string{
		"action":     "GRAPHTOOLSACTION",
		"subject":    "GRAPHTOOLSSUBJECT",
		"sender":     "GRAPHTOOLSSENDER",
		"start":      "GRAPHTOOLSSTART",
		"tenantid":   "GRAPHTOOLSTENANTID",
		"clientid":   "GRAPHTOOLSCLIENTID",
		"secret":     "GRAPHTOOLSSECRET",
		"pfx":        "GRAPHTOOLSPFX",
		"pfxpass":    "GRAPHTOOLSPFXPASS",
		"thumbprint": "GRAPHTOOLSTHUMBPRINT",
		"out":        "GRAPHTOOLSOUT",
		"loglevel":   "GRAPHTOOLSLOGLEVEL",
	}

	// For each environment variable, if flag wasn't provided, use env value
	for envName, flagPtr := range envMap {
		// Find the flag name for this env var
		var flagName string
		for fn, en := range flagToEnv {
			if en == envName {
				flagName = fn
				break
			}
		}

		// If flag was not provided via command line, check environment variable
		if !providedFlags[flagName] {
			if envValue := os.Getenv(envName); envValue != "" {
				*flagPtr = envValue
			}
		}
	}
}

// stringSlice implements the flag.Value interface for comma-separated string lists.
type stringSlice []string

// String returns the comma-separated string representation of the slice.
func (s *stringSlice) String() string {
	if s == nil {
		return ""
	}
	return strings.Join(*s, ",")
}

// Set parses a comma-separated string into a slice of trimmed strings.
// An empty value yields an empty (non-nil) slice so that an explicitly
// empty mailbox list is distinguishable from no list at all.
func (s *stringSlice) Set(value string) error {
	result := []string{}
	for _, p := range strings.Split(value, ",") {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	*s = result
	return nil
}

// parseFlexibleTime parses a time string accepting multiple formats.
func parseFlexibleTime(timeStr string) (time.Time, error) {
	if timeStr == "" {
		return time.Time{}, fmt.Errorf("time string is empty")
	}

	// Try RFC3339 first (with timezone)
	t, err := time.Parse(time.RFC3339, timeStr)
	if err == nil {
		return t, nil
	}

	// Try PowerShell sortable format (without timezone) - assume UTC
	t, err = time.Parse("2006-01-02T15:04:05", timeStr)
	if err == nil {
		return t.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("invalid time format (expected RFC3339 like '2026-01-15T14:00:00Z' or PowerShell sortable like '2026-01-15T14:00:00')")
}

// authOptions maps the credential configuration onto session options with
// the delegated scope the action needs.
func authOptions(config *Config) graphauth.Options {
	return graphauth.Options{
		TenantID:   config.TenantID,
		ClientID:   config.ClientID,
		Secret:     config.Secret,
		PfxPath:    config.PfxPath,
		PfxPass:    config.PfxPass,
		Thumbprint: config.Thumbprint,
		Scopes:     []string{requiredScope(config.Action)},
	}
}

// requiredScope returns the minimal Graph permission for an action.
func requiredScope(action string) string {
	switch action {
	case ActionRemoveCal:
		return "Calendars.ReadWrite"
	case ActionExportMail:
		return "Mail.Read"
	default:
		return "Calendars.Read"
	}
}

// targetedMailboxCount is the number of mailboxes the run will touch,
// known before any session exists.
func targetedMailboxCount(config *Config) int {
	if config.MailboxesSet {
		return len(config.Mailboxes)
	}
	return 1 // the signed-in mailbox
}

// validateConfiguration validates all required configuration fields.
// Credential problems surface here as *graphauth.ConfigError, before any
// session or query is attempted.
func validateConfiguration(config *Config) error {
	// Validate action
	validActions := map[string]bool{
		ActionExportCal:  true,
		ActionRemoveCal:  true,
		ActionExportMail: true,
	}
	if !validActions[config.Action] {
		return fmt.Errorf("invalid action: %s (use: exportcal, removecal, exportmail)", config.Action)
	}

	// Exactly one selection criterion
	if config.Subject == "" && config.Sender == "" {
		return fmt.Errorf("missing criterion: provide -subject or -sender")
	}
	if config.Subject != "" && config.Sender != "" {
		return fmt.Errorf("conflicting criteria: use only one of -subject or -sender")
	}
	if config.Sender != "" {
		if err := validation.ValidateEmail(config.Sender); err != nil {
			return fmt.Errorf("invalid sender: %w", err)
		}
	}

	// Validate explicit mailbox addresses
	if err := validation.ValidateEmails(config.Mailboxes, "Mailboxes"); err != nil {
		return err
	}

	// Validate the start-time threshold if provided
	if config.StartTime != "" {
		if _, err := parseFlexibleTime(config.StartTime); err != nil {
			return fmt.Errorf("invalid start time: %w", err)
		}
	}

	// At most one credential method
	authMethodCount := 0
	if config.Secret != "" {
		authMethodCount++
	}
	if config.PfxPath != "" {
		authMethodCount++
	}
	if config.Thumbprint != "" {
		authMethodCount++
	}
	if authMethodCount > 1 {
		return fmt.Errorf("multiple authentication methods provided: use only one of -secret, -pfx, or -thumbprint")
	}

	// Validate credential formats when given
	if config.TenantID != "" {
		if err := validation.ValidateGUID(config.TenantID, "Tenant ID"); err != nil {
			return err
		}
	}
	if config.ClientID != "" {
		if err := validation.ValidateGUID(config.ClientID, "Client ID"); err != nil {
			return err
		}
	}
	if config.Thumbprint != "" {
		if err := validation.ValidateThumbprint(config.Thumbprint, "Thumbprint"); err != nil {
			return err
		}
	}
	if config.PfxPath != "" {
		if err := validation.ValidateFilePath(config.PfxPath, "PFX certificate file"); err != nil {
			return err
		}
	}

	if config.MaxRetries < 0 {
		return fmt.Errorf("maxretries cannot be negative (got %d)", config.MaxRetries)
	}
	if config.RPS < 0 {
		return fmt.Errorf("rps cannot be negative (got %g)", config.RPS)
	}

	// Multi-mailbox runs need the full service credential set
	return graphauth.RequireServiceCredentials(authOptions(config), targetedMailboxCount(config))
}
