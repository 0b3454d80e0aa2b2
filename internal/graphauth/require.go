package graphauth

import "fmt"

// RequireServiceCredentials verifies that the full service credential set
// {tenant id, client id, secret or certificate} is present when a run
// targets mailboxes beyond the signed-in user's own. Interactive sign-in
// can only act on the signed-in mailbox, so multi-mailbox runs without the
// complete triple fail here with a *ConfigError before any query is issued.
func RequireServiceCredentials(opts Options, mailboxCount int) error {
	if mailboxCount <= 1 && !opts.ServiceMode() {
		return nil // single mailbox may use interactive sign-in
	}

	var missing []string
	if opts.TenantID == "" {
		missing = append(missing, "tenant id")
	}
	if opts.ClientID == "" {
		missing = append(missing, "client id")
	}
	if opts.Secret == "" && opts.PfxPath == "" && opts.Thumbprint == "" {
		missing = append(missing, "secret or certificate")
	}

	if len(missing) > 0 {
		if mailboxCount > 1 {
			return &ConfigError{Reason: fmt.Sprintf(
				"targeting %d mailboxes requires service credentials, missing: %v", mailboxCount, missing)}
		}
		return &ConfigError{Reason: fmt.Sprintf("incomplete service credentials, missing: %v", missing)}
	}
	return nil
}
