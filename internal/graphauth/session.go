// Package graphauth establishes authenticated Microsoft Graph sessions.
//
// Two modes are supported. Service mode authenticates the application itself
// with a client secret or certificate (PFX file or Windows certificate store
// thumbprint) and may target any mailbox the app has been granted. Interactive
// mode signs in a user with the device code flow and targets that user's own
// mailbox. The Provider caches the established session and hands it back for
// subsequent acquisitions instead of re-authenticating.
package graphauth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"

	"github.com/agallego-css/GraphTools/internal/common/logger"
	"github.com/agallego-css/GraphTools/internal/common/security"
)

const graphDefaultScope = "https://graph.microsoft.com/.default"

// Options selects the authentication mode and carries its parameters.
// Supplying any of Secret, PfxPath, or Thumbprint selects service mode;
// otherwise the device code flow signs in a user interactively.
type Options struct {
	TenantID   string
	ClientID   string
	Secret     string // Client Secret for authentication
	PfxPath    string // Path to .pfx certificate file
	PfxPass    string // Password for .pfx certificate file
	Thumbprint string // SHA1 thumbprint of certificate in Windows Certificate Store

	// Delegated permission names requested in interactive mode,
	// e.g. Calendars.ReadWrite. Ignored in service mode.
	Scopes []string
}

// ServiceMode reports whether the options select app-only authentication.
func (o Options) ServiceMode() bool {
	return o.Secret != "" || o.PfxPath != "" || o.Thumbprint != ""
}

// Session is an authenticated connection to Microsoft Graph. It is created
// once per run (or reused across runs via the Provider) and passed explicitly
// to every component that talks to the API.
type Session struct {
	Client      *msgraphsdk.GraphServiceClient
	Principal   string   // signed-in UPN (delegated) or app display name (app-only)
	TenantID    string
	AppOnly     bool
	Permissions []string // granted app roles or delegated scopes

	cred azcore.TokenCredential
}

// Credential exposes the underlying token credential.
func (s *Session) Credential() azcore.TokenCredential {
	return s.cred
}

// HasPermission reports whether the session's token grants the named Graph
// permission. A ReadWrite grant covers the corresponding Read permission.
func (s *Session) HasPermission(name string) bool {
	for _, p := range s.Permissions {
		if strings.EqualFold(p, name) {
			return true
		}
		if readWrite, ok := strings.CutSuffix(name, ".Read"); ok {
			if strings.EqualFold(p, readWrite+".ReadWrite") {
				return true
			}
		}
	}
	return false
}

// Provider creates and caches Sessions. Acquire is idempotent: while a
// session that satisfies the requested scopes exists, it is returned as-is.
type Provider struct {
	mu      sync.Mutex
	current *Session
	logger  *slog.Logger
}

// NewProvider creates a session provider. The logger may be nil.
func NewProvider(slogger *slog.Logger) *Provider {
	return &Provider{logger: slogger}
}

// Acquire returns the cached session when it satisfies the requested scopes,
// otherwise it authenticates with the given options and caches the result.
// All failures are reported as *AuthError.
func (p *Provider) Acquire(ctx context.Context, opts Options) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil && sessionCovers(p.current, opts) {
		logger.LogDebug(p.logger, "Reusing existing session", "principal", security.MaskEmail(p.current.Principal))
		return p.current, nil
	}

	session, err := p.connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	p.current = session
	return session, nil
}

// Disconnect drops the cached session. The next Acquire authenticates again.
func (p *Provider) Disconnect() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil {
		logger.LogInfo(p.logger, "Session disconnected", "principal", security.MaskEmail(p.current.Principal))
		p.current = nil
	}
}

func sessionCovers(s *Session, opts Options) bool {
	// App-only sessions authenticate the application, not a user; reuse them
	// only for service-mode requests and vice versa.
	if s.AppOnly != opts.ServiceMode() {
		return false
	}
	for _, scope := range opts.Scopes {
		if !s.HasPermission(scope) {
			return false
		}
	}
	return true
}

func (p *Provider) connect(ctx context.Context, opts Options) (*Session, error) {
	cred, err := p.getCredential(opts)
	if err != nil {
		return nil, &AuthError{Stage: "credential", Err: err}
	}

	tokenScopes := []string{graphDefaultScope}
	if !opts.ServiceMode() {
		tokenScopes = delegatedScopeURLs(opts.Scopes)
	}

	// Acquire a token up front so authentication problems surface here,
	// before any mailbox is touched, and so the claims are available.
	token, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: tokenScopes})
	if err != nil {
		return nil, &AuthError{Stage: "token", Err: err}
	}

	client, err := msgraphsdk.NewGraphServiceClientWithCredentials(cred, tokenScopes)
	if err != nil {
		return nil, &AuthError{Stage: "client", Err: err}
	}

	session := &Session{
		Client:   client,
		TenantID: opts.TenantID,
		AppOnly:  opts.ServiceMode(),
		cred:     cred,
	}

	claims, err := parseTokenClaims(token.Token)
	if err != nil {
		// The token works even when its claims are not parseable; log and go on.
		logger.LogWarn(p.logger, "Could not parse token claims", "error", err)
	} else {
		session.Permissions = claims.grantedPermissions()
		if session.AppOnly {
			session.Principal = claims.AppDisplayName
		} else {
			session.Principal = claims.Upn
		}
	}

	logger.LogInfo(p.logger, "Session established",
		"appOnly", session.AppOnly,
		"principal", security.MaskEmail(session.Principal),
		"permissions", strings.Join(session.Permissions, ", "),
		"tokenExpires", token.ExpiresOn.Format(time.RFC3339),
		"token", security.MaskAccessToken(token.Token))

	return session, nil
}

func (p *Provider) getCredential(opts Options) (azcore.TokenCredential, error) {
	// 1. Client Secret
	if opts.Secret != "" {
		logger.LogDebug(p.logger, "Authentication method: Client Secret",
			"tenantID", security.MaskGUID(opts.TenantID), "clientID", security.MaskGUID(opts.ClientID))
		return azidentity.NewClientSecretCredential(opts.TenantID, opts.ClientID, opts.Secret, nil)
	}

	// 2. PFX File
	if opts.PfxPath != "" {
		logger.LogDebug(p.logger, "Authentication method: PFX Certificate File", "path", opts.PfxPath)
		pfxData, err := readPfxFile(opts.PfxPath)
		if err != nil {
			return nil, err
		}
		logger.LogDebug(p.logger, "PFX file read successfully", "bytes", len(pfxData))
		return createCertCredential(opts.TenantID, opts.ClientID, pfxData, opts.PfxPass)
	}

	// 3. Windows Cert Store (Thumbprint)
	if opts.Thumbprint != "" {
		logger.LogDebug(p.logger, "Authentication method: Windows Certificate Store", "thumbprint", opts.Thumbprint)
		pfxData, tempPass, err := exportCertFromStore(opts.Thumbprint)
		if err != nil {
			return nil, fmt.Errorf("failed to export cert from store: %w", err)
		}
		logger.LogDebug(p.logger, "Certificate exported successfully", "bytes", len(pfxData))
		return createCertCredential(opts.TenantID, opts.ClientID, pfxData, tempPass)
	}

	// 4. Interactive device code sign-in
	logger.LogDebug(p.logger, "Authentication method: Device Code (interactive)")
	dcOpts := &azidentity.DeviceCodeCredentialOptions{
		TenantID: opts.TenantID,
		ClientID: opts.ClientID,
		UserPrompt: func(ctx context.Context, dc azidentity.DeviceCodeMessage) error {
			fmt.Println(dc.Message)
			return nil
		},
	}
	return azidentity.NewDeviceCodeCredential(dcOpts)
}

// delegatedScopeURLs expands short permission names into full Graph scope URLs.
func delegatedScopeURLs(names []string) []string {
	if len(names) == 0 {
		return []string{graphDefaultScope}
	}
	urls := make([]string, len(names))
	for i, n := range names {
		urls[i] = "https://graph.microsoft.com/" + n
	}
	return urls
}
