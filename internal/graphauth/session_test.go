package graphauth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
)

// buildUnsignedJWT assembles a structurally valid JWT with the given payload
// and an empty signature, enough for unverified claim parsing.
func buildUnsignedJWT(t *testing.T, payload map[string]any) string {
	t.Helper()
	header := map[string]string{"alg": "none", "typ": "JWT"}
	hb, err := json.Marshal(header)
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	enc := base64.RawURLEncoding
	return enc.EncodeToString(hb) + "." + enc.EncodeToString(pb) + "."
}

func TestParseTokenClaims_AppOnly(t *testing.T) {
	token := buildUnsignedJWT(t, map[string]any{
		"app_displayname": "Calendar Cleanup",
		"roles":           []string{"Calendars.ReadWrite", "Mail.Read"},
	})

	claims, err := parseTokenClaims(token)
	if err != nil {
		t.Fatalf("parseTokenClaims() error = %v", err)
	}
	if claims.AppDisplayName != "Calendar Cleanup" {
		t.Errorf("AppDisplayName = %q, want Calendar Cleanup", claims.AppDisplayName)
	}
	perms := claims.grantedPermissions()
	if len(perms) != 2 || perms[0] != "Calendars.ReadWrite" {
		t.Errorf("grantedPermissions() = %v", perms)
	}
}

func TestParseTokenClaims_Delegated(t *testing.T) {
	token := buildUnsignedJWT(t, map[string]any{
		"upn": "user@example.com",
		"scp": "Calendars.Read Mail.Read",
	})

	claims, err := parseTokenClaims(token)
	if err != nil {
		t.Fatalf("parseTokenClaims() error = %v", err)
	}
	if claims.Upn != "user@example.com" {
		t.Errorf("Upn = %q, want user@example.com", claims.Upn)
	}
	perms := claims.grantedPermissions()
	want := []string{"Calendars.Read", "Mail.Read"}
	if len(perms) != len(want) {
		t.Fatalf("grantedPermissions() = %v, want %v", perms, want)
	}
	for i := range want {
		if perms[i] != want[i] {
			t.Errorf("grantedPermissions()[%d] = %q, want %q", i, perms[i], want[i])
		}
	}
}

func TestParseTokenClaims_Malformed(t *testing.T) {
	if _, err := parseTokenClaims("not-a-jwt"); err == nil {
		t.Error("parseTokenClaims() error = nil for malformed token")
	}
}

func TestSessionHasPermission(t *testing.T) {
	tests := []struct {
		name        string
		permissions []string
		query       string
		want        bool
	}{
		{"exact match", []string{"Calendars.ReadWrite"}, "Calendars.ReadWrite", true},
		{"case insensitive", []string{"calendars.readwrite"}, "Calendars.ReadWrite", true},
		{"readwrite covers read", []string{"Calendars.ReadWrite"}, "Calendars.Read", true},
		{"read does not cover readwrite", []string{"Calendars.Read"}, "Calendars.ReadWrite", false},
		{"unrelated permission", []string{"Mail.Read"}, "Calendars.Read", false},
		{"no permissions", nil, "Calendars.Read", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Session{Permissions: tt.permissions}
			if got := s.HasPermission(tt.query); got != tt.want {
				t.Errorf("HasPermission(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestSessionCovers(t *testing.T) {
	appOnly := &Session{AppOnly: true, Permissions: []string{"Calendars.ReadWrite"}}
	delegated := &Session{AppOnly: false, Permissions: []string{"Calendars.Read"}}

	service := Options{Secret: "s", Scopes: []string{"Calendars.Read"}}
	interactive := Options{Scopes: []string{"Calendars.Read"}}

	if !sessionCovers(appOnly, service) {
		t.Error("app-only session should cover a service request within its grants")
	}
	if sessionCovers(appOnly, interactive) {
		t.Error("app-only session must not satisfy an interactive request")
	}
	if !sessionCovers(delegated, interactive) {
		t.Error("delegated session should cover an interactive request within its scopes")
	}
	if sessionCovers(delegated, Options{Scopes: []string{"Calendars.ReadWrite"}}) {
		t.Error("delegated read-only session must not cover a ReadWrite request")
	}
}

func TestRequireServiceCredentials(t *testing.T) {
	full := Options{
		TenantID:   "12345678-1234-1234-1234-123456789012",
		ClientID:   "87654321-4321-4321-4321-210987654321",
		Thumbprint: "a909502dd82ae41433e6f83886b00d4277a32a7b",
	}

	tests := []struct {
		name      string
		opts      Options
		mailboxes int
		wantErr   bool
	}{
		{"single mailbox interactive", Options{}, 1, false},
		{"single mailbox full triple", full, 1, false},
		{"multiple mailboxes full triple", full, 3, false},
		{"multiple mailboxes no credentials", Options{}, 2, true},
		{
			name:      "multiple mailboxes missing thumbprint",
			opts:      Options{TenantID: full.TenantID, ClientID: full.ClientID},
			mailboxes: 2,
			wantErr:   true,
		},
		{
			name:      "secret given but tenant missing",
			opts:      Options{ClientID: full.ClientID, Secret: "s3cret"},
			mailboxes: 1,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireServiceCredentials(tt.opts, tt.mailboxes)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RequireServiceCredentials() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var cfgErr *ConfigError
				if !errors.As(err, &cfgErr) {
					t.Errorf("error type = %T, want *ConfigError", err)
				}
			}
		})
	}
}

func TestOptionsServiceMode(t *testing.T) {
	if (Options{}).ServiceMode() {
		t.Error("empty options should select interactive mode")
	}
	if !(Options{Secret: "s"}).ServiceMode() {
		t.Error("secret should select service mode")
	}
	if !(Options{PfxPath: "cert.pfx"}).ServiceMode() {
		t.Error("pfx path should select service mode")
	}
	if !(Options{Thumbprint: "ab"}).ServiceMode() {
		t.Error("thumbprint should select service mode")
	}
}
