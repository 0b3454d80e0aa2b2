//go:build !integration
// +build !integration

package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestValidateFilePath tests file path validation including security checks for path traversal attacks
func TestValidateFilePath(t *testing.T) {
	// Create a temporary test file for valid path tests
	tmpFile, err := os.CreateTemp("", "validation_test_*.txt")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())
	tmpFile.Close()

	// Create a temporary directory (should fail - not a regular file)
	tmpDir, err := os.MkdirTemp("", "validation_test_dir_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	tests := []struct {
		name      string
		path      string
		fieldName string
		wantErr   bool
		errMsg    string
	}{
		// Valid cases
		{"Valid: Empty path (optional field)", "", "TestFile", false, ""},
		{"Valid: Absolute path to temp file", tmpFile.Name(), "TestFile", false, ""},
		{"Valid: Relative path to current file", "validation_test.go", "TestFile", false, ""},

		// Security: Path traversal attacks (CRITICAL)
		{"Security: Unix path traversal (../../)", "../../etc/passwd", "TestFile", true, "traversal"},
		{"Security: Windows path traversal (..\\..\\)", "..\\..\\Windows\\System32\\config", "TestFile", true, "traversal"},
		{"Security: Mixed path traversal", "../../../sensitive", "TestFile", true, "traversal"},
		{"Security: Multiple traversal attempts", "../../../../../../../../etc/shadow", "TestFile", true, "traversal"},
		{"Security: Hidden traversal in path", "safe/../../etc/passwd", "TestFile", true, "traversal"},

		// File not found
		{"Error: File does not exist", "/nonexistent/file/path.txt", "TestFile", true, "not found"},
		{"Error: Nonexistent file in temp", filepath.Join(os.TempDir(), "nonexistent_validation_test.txt"), "TestFile", true, "not found"},

		// Directory vs file
		{"Error: Path is directory not file", tmpDir, "TestFile", true, "not a regular file"},

		// Invalid paths
		{"Error: Invalid path characters (NUL)", "file\x00name.txt", "TestFile", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilePath(tt.path, tt.fieldName)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilePath() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && tt.errMsg != "" && !strings.Contains(strings.ToLower(err.Error()), strings.ToLower(tt.errMsg)) {
				t.Errorf("ValidateFilePath() error message = %v, should contain %v", err.Error(), tt.errMsg)
			}
		})
	}
}

// TestValidateEmail tests email validation including security checks for injection attacks
func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
		errMsg  string
	}{
		// Valid cases
		{"Valid: Simple email", "user@example.com", false, ""},
		{"Valid: Email with plus", "test.name+tag@example.co.uk", false, ""},
		{"Valid: Email with dots", "first.last@sub.domain.com", false, ""},
		{"Valid: Email with numbers", "user123@example456.com", false, ""},

		// Invalid format
		{"Error: Empty email", "", true, "empty"},
		{"Error: Missing @", "userexample.com", true, "missing @"},
		{"Error: Multiple @ symbols", "user@@example.com", true, "invalid"},
		{"Error: Empty local part", "@example.com", true, "invalid"},
		{"Error: Empty domain", "user@", true, "invalid"},

		// Security: Potential injection attempts
		{"Security: CRLF injection attempt", "user@example.com\r\nBcc: attacker@evil.com", true, "invalid"},
		{"Security: Newline injection", "user@example.com\nCc: leak@evil.com", true, "invalid"},

		// Whitespace handling
		{"Valid: Trimmed whitespace", "  user@example.com  ", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && tt.errMsg != "" && !strings.Contains(strings.ToLower(err.Error()), strings.ToLower(tt.errMsg)) {
				t.Errorf("ValidateEmail() error message = %v, should contain %v", err.Error(), tt.errMsg)
			}
		})
	}
}

// TestValidateEmails tests validation of email slices
func TestValidateEmails(t *testing.T) {
	tests := []struct {
		name      string
		emails    []string
		fieldName string
		wantErr   bool
	}{
		{"Valid: Empty slice", []string{}, "To", false},
		{"Valid: Single valid email", []string{"user@example.com"}, "To", false},
		{"Valid: Multiple valid emails", []string{"user1@example.com", "user2@example.com"}, "CC", false},
		{"Error: One invalid in list", []string{"valid@example.com", "invalid"}, "BCC", true},
		{"Error: Invalid email in middle", []string{"user1@example.com", "@invalid", "user3@example.com"}, "To", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmails(tt.emails, tt.fieldName)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmails() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestValidateGUID tests GUID format validation
func TestValidateGUID(t *testing.T) {
	tests := []struct {
		name      string
		guid      string
		fieldName string
		wantErr   bool
		errMsg    string
	}{
		// Valid cases
		{"Valid: Standard GUID", "12345678-1234-1234-1234-123456789012", "TenantID", false, ""},
		{"Valid: Lowercase GUID", "abcdef12-3456-7890-abcd-ef1234567890", "ClientID", false, ""},
		{"Valid: Uppercase GUID", "ABCDEF12-3456-7890-ABCD-EF1234567890", "ClientID", false, ""},
		{"Valid: Mixed case GUID", "AaBbCcDd-1234-5678-90Ab-CdEf12345678", "TenantID", false, ""},

		// Invalid format
		{"Error: Empty GUID", "", "TenantID", true, "empty"},
		{"Error: Too short", "12345678-1234-1234-1234-12345678901", "TenantID", true, "36 characters"},
		{"Error: Too long", "12345678-1234-1234-1234-1234567890123", "ClientID", true, "36 characters"},
		{"Error: Missing dashes", "12345678123412341234123456789012", "TenantID", true, "36 characters"},
		{"Error: Wrong dash position 1", "1234567-81234-1234-1234-123456789012", "TenantID", true, "dashes at wrong positions"},
		{"Error: Wrong dash position 2", "12345678-123-41234-1234-123456789012", "TenantID", true, "dashes at wrong positions"},
		{"Error: Wrong dash position 3", "12345678-1234-123-41234-123456789012", "TenantID", true, "dashes at wrong positions"},
		{"Error: Wrong dash position 4", "12345678-1234-1234-123-4123456789012", "TenantID", true, "dashes at wrong positions"},

		// Whitespace handling
		{"Valid: Trimmed whitespace", "  12345678-1234-1234-1234-123456789012  ", "TenantID", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGUID(tt.guid, tt.fieldName)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGUID() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && tt.errMsg != "" && !strings.Contains(strings.ToLower(err.Error()), strings.ToLower(tt.errMsg)) {
				t.Errorf("ValidateGUID() error message = %v, should contain %v", err.Error(), tt.errMsg)
			}
		})
	}
}

// TestValidateThumbprint tests certificate thumbprint validation
func TestValidateThumbprint(t *testing.T) {
	tests := []struct {
		name       string
		thumbprint string
		wantErr    bool
		errMsg     string
	}{
		// Valid cases
		{"Valid: Lowercase hex", "a909502dd82ae41433e6f83886b00d4277a32a7b", false, ""},
		{"Valid: Uppercase hex", "A909502DD82AE41433E6F83886B00D4277A32A7B", false, ""},
		{"Valid: With colons", "a9:09:50:2d:d8:2a:e4:14:33:e6:f8:38:86:b0:0d:42:77:a3:2a:7b", false, ""},
		{"Valid: With spaces", "a9 09 50 2d d8 2a e4 14 33 e6 f8 38 86 b0 0d 42 77 a3 2a 7b", false, ""},
		{"Valid: Trimmed whitespace", "  a909502dd82ae41433e6f83886b00d4277a32a7b  ", false, ""},

		// Invalid cases
		{"Error: Empty thumbprint", "", true, "empty"},
		{"Error: Too short", "a909502dd82ae41433e6f83886b00d4277a32a", true, "40 hex"},
		{"Error: Too long", "a909502dd82ae41433e6f83886b00d4277a32a7b00", true, "40 hex"},
		{"Error: Non-hex character", "g909502dd82ae41433e6f83886b00d4277a32a7b", true, "non-hex"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateThumbprint(tt.thumbprint, "Thumbprint")
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateThumbprint() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && tt.errMsg != "" && !strings.Contains(strings.ToLower(err.Error()), strings.ToLower(tt.errMsg)) {
				t.Errorf("ValidateThumbprint() error message = %v, should contain %v", err.Error(), tt.errMsg)
			}
		})
	}
}
