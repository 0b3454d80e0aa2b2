package graphauth

import "fmt"

// AuthError indicates that establishing or refreshing a session failed.
// It is fatal for the run; no queries or actions happen after it.
type AuthError struct {
	Stage string // credential, token, client
	Err   error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (%s): %v", e.Stage, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ConfigError indicates an invalid credential or parameter combination,
// detected before any remote call is made.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Reason
}
