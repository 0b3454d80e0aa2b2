//go:build !windows

package graphauth

import "fmt"

// exportCertFromStore is only available on Windows, where certificates live
// in the CurrentUser\My store. Other platforms must use -pfx instead.
func exportCertFromStore(thumbprint string) ([]byte, string, error) {
	return nil, "", fmt.Errorf("thumbprint authentication requires the Windows certificate store; use -pfx on this platform")
}
