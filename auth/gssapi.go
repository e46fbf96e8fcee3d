//+build !gssapi

package auth

import "fmt"

// GSSAPI is the mechanism name for GSSAPI (Kerberos) authentication.
const GSSAPI = "GSSAPI"

func newGSSAPIAuthenticator(source, username, password string, props map[string]string) (Authenticator, error) {
	return nil, fmt.Errorf("GSSAPI support not enabled during build (-tags gssapi)")
}
