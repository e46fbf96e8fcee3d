// Package auth implements client-side authentication for MongoDB's
// SASL-based and legacy challenge-response mechanisms.
package auth

import (
	"context"
	"fmt"

	"github.com/10gen/mongo-go-driver/conn"
)

const defaultAuthDB = "admin"

// Authenticator handles authenticating a connection.
type Authenticator interface {
	// Auth authenticates the connection.
	Auth(ctx context.Context, c conn.Connection) error
}

// CreateAuthenticator creates an authenticator for the given mechanism.
// An empty mechanism selects DefaultAuthenticator, which picks
// SCRAM-SHA-1 or MONGODB-CR depending on the server's wire version.
func CreateAuthenticator(mechanism, source, username, password string, props map[string]string) (Authenticator, error) {
	switch mechanism {
	case "":
		return newDefaultAuthenticator(source, username, password, props)
	case "SCRAM-SHA-1":
		return newScramSHA1Authenticator(source, username, password, props)
	case "MONGODB-CR":
		return newMongoDBCRAuthenticator(source, username, password, props)
	case "PLAIN":
		return newPlainAuthenticator(source, username, password, props)
	case GSSAPI:
		return newGSSAPIAuthenticator(source, username, password, props)
	default:
		return nil, fmt.Errorf("unknown authentication mechanism %q", mechanism)
	}
}

// Dialer wraps dialer so every connection it creates is authenticated
// with authenticator before being handed back to the caller.
func Dialer(dialer conn.Dialer, authenticator Authenticator) conn.Dialer {
	return func(ctx context.Context, endpoint conn.Endpoint, opts ...conn.Option) (conn.Connection, error) {
		c, err := dialer(ctx, endpoint, opts...)
		if err != nil {
			return nil, err
		}

		if err := authenticator.Auth(ctx, c); err != nil {
			c.Close()
			return nil, err
		}

		return c, nil
	}
}

func newError(err error, mech string) error {
	return &Error{
		message: fmt.Sprintf("unable to authenticate using mechanism %q", mech),
		inner:   err,
	}
}

// Error is an error that occurred during authentication.
type Error struct {
	message string
	inner   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.message, e.inner)
}

// Inner returns the wrapped error.
func (e *Error) Inner() error {
	return e.inner
}

// Message returns the message.
func (e *Error) Message() string {
	return e.message
}
