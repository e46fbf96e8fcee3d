package conn

import (
	"errors"
	"fmt"
	"strings"

	"github.com/10gen/mongo-go-driver/bson"
)

var (
	ErrUnknownCommandFailure   = errors.New("unknown command failure")
	ErrNoCommandResponse       = errors.New("no command response document")
	ErrMultiDocCommandResponse = errors.New("command returned multiple documents")
	ErrNoDocCommandResponse    = errors.New("command returned no documents")
)

// CommandFailureError is an error with a failure response as a document.
type CommandFailureError struct {
	Msg      string
	Response *bson.Document
}

func (e *CommandFailureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Msg, e.Response)
}

// Message retrieves the message of the error.
func (e *CommandFailureError) Message() string {
	return e.Msg
}

// CommandResponseError is an error in the response to a command.
type CommandResponseError struct {
	Message string
}

func NewCommandResponseError(msg string) *CommandResponseError {
	return &CommandResponseError{msg}
}

func (e *CommandResponseError) Error() string {
	return e.Message
}

// CommandError is an error in the execution of a command, built from a
// command response's "errmsg"/"code"/"codeName" fields.
type CommandError struct {
	Code    int32
	Message string
	Name    string
}

func (e *CommandError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("(%v) %v", e.Name, e.Message)
	}
	return e.Message
}

// IsNsNotFound reports whether err is a "namespace not found" command
// error (error code 26).
func IsNsNotFound(err error) bool {
	e, ok := err.(*CommandError)
	return ok && e.Code == 26
}

// IsCommandNotFound reports whether err indicates the server didn't
// recognize the command name (error code 59 or 13390, or a bare
// "no such cmd:" message on very old servers).
func IsCommandNotFound(err error) bool {
	e, ok := err.(*CommandError)
	return ok && (e.Code == 59 || e.Code == 13390 || strings.HasPrefix(e.Message, "no such cmd:"))
}
