package conn

import (
	"context"

	"github.com/10gen/mongo-go-driver/bson"
	"github.com/10gen/mongo-go-driver/internal"
	"github.com/10gen/mongo-go-driver/msg"
)

// ExecuteCommand executes request on c and returns the validated response
// document. See ExecuteCommands for the validation rules.
func ExecuteCommand(ctx context.Context, c Connection, request msg.Request) (*bson.Document, error) {
	docs, err := ExecuteCommands(ctx, c, []msg.Request{request})
	if err != nil {
		return nil, err
	}
	return docs[0], nil
}

// ExecuteCommands writes requests to c, reads one response per request,
// and validates each: a REPLY with the QueryFailure flag set or the
// command envelope's "ok" field unset/zero is turned into a typed
// failure (CommandFailureError or CommandError) instead of a document.
// Failures for individual requests are aggregated; a request that
// succeeds still contributes its document even if a sibling failed.
func ExecuteCommands(ctx context.Context, c Connection, requests []msg.Request) ([]*bson.Document, error) {
	if err := c.Write(ctx, requests...); err != nil {
		return nil, internal.WrapAsf(internal.KindConnectionLost, err, "failed sending %d command(s)", len(requests))
	}

	docs := make([]*bson.Document, len(requests))
	var failures []error
	for i, req := range requests {
		resp, err := c.Read(ctx)
		if err != nil {
			failures = append(failures, internal.WrapAsf(internal.KindConnectionLost, err, "failed receiving response for request %d", req.RequestID()))
			continue
		}

		if resp.ResponseTo() != req.RequestID() {
			failures = append(failures, internal.NewErrorf(internal.KindReplyValidation,
				"received out of order response: expected %d but got %d", req.RequestID(), resp.ResponseTo()))
			continue
		}

		doc, err := ReadCommandResponse(resp)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		docs[i] = doc
	}

	if err := internal.MultiError(failures...); err != nil {
		return docs, err
	}
	return docs, nil
}

// ReadCommandResponse validates a raw REPLY against the command-response
// shape: exactly one document, the reply-flags bitset clear of
// CursorNotFound/QueryFailure/ShardConfigStale, no embedded "$err", and
// the envelope's "ok" field truthy ("errmsg"/"code" describe the failure
// when it is not). It is the
// validating-sink step (§4.8) both the synchronous
// one-request-per-connection path and the session-based dispatcher
// share.
func ReadCommandResponse(resp msg.Response) (*bson.Document, error) {
	reply, ok := resp.(*msg.Reply)
	if !ok {
		return nil, internal.NewErrorf(internal.KindReplyValidation, "unsupported response message type: %T", resp)
	}

	if reply.ResponseFlags&msg.CursorNotFound != 0 {
		return nil, internal.NewError(internal.KindCursorNotFound, "getMore referenced an unknown cursor")
	}
	if reply.ResponseFlags&msg.ShardConfigStale != 0 {
		return nil, internal.NewError(internal.KindShardConfigStale, "router's shard config is stale")
	}

	if reply.NumberReturned == 0 {
		return nil, ErrNoCommandResponse
	}
	if reply.NumberReturned > 1 {
		return nil, ErrMultiDocCommandResponse
	}

	doc, ok, err := reply.Iter().One()
	if err != nil {
		return nil, internal.WrapAsf(internal.KindReplyValidation, err, "failed to read command response document")
	}
	if !ok {
		return nil, ErrNoDocCommandResponse
	}

	if reply.ResponseFlags&msg.QueryFailure != 0 {
		return nil, &CommandFailureError{Msg: "command failure", Response: doc}
	}

	if err := checkEmbeddedErr(doc); err != nil {
		return nil, err
	}

	return doc, checkCommandOK(doc)
}

// checkEmbeddedErr looks for the legacy "$err" field (with an optional
// "code") some server replies use in place of "ok: 0", per §4.8's embedded-error
// check.
func checkEmbeddedErr(doc *bson.Document) error {
	el, found := doc.Lookup("$err")
	if !found {
		return nil
	}
	msg, _ := el.Value.(string)
	if msg == "" {
		msg = "command failed"
	}

	var code int32
	if c, found := doc.Lookup("code"); found {
		if v, ok := c.Value.(int32); ok {
			code = v
		}
	}

	return &CommandError{Code: code, Message: msg}
}

// checkCommandOK inspects a command response's "ok" field, the
// universal MongoDB command success indicator, and returns a
// *CommandError built from "errmsg"/"code"/"codeName" when it's absent
// or falsy.
func checkCommandOK(doc *bson.Document) error {
	if el, found := doc.Lookup("ok"); found && truthy(el) {
		return nil
	}

	errmsg := "command failed"
	if el, found := doc.Lookup("errmsg"); found {
		if s, ok := el.Value.(string); ok && s != "" {
			errmsg = s
		}
	}

	var code int32
	if el, found := doc.Lookup("code"); found {
		if v, ok := el.Value.(int32); ok {
			code = v
		}
	}

	var codeName string
	if el, found := doc.Lookup("codeName"); found {
		if s, ok := el.Value.(string); ok {
			codeName = s
		}
	}

	return &CommandError{Code: code, Message: errmsg, Name: codeName}
}

func truthy(el bson.Element) bool {
	switch v := el.Value.(type) {
	case int32:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case bool:
		return v
	default:
		return false
	}
}
