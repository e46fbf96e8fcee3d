package auth

import (
	"context"

	"github.com/10gen/mongo-go-driver/bson"
	"github.com/10gen/mongo-go-driver/conn"
	"github.com/10gen/mongo-go-driver/internal"
	"github.com/10gen/mongo-go-driver/msg"
)

type saslClient interface {
	Start() (string, []byte, error)
	Next(challenge []byte) ([]byte, error)
	Completed() bool
}

type saslClientCloser interface {
	Close()
}

type saslResponse struct {
	conversationID int32
	code           int32
	done           bool
	payload        []byte
}

func saslResponseFromDocument(doc *bson.Document) saslResponse {
	var r saslResponse
	if el, ok := doc.Lookup("conversationId"); ok {
		if v, ok := el.Value.(int32); ok {
			r.conversationID = v
		}
	}
	if el, ok := doc.Lookup("code"); ok {
		if v, ok := el.Value.(int32); ok {
			r.code = v
		}
	}
	if el, ok := doc.Lookup("done"); ok {
		if v, ok := el.Value.(bool); ok {
			r.done = v
		}
	}
	if el, ok := doc.Lookup("payload"); ok {
		if bin, ok := el.Value.(bson.Binary); ok {
			r.payload = bin.Data
		}
	}
	return r
}

func conductSaslConversation(ctx context.Context, c conn.Connection, db string, client saslClient) error {
	if db == "" {
		db = defaultAuthDB
	}

	if closer, ok := client.(saslClientCloser); ok {
		defer closer.Close()
	}

	mech, payload, err := client.Start()
	if err != nil {
		return newError(err, mech)
	}

	saslStartRequest := msg.NewCommand(
		msg.NextRequestID(),
		db,
		true,
		bson.NewDocument(
			bson.EInt32("saslStart", 1),
			bson.EString("mechanism", mech),
			bson.EBinary("payload", bson.BinaryGeneric, payload),
		),
	)

	doc, err := conn.ExecuteCommand(ctx, c, saslStartRequest)
	if err != nil {
		return newError(err, mech)
	}
	saslResp := saslResponseFromDocument(doc)
	cid := saslResp.conversationID

	for {
		if saslResp.code != 0 {
			return newError(internal.NewErrorf(internal.KindQueryFailure, "server returned non-zero sasl code %d", saslResp.code), mech)
		}

		if saslResp.done && client.Completed() {
			return nil
		}

		payload, err = client.Next(saslResp.payload)
		if err != nil {
			return newError(err, mech)
		}

		if saslResp.done && client.Completed() {
			return nil
		}

		saslContinueRequest := msg.NewCommand(
			msg.NextRequestID(),
			db,
			true,
			bson.NewDocument(
				bson.EInt32("saslContinue", 1),
				bson.EInt32("conversationId", cid),
				bson.EBinary("payload", bson.BinaryGeneric, payload),
			),
		)

		doc, err = conn.ExecuteCommand(ctx, c, saslContinueRequest)
		if err != nil {
			return newError(err, mech)
		}
		saslResp = saslResponseFromDocument(doc)
	}
}
