package auth

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"

	"github.com/10gen/mongo-go-driver/bson"
	"github.com/10gen/mongo-go-driver/conn"
	"github.com/10gen/mongo-go-driver/msg"
)

const mongodbCR = "MONGODB-CR"

func newMongoDBCRAuthenticator(db, username, password string, props map[string]string) (Authenticator, error) {
	return &MongoDBCRAuthenticator{
		DB:       db,
		Username: username,
		Password: password,
	}, nil
}

// MongoDBCRAuthenticator uses the MONGODB-CR algorithm to authenticate a connection.
type MongoDBCRAuthenticator struct {
	DB       string
	Username string
	Password string
}

// Auth authenticates the connection.
func (a *MongoDBCRAuthenticator) Auth(ctx context.Context, c conn.Connection) error {
	db := a.DB
	if db == "" {
		db = defaultAuthDB
	}

	getNonceRequest := msg.NewCommand(
		msg.NextRequestID(),
		db,
		true,
		bson.NewDocument(bson.EInt32("getnonce", 1)),
	)

	result, err := conn.ExecuteCommand(ctx, c, getNonceRequest)
	if err != nil {
		return newError(err, mongodbCR)
	}

	var nonce string
	if el, ok := result.Lookup("nonce"); ok {
		if v, ok := el.Value.(string); ok {
			nonce = v
		}
	}

	authRequest := msg.NewCommand(
		msg.NextRequestID(),
		db,
		true,
		bson.NewDocument(
			bson.EInt32("authenticate", 1),
			bson.EString("user", a.Username),
			bson.EString("nonce", nonce),
			bson.EString("key", a.createKey(nonce)),
		),
	)

	if _, err := conn.ExecuteCommand(ctx, c, authRequest); err != nil {
		return newError(err, mongodbCR)
	}

	return nil
}

func (a *MongoDBCRAuthenticator) createKey(nonce string) string {
	h := md5.New()

	io.WriteString(h, nonce)
	io.WriteString(h, a.Username)
	io.WriteString(h, mongoPasswordDigest(a.Username, a.Password))
	return fmt.Sprintf("%x", h.Sum(nil))
}
