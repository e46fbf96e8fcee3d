package auth

import (
	"context"

	"github.com/10gen/mongo-go-driver/conn"
	"github.com/xdg/scram"
	"github.com/xdg/stringprep"
)

// ScramSHA1 is the mechanism name for SCRAM-SHA-1.
const ScramSHA1 = "SCRAM-SHA-1"

func newScramSHA1Authenticator(db, username, password string, props map[string]string) (Authenticator, error) {
	passprep, err := stringprep.SASLprep.Prepare(password)
	if err != nil {
		return nil, newError(err, ScramSHA1)
	}

	client, err := scram.SHA1.NewClientUnprepped(username, passprep, "")
	if err != nil {
		return nil, newError(err, ScramSHA1)
	}
	client.WithMinIterations(4096)

	return &ScramSHA1Authenticator{
		DB:     db,
		client: client,
	}, nil
}

// ScramSHA1Authenticator uses the SCRAM-SHA-1 algorithm over SASL to authenticate a connection.
type ScramSHA1Authenticator struct {
	DB     string
	client *scram.Client
}

// Auth authenticates the connection.
func (a *ScramSHA1Authenticator) Auth(ctx context.Context, c conn.Connection) error {
	adapter := &scramSaslAdapter{conversation: a.client.NewConversation()}
	if err := conductSaslConversation(ctx, c, a.DB, adapter); err != nil {
		return newError(err, ScramSHA1)
	}
	return nil
}

type scramSaslAdapter struct {
	conversation *scram.ClientConversation
}

func (a *scramSaslAdapter) Start() (string, []byte, error) {
	step, err := a.conversation.Step("")
	if err != nil {
		return ScramSHA1, nil, err
	}
	return ScramSHA1, []byte(step), nil
}

func (a *scramSaslAdapter) Next(challenge []byte) ([]byte, error) {
	step, err := a.conversation.Step(string(challenge))
	if err != nil {
		return nil, err
	}
	return []byte(step), nil
}

func (a *scramSaslAdapter) Completed() bool {
	return a.conversation.Done()
}
