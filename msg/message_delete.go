package msg

import "github.com/10gen/mongo-go-driver/bson"

// Delete is an OP_DELETE request.
type Delete struct {
	ReqID              int32
	FullCollectionName string
	Flags              DeleteFlags
	Selector           *bson.Document
}

// RequestID gets the request id of the message.
func (m *Delete) RequestID() int32 { return m.ReqID }

// DeleteFlags are the bits of the OP_DELETE flags field.
type DeleteFlags int32

// DeleteFlags constants.
const (
	SingleRemove DeleteFlags = 1 << iota
)
