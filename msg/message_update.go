package msg

import "github.com/10gen/mongo-go-driver/bson"

// Update is an OP_UPDATE request.
type Update struct {
	ReqID              int32
	FullCollectionName string
	Flags              UpdateFlags
	Selector           *bson.Document
	Update             *bson.Document
}

// RequestID gets the request id of the message.
func (m *Update) RequestID() int32 { return m.ReqID }

// UpdateFlags are the bits of the OP_UPDATE flags field.
type UpdateFlags int32

// UpdateFlags constants.
const (
	Upsert UpdateFlags = 1 << iota
	MultiUpdate
)
