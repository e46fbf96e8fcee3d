package msg

import "github.com/10gen/mongo-go-driver/bson"

// Insert is an OP_INSERT request carrying one or more documents.
type Insert struct {
	ReqID              int32
	Flags              InsertFlags
	FullCollectionName string
	Documents          []*bson.Document
}

// RequestID gets the request id of the message.
func (m *Insert) RequestID() int32 { return m.ReqID }

// InsertFlags are the bits of the OP_INSERT flags field.
type InsertFlags int32

// InsertFlags constants.
const (
	ContinueOnError InsertFlags = 1 << iota
)
