package msg

import "github.com/10gen/mongo-go-driver/bson"

// Query is an OP_QUERY request: a command or a find, addressed to one
// namespace ("db.collection", or "db.$cmd" for a command).
type Query struct {
	ReqID                int32
	Flags                QueryFlags
	FullCollectionName   string
	NumberToSkip         int32
	NumberToReturn       int32
	Query                *bson.Document
	ReturnFieldsSelector *bson.Document
}

// RequestID gets the request id of the message.
func (m *Query) RequestID() int32 { return m.ReqID }

// QueryFlags are the bits of the OP_QUERY flags field.
type QueryFlags int32

// QueryFlags constants, in bit order starting at bit 1 (bit 0 is
// reserved and always zero).
const (
	_ QueryFlags = 1 << iota
	TailableCursor
	SlaveOK
	OplogReplay
	NoCursorTimeout
	AwaitData
	Exhaust
	Partial
)
