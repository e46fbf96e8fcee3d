package msg

import "github.com/10gen/mongo-go-driver/bson"

// Reply is an OP_REPLY response: zero or more BSON documents packed back
// to back, framed by their own length prefixes.
type Reply struct {
	ReqID          int32
	RespTo         int32
	ResponseFlags  ReplyFlags
	CursorID       int64
	StartingFrom   int32
	NumberReturned int32
	DocumentsBytes []byte
}

// ResponseTo gets the request id the message is in response to.
func (m *Reply) ResponseTo() int32 { return m.RespTo }

// ReplyFlags are the bits of the OP_REPLY response flags field.
type ReplyFlags int32

// ReplyFlags constants.
const (
	CursorNotFound ReplyFlags = 1 << iota
	QueryFailure
	ShardConfigStale
	AwaitCapable
)

// Iter returns a ReplyIter over the documents packed into the reply.
func (m *Reply) Iter() *ReplyIter {
	return &ReplyIter{documentsBytes: m.DocumentsBytes}
}

// ReplyIter iterates over the documents in a Reply, decoding each with
// the bson package's framing-aware Decode.
type ReplyIter struct {
	documentsBytes []byte
	pos            int
	err            error
}

// One reads a single document from the iterator.
func (i *ReplyIter) One() (*bson.Document, bool, error) {
	doc, ok := i.Next()
	if !ok {
		return nil, false, i.err
	}
	return doc, true, nil
}

// Next decodes the next document, or returns false at the end of the
// stream or on decode failure (check Err in the latter case).
func (i *ReplyIter) Next() (*bson.Document, bool) {
	if i.pos >= len(i.documentsBytes) {
		return nil, false
	}

	doc, n, err := bson.Decode(i.documentsBytes[i.pos:], bson.DefaultMaxDocumentSize)
	if err != nil {
		i.err = err
		return nil, false
	}

	i.pos += n
	return doc, true
}

// Err indicates whether the last document in the stream failed to decode.
func (i *ReplyIter) Err() error {
	return i.err
}
