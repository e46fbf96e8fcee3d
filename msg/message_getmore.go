package msg

// GetMore is an OP_GET_MORE request fetching the next batch from an
// open cursor. It carries no flags field on the wire.
type GetMore struct {
	ReqID              int32
	FullCollectionName string
	NumberToReturn     int32
	CursorID           int64
}

// RequestID gets the request id of the message.
func (m *GetMore) RequestID() int32 { return m.ReqID }
