package msg

// KillCursors is an OP_KILL_CURSORS request telling the server it can
// discard the listed cursor ids.
type KillCursors struct {
	ReqID     int32
	CursorIDs []int64
}

// RequestID gets the request id of the message.
func (m *KillCursors) RequestID() int32 { return m.ReqID }
