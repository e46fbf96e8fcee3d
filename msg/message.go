// Package msg implements the on-the-wire message bodies for each opcode
// the driver speaks (OP_QUERY, OP_REPLY, OP_UPDATE, OP_INSERT,
// OP_GET_MORE, OP_DELETE, OP_KILL_CURSORS) and the codec that frames
// them with the 16-byte standard message header.
package msg

import "sync/atomic"

var globalRequestID int32

// CurrentRequestID gets the current request id without incrementing it.
func CurrentRequestID() int32 {
	return atomic.LoadInt32(&globalRequestID)
}

// NextRequestID gets the next request id.
func NextRequestID() int32 {
	return atomic.AddInt32(&globalRequestID, 1)
}

// opcode is the wire protocol operation code carried in every message
// header.
type opcode uint32

// The opcodes this driver sends or receives.
const (
	replyOpcode       opcode = 1
	updateOpcode      opcode = 2001
	insertOpcode      opcode = 2002
	queryOpcode       opcode = 2004
	getMoreOpcode     opcode = 2005
	deleteOpcode      opcode = 2006
	killCursorsOpcode opcode = 2007
)

// Message represents a MongoDB wire protocol message.
type Message interface {
	msg()
}

// Request is a message sent to the server.
type Request interface {
	Message
	RequestID() int32
}

// Response is a message received from the server.
type Response interface {
	Message
	ResponseTo() int32
}

func (m *Query) msg()       {}
func (m *Reply) msg()       {}
func (m *Update) msg()      {}
func (m *Insert) msg()      {}
func (m *GetMore) msg()     {}
func (m *Delete) msg()      {}
func (m *KillCursors) msg() {}
