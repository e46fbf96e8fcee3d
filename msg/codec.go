package msg

import (
	"encoding/binary"
	"io"

	"github.com/10gen/mongo-go-driver/bson"
	"github.com/10gen/mongo-go-driver/internal"
)

const defaultEncodeBufferSize = 256

// headerLen is the size in bytes of the standard message header:
// length, requestID, responseTo, opCode, each a little-endian int32.
const headerLen = 16

// Encoder encodes messages.
type Encoder interface {
	Encode(io.Writer, ...Message) error
}

// Decoder decodes messages.
type Decoder interface {
	Decode(io.Reader) (Message, error)
}

// Codec encodes and decodes messages.
type Codec interface {
	Encoder
	Decoder
}

// NewWireProtocolCodec creates a Codec for the standard MongoDB wire
// protocol message framing.
func NewWireProtocolCodec() Codec {
	return &wireProtocolCodec{lengthBytes: make([]byte, 4)}
}

type wireProtocolCodec struct {
	lengthBytes []byte
}

func (c *wireProtocolCodec) Decode(reader io.Reader) (Message, error) {
	_, err := io.ReadFull(reader, c.lengthBytes)
	if err != nil {
		return nil, internal.WrapAsf(internal.KindConnectionLost, err, "unable to decode message length")
	}

	length := int32(binary.LittleEndian.Uint32(c.lengthBytes))
	if length < headerLen {
		return nil, internal.NewErrorf(internal.KindFraming, "declared message length %d is smaller than the header", length)
	}

	b := make([]byte, length)
	copy(b, c.lengthBytes)

	_, err = io.ReadFull(reader, b[4:])
	if err != nil {
		return nil, internal.WrapAsf(internal.KindConnectionLost, err, "unable to decode message body")
	}

	return decodeMessage(b)
}

func (c *wireProtocolCodec) Encode(writer io.Writer, msgs ...Message) error {
	b := make([]byte, 0, defaultEncodeBufferSize)

	for _, m := range msgs {
		var err error
		b, err = appendMessage(b, m)
		if err != nil {
			return internal.WrapErrorf(err, "unable to encode message")
		}
	}

	if _, err := writer.Write(b); err != nil {
		return internal.WrapAsf(internal.KindConnectionLost, err, "unable to write encoded messages")
	}
	return nil
}

func appendMessage(b []byte, m Message) ([]byte, error) {
	start := len(b)

	switch typed := m.(type) {
	case *Query:
		b = appendHeader(b, typed.ReqID, 0, queryOpcode)
		b = appendInt32(b, int32(typed.Flags))
		b = appendCString(b, typed.FullCollectionName)
		b = appendInt32(b, typed.NumberToSkip)
		b = appendInt32(b, typed.NumberToReturn)
		b = appendDocumentOrEmpty(b, typed.Query)
		if typed.ReturnFieldsSelector != nil {
			b = bson.AppendBuffered(b, typed.ReturnFieldsSelector)
		}
	case *Reply:
		b = appendHeader(b, typed.ReqID, typed.RespTo, replyOpcode)
		b = appendInt32(b, int32(typed.ResponseFlags))
		b = appendInt64(b, typed.CursorID)
		b = appendInt32(b, typed.StartingFrom)
		b = appendInt32(b, typed.NumberReturned)
		b = append(b, typed.DocumentsBytes...)
	case *Update:
		b = appendHeader(b, typed.ReqID, 0, updateOpcode)
		b = appendInt32(b, 0) // reserved
		b = appendCString(b, typed.FullCollectionName)
		b = appendInt32(b, int32(typed.Flags))
		b = appendDocumentOrEmpty(b, typed.Selector)
		b = appendDocumentOrEmpty(b, typed.Update)
	case *Insert:
		b = appendHeader(b, typed.ReqID, 0, insertOpcode)
		b = appendInt32(b, int32(typed.Flags))
		b = appendCString(b, typed.FullCollectionName)
		for _, doc := range typed.Documents {
			b = bson.AppendBuffered(b, doc)
		}
	case *GetMore:
		b = appendHeader(b, typed.ReqID, 0, getMoreOpcode)
		b = appendInt32(b, 0) // reserved
		b = appendCString(b, typed.FullCollectionName)
		b = appendInt32(b, typed.NumberToReturn)
		b = appendInt64(b, typed.CursorID)
	case *Delete:
		b = appendHeader(b, typed.ReqID, 0, deleteOpcode)
		b = appendInt32(b, 0) // reserved
		b = appendCString(b, typed.FullCollectionName)
		b = appendInt32(b, int32(typed.Flags))
		b = appendDocumentOrEmpty(b, typed.Selector)
	case *KillCursors:
		b = appendHeader(b, typed.ReqID, 0, killCursorsOpcode)
		b = appendInt32(b, 0) // reserved
		b = appendInt32(b, int32(len(typed.CursorIDs)))
		for _, id := range typed.CursorIDs {
			b = appendInt64(b, id)
		}
	default:
		return b, internal.NewErrorf(internal.KindFraming, "unsupported message type %T", m)
	}

	binary.LittleEndian.PutUint32(b[start:start+4], uint32(len(b)-start))
	return b, nil
}

func appendDocumentOrEmpty(b []byte, d *bson.Document) []byte {
	if d == nil {
		d = bson.NewDocument()
	}
	return bson.AppendBuffered(b, d)
}

func decodeMessage(b []byte) (Message, error) {
	requestID := int32(binary.LittleEndian.Uint32(b[4:8]))
	responseTo := int32(binary.LittleEndian.Uint32(b[8:12]))
	op := opcode(binary.LittleEndian.Uint32(b[12:16]))

	switch op {
	case replyOpcode:
		if len(b) < 36 {
			return nil, internal.NewErrorf(internal.KindFraming, "OP_REPLY body shorter than the fixed fields require")
		}
		return &Reply{
			ReqID:          requestID,
			RespTo:         responseTo,
			ResponseFlags:  ReplyFlags(int32(binary.LittleEndian.Uint32(b[16:20]))),
			CursorID:       int64(binary.LittleEndian.Uint64(b[20:28])),
			StartingFrom:   int32(binary.LittleEndian.Uint32(b[28:32])),
			NumberReturned: int32(binary.LittleEndian.Uint32(b[32:36])),
			DocumentsBytes: b[36:],
		}, nil
	default:
		return nil, internal.NewErrorf(internal.KindFraming, "opcode %d not implemented", op)
	}
}

func appendCString(b []byte, s string) []byte {
	b = append(b, s...)
	return append(b, 0)
}

func appendInt32(b []byte, v int32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func appendInt64(b []byte, v int64) []byte {
	uv := uint64(v)
	return append(b,
		byte(uv), byte(uv>>8), byte(uv>>16), byte(uv>>24),
		byte(uv>>32), byte(uv>>40), byte(uv>>48), byte(uv>>56),
	)
}

func appendHeader(b []byte, requestID, responseTo int32, op opcode) []byte {
	b = appendInt32(b, 0) // length placeholder, patched by the caller
	b = appendInt32(b, requestID)
	b = appendInt32(b, responseTo)
	return appendInt32(b, int32(op))
}
