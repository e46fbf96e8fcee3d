package bson

import (
	"encoding/binary"
	"math"
	"time"
)

// EncodeBuffered writes d to a growable byte buffer and back-patches each
// document's and subdocument's length prefix once its extent is known.
// This is the default write path: once the caller reuses the returned
// buffer's backing array across calls, it outperforms the size-visitor
// path (EncodeSized) by avoiding a separate size-computation walk.
func EncodeBuffered(d *Document) []byte {
	buf := make([]byte, 0, 256)
	buf = appendDocument(buf, d)
	return buf
}

// AppendBuffered appends the buffered encoding of d to buf, growing it as
// needed, and returns the extended slice. Reusing buf across calls is the
// intended way to avoid repeated allocation on the buffered path.
func AppendBuffered(buf []byte, d *Document) []byte {
	return appendDocument(buf, d)
}

// EncodeSized computes the exact encoded size of d first, allocates a
// single buffer of that size, and writes directly into it with no
// back-patching. Prefer this path when the buffer cannot be reused
// between calls (e.g. handing it straight to a one-shot network write).
func EncodeSized(d *Document) []byte {
	buf := make([]byte, 0, sizeOfDocument(d))
	return appendDocument(buf, d)
}

// sizeOfDocument computes the exact encoded length of d without writing
// any bytes, the size-visitor half of the size-visitor write path.
func sizeOfDocument(d *Document) int {
	size := 4 // length prefix
	for _, e := range d.Elements() {
		size += 1 // type tag
		size += len(e.Name) + 1
		size += sizeOfValue(e.Kind, e.Value)
	}
	size++ // trailing zero byte
	return size
}

func sizeOfValue(k Kind, v interface{}) int {
	switch k {
	case KindDouble:
		return 8
	case KindString, KindJavaScript, KindSymbol:
		return 4 + len(v.(string)) + 1
	case KindDocument, KindArray:
		return sizeOfDocument(v.(*Document))
	case KindBinary:
		return 4 + 1 + len(v.(Binary).Data)
	case KindUndefined, KindNull, KindMinKey, KindMaxKey:
		return 0
	case KindObjectID:
		return 12
	case KindBoolean:
		return 1
	case KindDateTime:
		return 8
	case KindRegex:
		r := v.(Regex)
		return len(r.Pattern) + 1 + len(r.Options) + 1
	case KindDBPointer:
		return 4 + len(v.(DBPointer).Namespace) + 1 + 12
	case KindCodeWithScope:
		cs := v.(CodeWithScope)
		return 4 + 4 + len(cs.Code) + 1 + sizeOfDocument(cs.Scope)
	case KindInt32:
		return 4
	case KindTimestamp:
		return 8
	case KindInt64:
		return 8
	default:
		return 0
	}
}

func appendDocument(buf []byte, d *Document) []byte {
	start := len(buf)
	buf = appendInt32(buf, 0) // placeholder, patched below

	for _, e := range d.Elements() {
		buf = append(buf, byte(e.Kind))
		buf = appendCString(buf, e.Name)
		buf = appendValue(buf, e.Kind, e.Value)
	}
	buf = append(buf, 0)

	binary.LittleEndian.PutUint32(buf[start:start+4], uint32(len(buf)-start))
	return buf
}

func appendValue(buf []byte, k Kind, v interface{}) []byte {
	switch k {
	case KindDouble:
		return appendFloat64(buf, v.(float64))
	case KindString:
		return appendBSONString(buf, v.(string))
	case KindDocument, KindArray:
		return appendDocument(buf, v.(*Document))
	case KindBinary:
		b := v.(Binary)
		buf = appendInt32(buf, int32(len(b.Data)))
		buf = append(buf, byte(b.Subtype))
		return append(buf, b.Data...)
	case KindUndefined, KindNull, KindMinKey, KindMaxKey:
		return buf
	case KindObjectID:
		oid := v.(ObjectID)
		return append(buf, oid[:]...)
	case KindBoolean:
		if v.(bool) {
			return append(buf, 1)
		}
		return append(buf, 0)
	case KindDateTime:
		t := v.(time.Time)
		millis := t.UnixNano() / int64(time.Millisecond)
		return appendInt64(buf, millis)
	case KindRegex:
		r := v.(Regex)
		buf = appendCString(buf, r.Pattern)
		return appendCString(buf, r.Options)
	case KindDBPointer:
		p := v.(DBPointer)
		buf = appendBSONString(buf, p.Namespace)
		return append(buf, p.ID[:]...)
	case KindJavaScript, KindSymbol:
		return appendBSONString(buf, v.(string))
	case KindCodeWithScope:
		cs := v.(CodeWithScope)
		start := len(buf)
		buf = appendInt32(buf, 0)
		buf = appendBSONString(buf, cs.Code)
		buf = appendDocument(buf, cs.Scope)
		binary.LittleEndian.PutUint32(buf[start:start+4], uint32(len(buf)-start))
		return buf
	case KindInt32:
		return appendInt32(buf, v.(int32))
	case KindTimestamp:
		ts := v.(Timestamp)
		buf = appendUint32(buf, ts.Increment)
		return appendUint32(buf, ts.Seconds)
	case KindInt64:
		return appendInt64(buf, v.(int64))
	default:
		return buf
	}
}

func appendCString(buf []byte, s string) []byte {
	buf = append(buf, s...)
	return append(buf, 0)
}

func appendBSONString(buf []byte, s string) []byte {
	buf = appendInt32(buf, int32(len(s)+1))
	buf = append(buf, s...)
	return append(buf, 0)
}

func appendInt32(buf []byte, v int32) []byte {
	return appendUint32(buf, uint32(v))
}

func appendUint32(buf []byte, v uint32) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func appendInt64(buf []byte, v int64) []byte {
	uv := uint64(v)
	return append(buf,
		byte(uv), byte(uv>>8), byte(uv>>16), byte(uv>>24),
		byte(uv>>32), byte(uv>>40), byte(uv>>48), byte(uv>>56),
	)
}

func appendFloat64(buf []byte, f float64) []byte {
	return appendInt64(buf, int64(math.Float64bits(f)))
}
