package bson

import (
	"encoding/binary"
	"math"
	"time"
)

// Decode reads one document from b, enforcing maxSize (pass
// DefaultMaxDocumentSize unless a smaller limit was configured) on the
// declared length prefix. It returns the document and the number of bytes
// consumed from b, so callers framing a stream of documents (as REPLY
// bodies do) can advance past exactly what was read.
//
// Duplicate keys in the byte stream decode without error; Document.Lookup
// exposes a first-wins view, matching the codec's testable law.
func Decode(b []byte, maxSize int32) (*Document, int, error) {
	if len(b) < 4 {
		return nil, 0, framingErrorf("truncated document: need 4 bytes for length prefix, have %d", len(b))
	}

	length := int32(binary.LittleEndian.Uint32(b[0:4]))
	if length < 5 {
		return nil, 0, framingErrorf("declared document length %d is smaller than the minimum of 5", length)
	}
	if maxSize > 0 && length > maxSize {
		return nil, 0, framingErrorf("declared document length %d exceeds maximum of %d", length, maxSize)
	}
	if int(length) > len(b) {
		return nil, 0, framingErrorf("truncated document: declared length %d, have %d bytes", length, len(b))
	}

	body := b[4:length]
	elements, err := decodeElements(body)
	if err != nil {
		return nil, 0, err
	}

	d := &Document{
		elements: elements,
		index:    make(map[string]int, len(elements)),
	}
	for i, e := range elements {
		if _, exists := d.index[e.Name]; !exists {
			d.index[e.Name] = i
		}
	}

	return d, int(length), nil
}

func decodeElements(body []byte) ([]Element, error) {
	var elements []Element
	pos := 0
	for {
		if pos >= len(body) {
			return nil, framingErrorf("document missing trailing zero byte")
		}
		if body[pos] == 0 {
			if pos != len(body)-1 {
				return nil, framingErrorf("unexpected trailing bytes after terminator")
			}
			break
		}

		kind := Kind(body[pos])
		pos++

		name, n, err := readCString(body[pos:])
		if err != nil {
			return nil, err
		}
		pos += n

		value, n, err := readValue(kind, body[pos:])
		if err != nil {
			return nil, err
		}
		pos += n

		elements = append(elements, Element{Name: name, Kind: kind, Value: value})
	}

	return elements, nil
}

func readCString(b []byte) (string, int, error) {
	for i, c := range b {
		if c == 0 {
			return string(b[:i]), i + 1, nil
		}
	}
	return "", 0, framingErrorf("unterminated cstring")
}

func readValue(k Kind, b []byte) (interface{}, int, error) {
	switch k {
	case KindDouble:
		f, n, err := readFloat64(b)
		return f, n, err
	case KindString:
		return readBSONString(b)
	case KindDocument, KindArray:
		doc, n, err := Decode(b, 0)
		return doc, n, err
	case KindBinary:
		return readBinary(b)
	case KindUndefined:
		return Undefined, 0, nil
	case KindObjectID:
		if len(b) < 12 {
			return nil, 0, framingErrorf("truncated objectId")
		}
		var oid ObjectID
		copy(oid[:], b[:12])
		return oid, 12, nil
	case KindBoolean:
		if len(b) < 1 {
			return nil, 0, framingErrorf("truncated bool")
		}
		return b[0] != 0, 1, nil
	case KindDateTime:
		millis, n, err := readInt64(b)
		if err != nil {
			return nil, 0, err
		}
		return time.UnixMilli(millis).UTC(), n, nil
	case KindNull:
		return nil, 0, nil
	case KindRegex:
		return readRegex(b)
	case KindDBPointer:
		return readDBPointer(b)
	case KindJavaScript:
		return readBSONString(b)
	case KindSymbol:
		return readBSONString(b)
	case KindCodeWithScope:
		return readCodeWithScope(b)
	case KindInt32:
		i, n, err := readInt32v(b)
		return i, n, err
	case KindTimestamp:
		if len(b) < 8 {
			return nil, 0, framingErrorf("truncated timestamp")
		}
		inc := binary.LittleEndian.Uint32(b[0:4])
		secs := binary.LittleEndian.Uint32(b[4:8])
		return Timestamp{Increment: inc, Seconds: secs}, 8, nil
	case KindInt64:
		i, n, err := readInt64(b)
		return i, n, err
	case KindMinKey:
		return MinKey, 0, nil
	case KindMaxKey:
		return MaxKey, 0, nil
	default:
		return nil, 0, framingErrorf("unknown element kind %#x", byte(k))
	}
}

func readFloat64(b []byte) (float64, int, error) {
	i, n, err := readInt64(b)
	if err != nil {
		return 0, 0, err
	}
	return math.Float64frombits(uint64(i)), n, nil
}

func readInt32v(b []byte) (int32, int, error) {
	if len(b) < 4 {
		return 0, 0, framingErrorf("truncated int32")
	}
	return int32(binary.LittleEndian.Uint32(b[:4])), 4, nil
}

func readInt64(b []byte) (int64, int, error) {
	if len(b) < 8 {
		return 0, 0, framingErrorf("truncated int64")
	}
	return int64(binary.LittleEndian.Uint64(b[:8])), 8, nil
}

func readBSONString(b []byte) (string, int, error) {
	length, n, err := readInt32v(b)
	if err != nil {
		return "", 0, err
	}
	if length < 1 {
		return "", 0, framingErrorf("invalid string length %d", length)
	}
	start := n
	end := start + int(length)
	if end > len(b) || b[end-1] != 0 {
		return "", 0, framingErrorf("truncated or unterminated string")
	}
	return string(b[start : end-1]), end, nil
}

func readBinary(b []byte) (Binary, int, error) {
	length, n, err := readInt32v(b)
	if err != nil {
		return Binary{}, 0, err
	}
	if length < 0 {
		return Binary{}, 0, framingErrorf("invalid binary length %d", length)
	}
	pos := n
	if pos >= len(b) {
		return Binary{}, 0, framingErrorf("truncated binary subtype")
	}
	subtype := BinarySubtype(b[pos])
	pos++
	end := pos + int(length)
	if end > len(b) {
		return Binary{}, 0, framingErrorf("truncated binary data")
	}
	data := make([]byte, length)
	copy(data, b[pos:end])
	return Binary{Subtype: subtype, Data: data}, end, nil
}

func readRegex(b []byte) (Regex, int, error) {
	pattern, n1, err := readCString(b)
	if err != nil {
		return Regex{}, 0, err
	}
	options, n2, err := readCString(b[n1:])
	if err != nil {
		return Regex{}, 0, err
	}
	return Regex{Pattern: pattern, Options: options}, n1 + n2, nil
}

func readDBPointer(b []byte) (DBPointer, int, error) {
	ns, n, err := readBSONString(b)
	if err != nil {
		return DBPointer{}, 0, err
	}
	if len(b) < n+12 {
		return DBPointer{}, 0, framingErrorf("truncated dbPointer id")
	}
	var oid ObjectID
	copy(oid[:], b[n:n+12])
	return DBPointer{Namespace: ns, ID: oid}, n + 12, nil
}

func readCodeWithScope(b []byte) (CodeWithScope, int, error) {
	total, n, err := readInt32v(b)
	if err != nil {
		return CodeWithScope{}, 0, err
	}
	if int(total) > len(b) {
		return CodeWithScope{}, 0, framingErrorf("truncated javascriptWithScope")
	}
	code, cn, err := readBSONString(b[n:])
	if err != nil {
		return CodeWithScope{}, 0, err
	}
	scope, sn, err := Decode(b[n+cn:int(total)], 0)
	if err != nil {
		return CodeWithScope{}, 0, err
	}
	if n+cn+sn != int(total) {
		return CodeWithScope{}, 0, framingErrorf("javascriptWithScope length mismatch")
	}
	return CodeWithScope{Code: code, Scope: scope}, int(total), nil
}
