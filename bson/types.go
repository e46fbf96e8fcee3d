// Package bson implements the binary document format used on the wire by
// every message in package msg. A Document is a tagged-variant tree over
// the closed set of element kinds below; there is no reflection-based
// codec and no class hierarchy — encoding and decoding are plain
// functions that switch on Kind.
package bson

import "fmt"

// Kind identifies the wire type of an Element's value. The set is closed;
// it mirrors the BSON specification's type byte.
type Kind byte

// Element kinds, valued as their wire type byte.
const (
	KindDouble          Kind = 0x01
	KindString          Kind = 0x02
	KindDocument        Kind = 0x03
	KindArray           Kind = 0x04
	KindBinary          Kind = 0x05
	KindUndefined       Kind = 0x06 // deprecated
	KindObjectID        Kind = 0x07
	KindBoolean         Kind = 0x08
	KindDateTime        Kind = 0x09
	KindNull            Kind = 0x0A
	KindRegex           Kind = 0x0B
	KindDBPointer       Kind = 0x0C // deprecated
	KindJavaScript      Kind = 0x0D
	KindSymbol          Kind = 0x0E // deprecated
	KindCodeWithScope   Kind = 0x0F
	KindInt32           Kind = 0x10
	KindTimestamp       Kind = 0x11
	KindInt64           Kind = 0x12
	KindMinKey          Kind = 0xFF
	KindMaxKey          Kind = 0x7F
)

func (k Kind) String() string {
	switch k {
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindDocument:
		return "document"
	case KindArray:
		return "array"
	case KindBinary:
		return "binary"
	case KindUndefined:
		return "undefined"
	case KindObjectID:
		return "objectId"
	case KindBoolean:
		return "bool"
	case KindDateTime:
		return "date"
	case KindNull:
		return "null"
	case KindRegex:
		return "regex"
	case KindDBPointer:
		return "dbPointer"
	case KindJavaScript:
		return "javascript"
	case KindSymbol:
		return "symbol"
	case KindCodeWithScope:
		return "javascriptWithScope"
	case KindInt32:
		return "int"
	case KindTimestamp:
		return "timestamp"
	case KindInt64:
		return "long"
	case KindMinKey:
		return "minKey"
	case KindMaxKey:
		return "maxKey"
	default:
		return fmt.Sprintf("Kind(%#x)", byte(k))
	}
}

// BinarySubtype is the subtype byte of a KindBinary element.
type BinarySubtype byte

// Binary subtypes in common use.
const (
	BinaryGeneric     BinarySubtype = 0x00
	BinaryFunction    BinarySubtype = 0x01
	BinaryOldGeneric  BinarySubtype = 0x02
	BinaryOldUUID     BinarySubtype = 0x03
	BinaryUUID        BinarySubtype = 0x04
	BinaryMD5         BinarySubtype = 0x05
	BinaryEncrypted   BinarySubtype = 0x06
	BinaryUserDefined BinarySubtype = 0x80
)

// Binary is the value of a KindBinary element.
type Binary struct {
	Subtype BinarySubtype
	Data    []byte
}

// Regex is the value of a KindRegex element.
type Regex struct {
	Pattern string
	Options string
}

// DBPointer is the value of a deprecated KindDBPointer element.
type DBPointer struct {
	Namespace string
	ID        ObjectID
}

// CodeWithScope is the value of a KindCodeWithScope element.
type CodeWithScope struct {
	Code  string
	Scope *Document
}

// Timestamp is the value of a KindTimestamp element: an internal MongoDB
// replication timestamp, not to be confused with KindDateTime.
type Timestamp struct {
	Increment uint32
	Seconds   uint32
}

// MinKey and MaxKey are the values of the KindMinKey/KindMaxKey elements,
// the BSON type comparable to (and less/greater than) all other types.
type minKeyType struct{}
type maxKeyType struct{}

var MinKey = minKeyType{}
var MaxKey = maxKeyType{}

// Undefined is the value of the deprecated KindUndefined element.
type undefinedType struct{}

var Undefined = undefinedType{}
