package bson

import "time"

// Element is one named value inside a Document. The closed set of value
// shapes a well-formed Element.Value may hold is exactly the Kind enum in
// types.go; constructors below are the only supported way to build one so
// that Kind and Value can never disagree.
type Element struct {
	Name  string
	Kind  Kind
	Value interface{}
}

// EDouble builds a double element.
func EDouble(name string, v float64) Element { return Element{name, KindDouble, v} }

// EString builds a UTF-8 string element.
func EString(name string, v string) Element { return Element{name, KindString, v} }

// EDocument builds a subdocument element.
func EDocument(name string, v *Document) Element { return Element{name, KindDocument, v} }

// EArray builds an array element. Arrays are documents whose keys are the
// decimal indices "0", "1", ... — NewArray builds that shape for you.
func EArray(name string, v *Document) Element { return Element{name, KindArray, v} }

// EBinary builds a binary element with the given subtype.
func EBinary(name string, subtype BinarySubtype, data []byte) Element {
	return Element{name, KindBinary, Binary{Subtype: subtype, Data: data}}
}

// EUndefined builds a deprecated undefined element.
func EUndefined(name string) Element { return Element{name, KindUndefined, Undefined} }

// EObjectID builds an ObjectID element.
func EObjectID(name string, v ObjectID) Element { return Element{name, KindObjectID, v} }

// EBoolean builds a boolean element.
func EBoolean(name string, v bool) Element { return Element{name, KindBoolean, v} }

// EDateTime builds a UTC datetime element, truncated to millisecond
// precision on encode as the wire format requires.
func EDateTime(name string, v time.Time) Element { return Element{name, KindDateTime, v} }

// ENull builds a null element.
func ENull(name string) Element { return Element{name, KindNull, nil} }

// ERegex builds a regular-expression element.
func ERegex(name string, pattern, options string) Element {
	return Element{name, KindRegex, Regex{Pattern: pattern, Options: options}}
}

// EDBPointer builds a deprecated DBPointer element.
func EDBPointer(name, namespace string, id ObjectID) Element {
	return Element{name, KindDBPointer, DBPointer{Namespace: namespace, ID: id}}
}

// EJavaScript builds a JS-code element.
func EJavaScript(name, code string) Element { return Element{name, KindJavaScript, code} }

// ESymbol builds a deprecated symbol element.
func ESymbol(name, symbol string) Element { return Element{name, KindSymbol, symbol} }

// ECodeWithScope builds a JS-code-with-scope element.
func ECodeWithScope(name, code string, scope *Document) Element {
	return Element{name, KindCodeWithScope, CodeWithScope{Code: code, Scope: scope}}
}

// EInt32 builds a 32-bit integer element.
func EInt32(name string, v int32) Element { return Element{name, KindInt32, v} }

// ETimestamp builds an internal replication timestamp element.
func ETimestamp(name string, v Timestamp) Element { return Element{name, KindTimestamp, v} }

// EInt64 builds a 64-bit integer element.
func EInt64(name string, v int64) Element { return Element{name, KindInt64, v} }

// EMinKey builds a min-key element.
func EMinKey(name string) Element { return Element{name, KindMinKey, MinKey} }

// EMaxKey builds a max-key element.
func EMaxKey(name string) Element { return Element{name, KindMaxKey, MaxKey} }
