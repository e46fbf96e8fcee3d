package bson

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	scope := NewDocument(EInt32("x", 1))
	oid := NewObjectID()
	now := time.Now().UTC().Truncate(time.Millisecond)

	doc := NewDocument(
		EDouble("d", 3.25),
		EString("s", "hello"),
		EDocument("sub", NewDocument(EString("inner", "v"))),
		EArray("arr", NewArray(EInt32("", 1), EInt32("", 2), EInt32("", 3))),
		EBinary("bin", BinaryGeneric, []byte{1, 2, 3}),
		EUndefined("undef"),
		EObjectID("oid", oid),
		EBoolean("b", true),
		EDateTime("dt", now),
		ENull("n"),
		ERegex("re", "^a.*z$", "i"),
		EDBPointer("ptr", "db.coll", oid),
		EJavaScript("js", "function() {}"),
		ESymbol("sym", "legacy"),
		ECodeWithScope("cws", "function() {}", scope),
		EInt32("i32", -7),
		ETimestamp("ts", Timestamp{Increment: 1, Seconds: 2}),
		EInt64("i64", 1<<40),
		EMinKey("min"),
		EMaxKey("max"),
	)

	for _, encode := range []func(*Document) []byte{EncodeBuffered, EncodeSized} {
		b := encode(doc)
		decoded, n, err := Decode(b, DefaultMaxDocumentSize)
		require.NoError(t, err)
		require.Equal(t, len(b), n)
		require.True(t, Equal(doc, decoded))
	}
}

func TestEncodeDateTimeTruncatesToMillis(t *testing.T) {
	withNanos := time.Date(2024, 1, 2, 3, 4, 5, 123456789, time.UTC)
	doc := NewDocument(EDateTime("dt", withNanos))

	b := EncodeBuffered(doc)
	decoded, _, err := Decode(b, DefaultMaxDocumentSize)
	require.NoError(t, err)

	el, ok := decoded.Lookup("dt")
	require.True(t, ok)
	got := el.Value.(time.Time)
	require.Equal(t, withNanos.UnixMilli(), got.UnixMilli())
}

func TestDecodeRejectsOversizedDocument(t *testing.T) {
	doc := NewDocument(EString("s", "this document is perfectly well formed"))
	b := EncodeBuffered(doc)

	_, _, err := Decode(b, 4)
	require.Error(t, err)
	require.IsType(t, &FramingError{}, err)
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	doc := NewDocument(EString("s", "hello"))
	b := EncodeBuffered(doc)

	_, _, err := Decode(b[:len(b)-3], DefaultMaxDocumentSize)
	require.Error(t, err)
}

func TestDecodeDuplicateKeysFirstWins(t *testing.T) {
	buf := make([]byte, 0, 64)
	start := len(buf)
	buf = appendInt32(buf, 0)
	buf = append(buf, byte(KindInt32))
	buf = appendCString(buf, "k")
	buf = appendInt32(buf, 1)
	buf = append(buf, byte(KindInt32))
	buf = appendCString(buf, "k")
	buf = appendInt32(buf, 2)
	buf = append(buf, 0)
	putLength(buf, start)

	decoded, _, err := Decode(buf, DefaultMaxDocumentSize)
	require.NoError(t, err)
	require.Equal(t, 2, decoded.Len())

	el, ok := decoded.Lookup("k")
	require.True(t, ok)
	require.Equal(t, int32(1), el.Value)
}

func putLength(buf []byte, start int) {
	length := uint32(len(buf) - start)
	buf[start] = byte(length)
	buf[start+1] = byte(length >> 8)
	buf[start+2] = byte(length >> 16)
	buf[start+3] = byte(length >> 24)
}

func TestBuilderPanicsOnDuplicateKey(t *testing.T) {
	require.Panics(t, func() {
		NewDocument(EInt32("a", 1), EInt32("a", 2))
	})

	require.Panics(t, func() {
		NewBuilder().Append(EInt32("a", 1)).Append(EInt32("a", 2))
	})
}

func TestNewArrayUsesDecimalIndices(t *testing.T) {
	arr := NewArray(EString("", "zero"), EString("", "one"))
	require.Equal(t, "0", arr.ElementAt(0).Name)
	require.Equal(t, "1", arr.ElementAt(1).Name)
}
