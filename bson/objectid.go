// Based on gopkg.in/mgo.v2/bson by Gustavo Niemeyer.
// See THIRD-PARTY-NOTICES for original license terms.

package bson

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"
)

// ErrInvalidHex indicates that a hex string cannot be converted to an
// ObjectID.
var ErrInvalidHex = errors.New("the provided hex string is not a valid ObjectID")

// ObjectID is the 12-byte BSON object identifier: a 4-byte big-endian
// seconds-since-epoch, a 3-byte machine identifier, a 2-byte process
// identifier, and a 3-byte big-endian counter that is monotonic within
// one process.
type ObjectID [12]byte

// NilObjectID is the zero value for ObjectID.
var NilObjectID ObjectID

var objectIDCounter = readRandomUint32()
var machineID = readMachineID()
var processID = uint16(os.Getpid())

// NewObjectID generates a new ObjectID using the current time.
func NewObjectID() ObjectID {
	return NewObjectIDFromTimestamp(time.Now())
}

// NewObjectIDFromTimestamp generates a new ObjectID with the given time as
// its seconds-since-epoch component. Generation is unique per process
// without contention beyond one atomic counter.
func NewObjectIDFromTimestamp(timestamp time.Time) ObjectID {
	var b [12]byte

	binary.BigEndian.PutUint32(b[0:4], uint32(timestamp.Unix()))
	b[4], b[5], b[6] = machineID[0], machineID[1], machineID[2]
	binary.BigEndian.PutUint16(b[7:9], processID)
	putUint24(b[9:12], atomic.AddUint32(&objectIDCounter, 1))

	return b
}

// Timestamp extracts the time component of the ObjectID.
func (id ObjectID) Timestamp() time.Time {
	unixSecs := binary.BigEndian.Uint32(id[0:4])
	return time.Unix(int64(unixSecs), 0).UTC()
}

// Hex returns the hex encoding of the ObjectID.
func (id ObjectID) Hex() string {
	return hex.EncodeToString(id[:])
}

func (id ObjectID) String() string {
	return `ObjectID("` + id.Hex() + `")`
}

// IsZero reports whether id is the empty ObjectID.
func (id ObjectID) IsZero() bool {
	return id == NilObjectID
}

// Compare returns -1, 0, or 1 if id is less than, equal to, or
// greater than other, ordering lexicographically by byte. Used to
// compare election ids when deciding which of two reported primaries
// is more recent.
func (id ObjectID) Compare(other ObjectID) int {
	return bytes.Compare(id[:], other[:])
}

// ObjectIDFromHex parses the hex encoding of an ObjectID.
func ObjectIDFromHex(s string) (ObjectID, error) {
	if len(s) != 24 {
		return NilObjectID, ErrInvalidHex
	}

	var oid [12]byte
	_, err := hex.Decode(oid[:], []byte(s))
	if err != nil {
		return NilObjectID, ErrInvalidHex
	}

	return oid, nil
}

func readMachineID() [3]byte {
	var b [3]byte
	hostname, err := os.Hostname()
	if err == nil && len(hostname) > 0 {
		sum := fnv24(hostname)
		b[0], b[1], b[2] = byte(sum>>16), byte(sum>>8), byte(sum)
		return b
	}
	var r [3]byte
	_, _ = io.ReadFull(rand.Reader, r[:])
	return r
}

func fnv24(s string) uint32 {
	const offset32 = 2166136261
	const prime32 = 16777619
	h := uint32(offset32)
	for i := 0; i < len(s); i++ {
		h *= prime32
		h ^= uint32(s[i])
	}
	return h
}

func readRandomUint32() uint32 {
	var b [4]byte
	_, err := io.ReadFull(rand.Reader, b[:])
	if err != nil {
		panic(fmt.Errorf("bson: cannot read from crypto/rand: %w", err))
	}
	return binary.BigEndian.Uint32(b[:])
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}
