package internal

import (
	"time"

	"github.com/10gen/mongo-go-driver/bson"
)

// IsMasterResult is the decoded response to an "ismaster" command,
// used by the server monitor to classify a node and by connections to
// learn the wire protocol limits they must respect.
type IsMasterResult struct {
	Arbiters            []string
	ArbiterOnly         bool
	ElectionID          bson.ObjectID
	Hidden              bool
	Hosts               []string
	IsMaster            bool
	IsReplicaSet        bool
	LastWriteTimestamp  time.Time
	MaxBSONObjectSize   uint32
	MaxMessageSizeBytes uint32
	MaxWriteBatchSize   uint16
	Me                  string
	MaxWireVersion      int32
	MinWireVersion      int32
	Msg                 string
	OK                  int32
	Passives            []string
	ReadOnly            bool
	Secondary           bool
	SetName             string
	SetVersion          uint32
	Tags                map[string]string
}

// IsMasterResultFromDocument builds an IsMasterResult from a raw
// command response document, defaulting any missing or mistyped field
// to its zero value rather than failing outright: servers across
// versions and deployment types omit fields liberally.
func IsMasterResultFromDocument(doc *bson.Document) IsMasterResult {
	var r IsMasterResult

	r.Arbiters = stringSlice(doc, "arbiters")
	r.ArbiterOnly = boolField(doc, "arbiterOnly")
	r.ElectionID = objectIDField(doc, "electionId")
	r.Hidden = boolField(doc, "hidden")
	r.Hosts = stringSlice(doc, "hosts")
	r.IsMaster = boolField(doc, "ismaster")
	r.IsReplicaSet = boolField(doc, "isreplicaset")
	r.LastWriteTimestamp = timeField(doc, "lastWriteDate")
	r.MaxBSONObjectSize = uint32Field(doc, "maxBsonObjectSize")
	r.MaxMessageSizeBytes = uint32Field(doc, "maxMessageSizeBytes")
	r.MaxWriteBatchSize = uint16Field(doc, "maxWriteBatchSize")
	r.Me = stringField(doc, "me")
	r.MaxWireVersion = int32Field(doc, "maxWireVersion")
	r.MinWireVersion = int32Field(doc, "minWireVersion")
	r.Msg = stringField(doc, "msg")
	r.OK = int32Field(doc, "ok")
	r.Passives = stringSlice(doc, "passives")
	r.ReadOnly = boolField(doc, "readOnly")
	r.Secondary = boolField(doc, "secondary")
	r.SetName = stringField(doc, "setName")
	r.SetVersion = uint32Field(doc, "setVersion")
	r.Tags = stringMapField(doc, "tags")

	return r
}

func stringField(doc *bson.Document, name string) string {
	el, ok := doc.Lookup(name)
	if !ok {
		return ""
	}
	s, _ := el.Value.(string)
	return s
}

func boolField(doc *bson.Document, name string) bool {
	el, ok := doc.Lookup(name)
	if !ok {
		return false
	}
	b, _ := el.Value.(bool)
	return b
}

func int32Field(doc *bson.Document, name string) int32 {
	el, ok := doc.Lookup(name)
	if !ok {
		return 0
	}
	switch v := el.Value.(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	case float64:
		return int32(v)
	default:
		return 0
	}
}

func uint32Field(doc *bson.Document, name string) uint32 {
	return uint32(int32Field(doc, name))
}

func uint16Field(doc *bson.Document, name string) uint16 {
	return uint16(int32Field(doc, name))
}

func objectIDField(doc *bson.Document, name string) bson.ObjectID {
	el, ok := doc.Lookup(name)
	if !ok {
		return bson.NilObjectID
	}
	id, _ := el.Value.(bson.ObjectID)
	return id
}

func timeField(doc *bson.Document, name string) time.Time {
	el, ok := doc.Lookup(name)
	if !ok {
		return time.Time{}
	}
	t, _ := el.Value.(time.Time)
	return t
}

func stringSlice(doc *bson.Document, name string) []string {
	el, ok := doc.Lookup(name)
	if !ok {
		return nil
	}
	arr, ok := el.Value.(*bson.Document)
	if !ok {
		return nil
	}

	elems := arr.Elements()
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		if s, ok := e.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func stringMapField(doc *bson.Document, name string) map[string]string {
	el, ok := doc.Lookup(name)
	if !ok {
		return nil
	}
	sub, ok := el.Value.(*bson.Document)
	if !ok {
		return nil
	}

	elems := sub.Elements()
	out := make(map[string]string, len(elems))
	for _, e := range elems {
		if s, ok := e.Value.(string); ok {
			out[e.Name] = s
		}
	}
	return out
}
