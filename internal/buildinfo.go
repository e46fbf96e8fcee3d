package internal

import "github.com/10gen/mongo-go-driver/bson"

// BuildInfoResult is the decoded response to a "buildInfo" command.
type BuildInfoResult struct {
	OK           bool
	GitVersion   string
	Version      string
	VersionArray []uint8
}

// IsZero reports whether the result is the zero value, which happens
// when buildInfo could not be run (older mongos/proxy configurations
// sometimes reject it).
func (bi BuildInfoResult) IsZero() bool {
	return !bi.OK && bi.GitVersion == "" && bi.Version == "" && bi.VersionArray == nil
}

// BuildInfoResultFromDocument builds a BuildInfoResult from a raw
// command response document.
func BuildInfoResultFromDocument(doc *bson.Document) BuildInfoResult {
	var r BuildInfoResult

	r.OK = truthyField(doc, "ok")
	r.GitVersion = stringField(doc, "gitVersion")
	r.Version = stringField(doc, "version")
	r.VersionArray = byteSlice(doc, "versionArray")

	return r
}

func truthyField(doc *bson.Document, name string) bool {
	el, ok := doc.Lookup(name)
	if !ok {
		return false
	}
	switch v := el.Value.(type) {
	case bool:
		return v
	case int32:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		return false
	}
}

func byteSlice(doc *bson.Document, name string) []uint8 {
	el, ok := doc.Lookup(name)
	if !ok {
		return nil
	}
	arr, ok := el.Value.(*bson.Document)
	if !ok {
		return nil
	}

	elems := arr.Elements()
	out := make([]uint8, 0, len(elems))
	for _, e := range elems {
		switch v := e.Value.(type) {
		case int32:
			out = append(out, uint8(v))
		case int64:
			out = append(out, uint8(v))
		}
	}
	return out
}
