package internal

import "github.com/10gen/mongo-go-driver/bson"

// GetLastErrorResult is the decoded response to a "getLastError"
// command, used only to recover the server-assigned connection id for
// correlating client and server logs.
type GetLastErrorResult struct {
	ConnectionID uint32
}

// GetLastErrorResultFromDocument builds a GetLastErrorResult from a
// raw command response document.
func GetLastErrorResultFromDocument(doc *bson.Document) GetLastErrorResult {
	return GetLastErrorResult{ConnectionID: uint32Field(doc, "connectionId")}
}
