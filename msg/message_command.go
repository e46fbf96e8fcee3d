package msg

import "github.com/10gen/mongo-go-driver/bson"

// NewCommand creates a Request that runs cmd as a command against the
// "db.$cmd" pseudo-collection, the standard way commands ride OP_QUERY.
func NewCommand(requestID int32, dbName string, slaveOK bool, cmd *bson.Document) Request {
	flags := QueryFlags(0)
	if slaveOK {
		flags |= SlaveOK
	}

	return &Query{
		ReqID:              requestID,
		Flags:              flags,
		FullCollectionName: dbName + ".$cmd",
		NumberToReturn:     -1,
		Query:              cmd,
	}
}
