package ops

import (
	"github.com/10gen/mongo-go-driver/bson"
	"github.com/10gen/mongo-go-driver/readpref"
	"github.com/10gen/mongo-go-driver/server"
)

func slaveOk(rp *readpref.ReadPref) bool {
	if rp == nil {
		// assume primary
		return false
	}

	return rp.Mode() != readpref.PrimaryMode
}

func readPrefMeta(rp *readpref.ReadPref, serverType server.Type) *bson.Document {
	if serverType != server.Mongos || rp == nil {
		return nil
	}

	// simple Primary or SecondaryPreferred is communicated via slaveOk to Mongos.
	if rp.Mode() == readpref.PrimaryMode || rp.Mode() == readpref.SecondaryPreferredMode {
		if _, ok := rp.MaxStaleness(); !ok && len(rp.TagSets()) == 0 {
			return nil
		}
	}

	b := bson.NewBuilder()

	switch rp.Mode() {
	case readpref.PrimaryMode:
		b.Append(bson.EString("mode", "primary"))
	case readpref.PrimaryPreferredMode:
		b.Append(bson.EString("mode", "primaryPreferred"))
	case readpref.SecondaryPreferredMode:
		b.Append(bson.EString("mode", "secondaryPreferred"))
	case readpref.SecondaryMode:
		b.Append(bson.EString("mode", "secondary"))
	case readpref.NearestMode:
		b.Append(bson.EString("mode", "nearest"))
	}

	var tagSetDocs []bson.Element
	for _, ts := range rp.TagSets() {
		if len(ts) == 0 {
			continue
		}
		setBuilder := bson.NewBuilder()
		for _, t := range ts {
			setBuilder.Append(bson.EString(t.Name, t.Value))
		}
		tagSetDocs = append(tagSetDocs, bson.EDocument("", setBuilder.Build()))
	}
	if len(tagSetDocs) > 0 {
		b.Append(bson.EArray("tags", bson.NewArray(tagSetDocs...)))
	}

	if d, ok := rp.MaxStaleness(); ok {
		b.Append(bson.EInt32("maxStalenessSeconds", int32(d.Seconds())))
	}

	return b.Build()
}
