package msg

import (
	"github.com/10gen/mongo-go-driver/bson"
	"github.com/10gen/mongo-go-driver/internal"
)

// AddMeta wraps a Query's command in a {$query: ..., <meta>...} envelope,
// the shape mongos and secondaries expect when a read preference or
// other per-request metadata rides alongside the command itself. A Query
// with no query document yet gets an empty one so callers can always
// attach meta before it's known.
func AddMeta(r Request, meta map[string]*bson.Document) error {
	if len(meta) == 0 {
		return nil
	}

	q, ok := r.(*Query)
	if !ok {
		return internal.NewErrorf(internal.KindFraming, "cannot wrap request of type %T with meta", r)
	}

	query := q.Query
	if query == nil {
		query = bson.NewDocument()
	}

	b := bson.NewBuilder().Append(bson.EDocument("$query", query))
	for k, v := range meta {
		b.Append(bson.EDocument(k, v))
	}

	q.Query = b.Build()
	return nil
}
