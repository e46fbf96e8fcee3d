package internal

import "github.com/10gen/mongo-go-driver/bson"

// KillCursorsResult is the decoded response to a "killCursors"
// command.
type KillCursorsResult struct {
	CursorsKilled   []int64
	CursorsNotFound []int64
	CursorsAlive    []int64
}

// KillCursorsResultFromDocument builds a KillCursorsResult from a raw
// command response document.
func KillCursorsResultFromDocument(doc *bson.Document) KillCursorsResult {
	return KillCursorsResult{
		CursorsKilled:   int64Slice(doc, "cursorsKilled"),
		CursorsNotFound: int64Slice(doc, "cursorsNotFound"),
		CursorsAlive:    int64Slice(doc, "cursorsAlive"),
	}
}

func int64Slice(doc *bson.Document, name string) []int64 {
	el, ok := doc.Lookup(name)
	if !ok {
		return nil
	}
	arr, ok := el.Value.(*bson.Document)
	if !ok {
		return nil
	}

	elems := arr.Elements()
	out := make([]int64, 0, len(elems))
	for _, e := range elems {
		switch v := e.Value.(type) {
		case int32:
			out = append(out, int64(v))
		case int64:
			out = append(out, v)
		}
	}
	return out
}
