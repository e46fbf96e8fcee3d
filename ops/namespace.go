package ops

import (
	"strings"

	"github.com/10gen/mongo-go-driver/internal"
)

// NewNamespace returns a new Namespace for the given database and collection.
func NewNamespace(db, collection string) Namespace {
	return Namespace{
		DB:         db,
		Collection: collection,
	}
}

// ParseNamespace parses a namespace string into a Namespace.
//
// The namespace string must contain at least one ".", the first of which is
// the separator between the database and collection names. If not, the
// default (invalid) Namespace is returned.
func ParseNamespace(fullName string) Namespace {
	indexOfFirstDot := strings.Index(fullName, ".")
	if indexOfFirstDot == -1 {
		return Namespace{}
	}
	return Namespace{
		DB:         fullName[:indexOfFirstDot],
		Collection: fullName[indexOfFirstDot+1:],
	}
}

// Namespace encapsulates a database and collection name, which together
// uniquely identify a collection within a MongoDB cluster.
type Namespace struct {
	DB         string
	Collection string
}

// FullName returns the full namespace string, the database and collection
// names joined with a ".".
func (ns *Namespace) FullName() string {
	return strings.Join([]string{ns.DB, ns.Collection}, ".")
}

func (ns *Namespace) validate() error {
	if err := validateDB(ns.DB); err != nil {
		return err
	}
	return validateCollection(ns.Collection)
}

func validateDB(db string) error {
	if db == "" {
		return internal.NewErrorf(internal.KindFraming, "database name can not be empty")
	}
	if strings.Contains(db, " ") {
		return internal.NewErrorf(internal.KindFraming, "database name can not contain ' '")
	}
	if strings.Contains(db, ".") {
		return internal.NewErrorf(internal.KindFraming, "database name can not contain '.'")
	}
	return nil
}

func validateCollection(collection string) error {
	if collection == "" {
		return internal.NewErrorf(internal.KindFraming, "collection name can not be empty")
	}
	return nil
}
