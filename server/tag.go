package server

// Tag is a name/value pair used to select servers for reads, per the
// driver's read preference tag sets.
type Tag struct {
	Name  string
	Value string
}

// TagSet is an ordered list of Tags.
type TagSet []Tag

// NewTagSet creates a new tag set by taking the given names and values
// in pairs.
func NewTagSet(tags ...string) TagSet {
	if len(tags)%2 != 0 {
		panic("server.NewTagSet: argument count is odd")
	}

	var set TagSet
	for i := 0; i < len(tags); i += 2 {
		set = append(set, Tag{Name: tags[i], Value: tags[i+1]})
	}
	return set
}

// NewTagSetFromMap creates a new tag set from a map, as decoded from
// an ismaster response's "tags" document.
func NewTagSetFromMap(m map[string]string) TagSet {
	var set TagSet
	for k, v := range m {
		set = append(set, Tag{Name: k, Value: v})
	}
	return set
}

// Contains indicates whether the name/value pair exists in the tag set.
func (ts TagSet) Contains(name, value string) bool {
	for _, t := range ts {
		if t.Name == name && t.Value == value {
			return true
		}
	}
	return false
}

// ContainsAll indicates whether all the name/value pairs in other
// exist in the tag set.
func (ts TagSet) ContainsAll(other []Tag) bool {
	for _, ot := range other {
		if !ts.Contains(ot.Name, ot.Value) {
			return false
		}
	}
	return true
}
