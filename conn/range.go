package conn

import "fmt"

// Range is an inclusive range between two uint8, used for the wire
// version range a server advertises in its isMaster/hello reply.
type Range struct {
	Min uint8
	Max uint8
}

// Includes reports whether i falls within the range, inclusive.
func (r Range) Includes(i uint8) bool {
	return i >= r.Min && i <= r.Max
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d]", r.Min, r.Max)
}
