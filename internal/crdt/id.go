package crdt

// ID is a Lamport timestamp identifying one element
type ID struct {
	Clock uint64 `json:"c"`
	Site  string `json:"s"`
}

// root is the virtual element every sequence hangs off
var root = ID{}

// IsRoot returns true for the virtual head of the sequence
func (id ID) IsRoot() bool {
	return id == root
}

// Less orders IDs by clock, then by site
func (id ID) Less(other ID) bool {
	if id.Clock != other.Clock {
		return id.Clock < other.Clock
	}
	return id.Site < other.Site
}
