package crdt

// Error is a document error
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrMalformedUpdate Error = "malformed update"
	ErrIndexOutOfRange Error = "index out of range"
	ErrEmptySite       Error = "site cannot be empty"
)
