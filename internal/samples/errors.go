package samples

// Error is a catalog error
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrEmptyCatalog         Error = "catalog has no samples"
	ErrSampleWithoutDefects Error = "sample has no defects"
)
