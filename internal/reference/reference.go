package reference

import (
	"fmt"
	"time"
)

// Stored is a record kept in the local reference store.
type Stored struct {
	// Identity
	ID     string `json:"id"`     // Source and index, see StoredID
	Source string `json:"source"` // File path, URL or "-" for text
	Index  int    `json:"index"`  // Position of the record in its source

	Added  time.Time `json:"added"`
	Record Record    `json:"record"`
}

// StoredID returns the identifier of the index-th record of source.
func StoredID(source string, index int) string {
	return fmt.Sprintf("%s#%d", source, index)
}

// NewStored wraps the records extracted from source for the store.
func NewStored(source string, records []Record, added time.Time) []Stored {
	out := make([]Stored, len(records))
	for i, r := range records {
		out[i] = Stored{
			ID:     StoredID(source, i),
			Source: source,
			Index:  i,
			Added:  added.UTC(),
			Record: r,
		}
	}
	return out
}
