package quest

import (
	"iter"

	"github.com/tidwall/btree"
)

// Index maps quest ids to records in ascending id order.
// The zero value is an empty index.
type Index struct {
	m btree.Map[uint32, *Record]
}

// Get returns the record for id.
func (ix *Index) Get(id uint32) (*Record, bool) {
	return ix.m.Get(id)
}

// Len returns the number of records.
func (ix *Index) Len() int {
	return ix.m.Len()
}

// All yields every record in ascending id order.
func (ix *Index) All() iter.Seq[*Record] {
	return func(yield func(*Record) bool) {
		ix.m.Scan(func(_ uint32, r *Record) bool {
			return yield(r)
		})
	}
}

// insert adds r unless its id is already present. It reports whether r
// was stored.
func (ix *Index) insert(r *Record) bool {
	if _, ok := ix.m.Get(r.ID); ok {
		return false
	}
	ix.m.Set(r.ID, r)
	return true
}
