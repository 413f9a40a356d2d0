package party

import (
	"encoding/binary"
	"io"
	"sort"
)

// IDSlice is a sorted set of IDs.
type IDSlice []ID

// NewIDSlice returns a sorted copy of ids.
func NewIDSlice(ids []ID) IDSlice {
	out := make(IDSlice, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Valid reports whether the slice is sorted, duplicate-free and contains no
// zero ID.
func (ids IDSlice) Valid() bool {
	for i := range ids {
		if !ids[i].Valid() {
			return false
		}
		if i > 0 && ids[i-1] >= ids[i] {
			return false
		}
	}
	return true
}

// Contains returns true if the sorted slice contains id.
func (ids IDSlice) Contains(id ID) bool {
	_, ok := ids.search(id)
	return ok
}

func (ids IDSlice) search(x ID) (int, bool) {
	index := sort.Search(len(ids), func(i int) bool { return ids[i] >= x })
	if index < len(ids) && ids[index] == x {
		return index, true
	}
	return 0, false
}

// Remove returns a copy of the slice without id.
func (ids IDSlice) Remove(id ID) IDSlice {
	out := make(IDSlice, 0, len(ids))
	for _, other := range ids {
		if other != id {
			out = append(out, other)
		}
	}
	return out
}

// Copy returns a sorted copy of the slice.
func (ids IDSlice) Copy() IDSlice {
	out := make(IDSlice, len(ids))
	copy(out, ids)
	return out
}

// WriteTo implements io.WriterTo, for transcript hashing.
func (ids IDSlice) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, binary.BigEndian, uint64(len(ids))); err != nil {
		return 0, err
	}
	nAll := int64(8)
	for _, id := range ids {
		n, err := id.WriteTo(w)
		nAll += n
		if err != nil {
			return nAll, err
		}
	}
	return nAll, nil
}

// Domain implements hash.WriterToWithDomain.
func (IDSlice) Domain() string { return "IDSlice" }
