// Package sourcemap implements the enhanced-format source map emitted
// alongside generated host code (spec.md §6): a flat list of records
// linking a position in the emitted text back to the originating
// source-language span, plus an optional symbol name for readability in
// stack traces.
//
// Grounded on the teacher's internal/sid package, which already encodes
// "surface source position -> core IR position" mappings (SID,
// SIDMap.AddMapping/GetCoreSIDs/GetSurfaceSID); this package generalizes
// that same surface<->target mapping idea to "source-language position
// -> emitted host-text position" instead of "surface AST -> core IR".
package sourcemap

import "sort"

// Record is one line of the enhanced-format source map: spec.md §6's
// "(host_line, host_column, sl_line, sl_column, sl_file, symbol?)".
type Record struct {
	HostLine   int
	HostColumn int
	SLLine     int
	SLColumn   int
	SLFile     string
	Symbol     string // empty if this mapping has no associated name
}

// Map is an emitted program's full set of records, kept sorted by host
// position so ForwardLookup can binary-search.
type Map struct {
	records []Record
}

// NewMap constructs an empty Map.
func NewMap() *Map {
	return &Map{}
}

// Add appends a record. Records are kept sorted lazily: callers may add
// out of host-position order; Finalize sorts once before queries.
func (m *Map) Add(r Record) {
	m.records = append(m.records, r)
}

// Finalize sorts records by host position. Call once after emission
// completes and before performing any lookups.
func (m *Map) Finalize() {
	sort.Slice(m.records, func(i, j int) bool {
		if m.records[i].HostLine != m.records[j].HostLine {
			return m.records[i].HostLine < m.records[j].HostLine
		}
		return m.records[i].HostColumn < m.records[j].HostColumn
	})
}

// Records returns every record, in host-position order after Finalize.
func (m *Map) Records() []Record {
	return m.records
}

// Len reports how many mappings this map holds.
func (m *Map) Len() int {
	return len(m.records)
}

// ForwardLookup finds the mapping whose host position is the closest
// one at-or-before (hostLine, hostColumn), per spec.md §8's round-trip
// property: "the mapping's SL span points back into the original
// source." Returns false if the map is empty or the position precedes
// every recorded mapping.
func (m *Map) ForwardLookup(hostLine, hostColumn int) (Record, bool) {
	if len(m.records) == 0 {
		return Record{}, false
	}
	idx := sort.Search(len(m.records), func(i int) bool {
		r := m.records[i]
		if r.HostLine != hostLine {
			return r.HostLine > hostLine
		}
		return r.HostColumn > hostColumn
	})
	if idx == 0 {
		return Record{}, false
	}
	return m.records[idx-1], true
}

// BackwardLookup finds every mapping whose SL position equals
// (slFile, slLine, slColumn) exactly — the inverse direction of
// ForwardLookup, used by the round-trip test (spec.md §8: "running the
// mapping forward and backward yields the starting position").
func (m *Map) BackwardLookup(slFile string, slLine, slColumn int) []Record {
	var out []Record
	for _, r := range m.records {
		if r.SLFile == slFile && r.SLLine == slLine && r.SLColumn == slColumn {
			out = append(out, r)
		}
	}
	return out
}
