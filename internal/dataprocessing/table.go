package dataprocessing

import "staypulse/pkg/contracts/domain"

// Table is an immutable set of cleaned listings. The canonical table is built
// once by Load; Apply derives new tables from it and never touches the rows
// of its input.
type Table struct {
	rows     []domain.Listing
	filtered bool
}

// NewTable builds a table from a copy of rows
func NewTable(rows []domain.Listing) *Table {
	cp := make([]domain.Listing, len(rows))
	copy(cp, rows)
	return newTable(cp, false)
}

func newTable(rows []domain.Listing, filtered bool) *Table {
	return &Table{rows: rows, filtered: filtered}
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Empty reports whether the table has no rows
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Filtered reports whether the table was derived with at least one active criterion
func (t *Table) Filtered() bool {
	return t != nil && t.filtered
}

// Row returns the i-th listing
func (t *Table) Row(i int) domain.Listing {
	return t.rows[i]
}

// Rows returns a copy of every listing
func (t *Table) Rows() []domain.Listing {
	if t == nil {
		return nil
	}
	cp := make([]domain.Listing, len(t.rows))
	copy(cp, t.rows)
	return cp
}

// each visits rows in order without copying them
func (t *Table) each(fn func(l *domain.Listing)) {
	if t == nil {
		return
	}
	for i := range t.rows {
		fn(&t.rows[i])
	}
}
