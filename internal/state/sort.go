package state

import (
	"sort"
	"strconv"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tandemgrid/tandemgrid/internal/grid"
)

// sortRows groups every existing cell by row, orders the row groups by
// the target column's value, and reassigns row numbers 1..N in sorted
// order. Cell IDs are rewritten to match their new rows.
//
// Comparison is numeric when both sides parse as numbers, otherwise
// collated lexicographic. Rows tie-break on their original number, which
// keeps repeated identical sorts idempotent.
func sortRows(cells grid.CellMap, columnID string, ascending bool) grid.CellMap {
	byRow := make(map[int]map[string]grid.Cell)
	for _, cell := range cells {
		group, ok := byRow[cell.Row]
		if !ok {
			group = make(map[string]grid.Cell)
			byRow[cell.Row] = group
		}
		group[cell.Column] = cell
	}

	rows := make([]int, 0, len(byRow))
	for row := range byRow {
		rows = append(rows, row)
	}

	// A fresh collator per sort: collators carry internal buffers and
	// are not safe for concurrent use across sessions.
	coll := collate.New(language.Und)

	sort.SliceStable(rows, func(i, j int) bool {
		a := byRow[rows[i]][columnID].Value
		b := byRow[rows[j]][columnID].Value

		cmp := compareValues(coll, a, b)
		if cmp == 0 {
			return rows[i] < rows[j]
		}
		if ascending {
			return cmp < 0
		}
		return cmp > 0
	})

	out := make(grid.CellMap, len(cells))
	for idx, oldRow := range rows {
		newRow := idx + 1
		for _, cell := range byRow[oldRow] {
			id := grid.MakeCellID(cell.Column, newRow)
			cell.ID = id
			cell.Row = newRow
			out[id] = cell
		}
	}
	return out
}

// compareValues orders two cell values: numerically when both parse,
// otherwise by collation.
func compareValues(coll *collate.Collator, a, b string) int {
	an, aerr := strconv.ParseFloat(a, 64)
	bn, berr := strconv.ParseFloat(b, 64)
	if aerr == nil && berr == nil {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	}
	return coll.CompareString(a, b)
}
