package grid

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrBadCellID reports a cell ID that does not match ColumnLetters+Digits.
// The reducer treats actions carrying such IDs as no-ops, never as faults.
var ErrBadCellID = errors.New("malformed cell id")

var cellIDPattern = regexp.MustCompile(`^([A-Z]+)(\d+)$`)

// ParseCellID splits a cell ID like "B12" into its column and row parts.
func ParseCellID(id string) (column string, row int, err error) {
	m := cellIDPattern.FindStringSubmatch(id)
	if m == nil {
		return "", 0, fmt.Errorf("%w: %q", ErrBadCellID, id)
	}
	row, err = strconv.Atoi(m[2])
	if err != nil || row < 1 {
		return "", 0, fmt.Errorf("%w: %q", ErrBadCellID, id)
	}
	return m[1], row, nil
}

// MakeCellID builds the canonical ID for (column, row).
func MakeCellID(column string, row int) string {
	return column + strconv.Itoa(row)
}

// NextColumnID returns the next free column ID after the ones in use.
// IDs are assigned monotonically: A..Z, then AA, AB, and so on. The scan
// considers every existing ID so a deleted column's ID is never reissued
// ahead of later assignments.
func NextColumnID(columns []Column) string {
	max := 0
	for _, c := range columns {
		if n := columnOrdinal(c.ID); n > max {
			max = n
		}
	}
	return columnLetters(max + 1)
}

// columnOrdinal converts column letters to a 1-based ordinal ("A"=1,
// "Z"=26, "AA"=27). Returns 0 for IDs outside the A-Z alphabet.
func columnOrdinal(id string) int {
	n := 0
	for _, r := range id {
		if r < 'A' || r > 'Z' {
			return 0
		}
		n = n*26 + int(r-'A') + 1
	}
	return n
}

// columnLetters is the inverse of columnOrdinal (bijective base 26).
func columnLetters(n int) string {
	var buf []byte
	for n > 0 {
		n--
		buf = append([]byte{byte('A' + n%26)}, buf...)
		n /= 26
	}
	return string(buf)
}
