package directory

import (
	"strings"

	"github.com/mferrari98/cont-portal/internal/normalize"
)

// HeaderMapping is the result of header detection: which row labels the
// columns and where each record field lives. HeaderRow is -1 when no row
// qualified; individual indices are -1 when that field's column was not
// recognized.
type HeaderMapping struct {
	HeaderRow       int
	ExtensionIndex  int
	DepartmentIndex int
	TitleIndex      int
	NameIndex       int
}

// DetectHeader scans at most the first HeaderScanRows rows of the grid
// for a header row. A row qualifies when it labels a name column and at
// least one of the extension or department columns; the first qualifying
// row wins. When nothing qualifies the mapping falls back to the layout's
// default indices with HeaderRow = -1.
func DetectHeader(grid [][]string, layout Layout, memo *normalize.Memo) HeaderMapping {
	limit := min(len(grid), HeaderScanRows)
	for r := 0; r < limit; r++ {
		m := matchHeaderRow(grid[r], layout, memo)
		if m.qualifies() {
			m.HeaderRow = r
			return m
		}
	}

	return HeaderMapping{
		HeaderRow:       -1,
		ExtensionIndex:  layout.DefaultExtensionIndex,
		DepartmentIndex: layout.DefaultDepartmentIndex,
		TitleIndex:      layout.DefaultTitleIndex,
		NameIndex:       layout.DefaultNameIndex,
	}
}

// matchHeaderRow tests every cell of one row against the four token
// dictionaries. The first matching column per category wins; later
// columns matching the same category are ignored.
func matchHeaderRow(row []string, layout Layout, memo *normalize.Memo) HeaderMapping {
	m := HeaderMapping{
		HeaderRow:       -1,
		ExtensionIndex:  -1,
		DepartmentIndex: -1,
		TitleIndex:      -1,
		NameIndex:       -1,
	}

	for c, cell := range row {
		norm := memo.Normalize(cell)
		if norm == "" {
			continue
		}
		if m.ExtensionIndex < 0 && matchesAnyToken(norm, layout.ExtensionTokens) {
			m.ExtensionIndex = c
		}
		if m.DepartmentIndex < 0 && matchesAnyToken(norm, layout.DepartmentTokens) {
			m.DepartmentIndex = c
		}
		if m.TitleIndex < 0 && matchesAnyToken(norm, layout.TitleTokens) {
			m.TitleIndex = c
		}
		if m.NameIndex < 0 && matchesAnyToken(norm, layout.NameTokens) {
			m.NameIndex = c
		}
	}

	return m
}

// qualifies reports whether a matched row is a believable header: it must
// label the name column plus at least one of extension or department.
// A lone "SECTOR" cell in a data row is not a header.
func (m HeaderMapping) qualifies() bool {
	return m.NameIndex >= 0 && (m.ExtensionIndex >= 0 || m.DepartmentIndex >= 0)
}

// matchesAnyToken reports whether the normalized cell equals or contains
// any dictionary token.
func matchesAnyToken(norm string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(norm, tok) {
			return true
		}
	}
	return false
}

// ClampGrid bounds the decoded grid to MaxRows x MaxColumns. Everything
// past the bounds is trailing noise in the source workbooks.
func ClampGrid(rows [][]string) [][]string {
	if len(rows) > MaxRows {
		rows = rows[:MaxRows]
	}
	clamped := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) > MaxColumns {
			row = row[:MaxColumns]
		}
		clamped[i] = row
	}
	return clamped
}
