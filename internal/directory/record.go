// Package directory turns decoded spreadsheet grids into personnel records
// and serves ranked search over them.
//
// The source workbooks are maintained by hand and have no fixed schema:
// header rows move around, columns shift, multiple people share one cell,
// and boilerplate rows appear mid-sheet. Everything in this package exists
// to absorb that irregularity behind a stable record model.
package directory

import (
	"strings"

	"github.com/mferrari98/cont-portal/internal/normalize"
	"github.com/mferrari98/cont-portal/internal/stringutil"
)

// Placeholder literals emitted for missing fields. End users see these
// verbatim, and downstream consumers key on them, so they never change.
const (
	// MissingExtension marks entries without a phone extension.
	MissingExtension = "N/A"

	// MissingName marks extension-only rows (a shared desk, a fax line).
	MissingName = "Sin Nombre"

	// MissingDepartment buckets rows whose sector cell is blank.
	MissingDepartment = "Sector sin asignar"
)

// PersonnelRecord is one directory entry: a person (or a named placeholder)
// with their department and internal extension.
//
// Ids are assigned sequentially within a single parse pass and are not
// stable across reparses. The unexported searchable fields are derived at
// construction and never serialized.
type PersonnelRecord struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Extension  string `json:"extension"`

	// Search-time fields, populated only on records returned by Search.
	Score int      `json:"score,omitempty"`
	Terms []string `json:"terms,omitempty"`

	searchName string
	searchExt  string
	searchDept string
}

// NewRecord builds a record and derives its searchable forms.
func NewRecord(id, name, department, extension string) PersonnelRecord {
	return PersonnelRecord{
		ID:         id,
		Name:       name,
		Department: department,
		Extension:  extension,
		searchName: normalize.Normalize(name),
		searchExt:  searchableExtension(extension),
		searchDept: normalize.Normalize(department),
	}
}

// buildRecord is NewRecord with a parse-scoped memo for the normalized
// fields. Department strings repeat across most of a sheet, so the memo
// pays off during extraction.
func buildRecord(id, name, department, extension string, memo *normalize.Memo) PersonnelRecord {
	return PersonnelRecord{
		ID:         id,
		Name:       name,
		Department: department,
		Extension:  extension,
		searchName: memo.Normalize(name),
		searchExt:  searchableExtension(extension),
		searchDept: memo.Normalize(department),
	}
}

// searchableExtension derives the matchable form of an extension: digits
// only when the display value contains any digit, otherwise the lowercase
// raw string (text extensions like "Guardia" stay matchable as text).
func searchableExtension(extension string) string {
	if stringutil.ContainsDigit(extension) {
		return stringutil.DigitsOnly(extension)
	}
	return strings.ToLower(extension)
}

// SearchableName exposes the normalized name for callers that need to
// match outside Search (tests, diagnostics).
func (r PersonnelRecord) SearchableName() string {
	return r.searchName
}

// SearchableExtension exposes the matchable extension form.
func (r PersonnelRecord) SearchableExtension() string {
	return r.searchExt
}

// Group is one department bucket of ranked search results.
type Group struct {
	Department string            `json:"department"`
	Records    []PersonnelRecord `json:"records"`
}
