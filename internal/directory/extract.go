package directory

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/mferrari98/cont-portal/internal/normalize"
	"github.com/mferrari98/cont-portal/internal/sliceutil"
	"github.com/mferrari98/cont-portal/internal/stringutil"
)

var (
	// decimalArtifact matches the ".0" suffix spreadsheet numeric
	// coercion appends to extensions stored as numbers.
	decimalArtifact = regexp.MustCompile(`\.0+$`)

	// nameSeparator splits multi-person cells. A spaced hyphen separates
	// people; an unspaced one is part of a compound surname.
	nameSeparator = regexp.MustCompile(`\s+-\s+|[/;|]|\r?\n`)
)

// ExtractRecords walks the grid below the header row and builds one
// record per extracted name. Rows are processed in order until either the
// grid ends or a stop row marks the rest of the sheet as unusable.
func ExtractRecords(grid [][]string, mapping HeaderMapping, layout Layout, memo *normalize.Memo) []PersonnelRecord {
	// HeaderRow is -1 when undetected, which starts the walk at row 0.
	start := mapping.HeaderRow + 1

	extensionChain := fallbackChain(mapping.ExtensionIndex, layout.DefaultExtensionIndex, 0)
	nameChain := fallbackChain(mapping.NameIndex, layout.DefaultNameIndex, layout.DefaultTitleIndex)
	departmentChain := fallbackChain(mapping.DepartmentIndex, layout.DefaultDepartmentIndex, layout.DefaultTitleIndex)

	var records []PersonnelRecord
	nextID := 1

	for r := start; r < len(grid); r++ {
		row := grid[r]

		if rowIsBlank(row) {
			continue
		}
		// Sheets repeat the header mid-document after page breaks.
		if matchHeaderRow(row, layout, memo).qualifies() {
			continue
		}

		extension := stripDecimalArtifact(resolveCell(row, extensionChain))
		rawName := resolveCell(row, nameChain)
		department := resolveCell(row, departmentChain)

		hasName := memo.Normalize(rawName) != ""
		hasExtension := isNumericExtension(extension, memo)

		if !hasName && !hasExtension {
			if rowHasStopPhrase(row, layout, memo) {
				// End of the usable directory. Everything below is
				// reserved-range boilerplate, discarded unconditionally.
				break
			}
			continue
		}

		names := splitNames(rawName, layout, memo)
		if len(names) == 0 {
			if !hasExtension {
				continue
			}
			// An extension with nobody attached still matters to callers
			// (shared desks, fax lines).
			names = []string{MissingName}
		}

		if department == "" {
			department = MissingDepartment
		}
		if extension == "" {
			extension = MissingExtension
		}

		for _, name := range names {
			records = append(records, buildRecord(strconv.Itoa(nextID), name, department, extension, memo))
			nextID++
		}
	}

	return records
}

// fallbackChain orders the columns to try for one field: the detected
// column first, then the historical defaults, duplicates removed.
// A -1 (undetected) head is dropped.
func fallbackChain(detected int, defaults ...int) []int {
	chain := append([]int{detected}, defaults...)
	chain = sliceutil.Deduplicate(chain, func(i int) int { return i })
	return slices.DeleteFunc(chain, func(i int) bool { return i < 0 })
}

// resolveCell returns the first non-blank cell along the chain, trimmed.
func resolveCell(row []string, chain []int) string {
	for _, idx := range chain {
		if idx >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[idx]); v != "" {
			return v
		}
	}
	return ""
}

// rowIsBlank reports whether every cell is empty or a coerced zero.
func rowIsBlank(row []string) bool {
	for _, cell := range row {
		v := strings.TrimSpace(cell)
		if v != "" && v != "0" && v != "0.0" {
			return false
		}
	}
	return true
}

// stripDecimalArtifact drops a trailing ".0" left over from numeric cells
// ("4125.0" -> "4125").
func stripDecimalArtifact(s string) string {
	return decimalArtifact.ReplaceAllString(s, "")
}

// isNumericExtension reports whether the value reads as a real extension
// number: normalized and with spaces removed it must be all digits.
// Rejects boilerplate like "RESERVA 6000" while accepting "4125 / 4126".
func isNumericExtension(extension string, memo *normalize.Memo) bool {
	compact := strings.ReplaceAll(memo.Normalize(extension), " ", "")
	return stringutil.IsNumeric(compact)
}

// rowHasStopPhrase reports whether any cell mentions a stop phrase.
func rowHasStopPhrase(row []string, layout Layout, memo *normalize.Memo) bool {
	for _, cell := range row {
		norm := memo.Normalize(cell)
		if norm == "" {
			continue
		}
		for _, phrase := range layout.StopPhrases {
			if strings.Contains(norm, phrase) {
				return true
			}
		}
	}
	return false
}

// splitNames breaks a name cell into individual people and filters out
// boilerplate. Cells routinely hold several names separated by slashes,
// semicolons, pipes, line breaks or spaced hyphens.
func splitNames(rawName string, layout Layout, memo *normalize.Memo) []string {
	if rawName == "" {
		return nil
	}

	var names []string
	for _, part := range nameSeparator.Split(rawName, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		norm := memo.Normalize(part)
		if norm == "" || slices.Contains(layout.ExcludedNames, norm) {
			continue
		}
		names = append(names, part)
	}
	return names
}
