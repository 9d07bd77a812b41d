package directory

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	domerrors "github.com/mferrari98/cont-portal/internal/errors"
	"github.com/mferrari98/cont-portal/internal/normalize"
)

// DecodeGrid opens the payload as a spreadsheet workbook and returns the
// clamped cell grid of the first sheet. Only the first sheet carries the
// directory; additional sheets are change logs and print layouts.
func DecodeGrid(payload []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: opening workbook: %v", domerrors.ErrDirectoryMalformed, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", domerrors.ErrDirectoryMalformed)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %q: %v", domerrors.ErrDirectoryMalformed, sheets[0], err)
	}

	return ClampGrid(rows), nil
}

// BuildRecords runs header detection and extraction over a decoded grid.
// It is a pure grid-to-records function shared by every execution context
// that parses the directory (server reload, warm load, the verify CLI).
func BuildRecords(grid [][]string, layout Layout) ([]PersonnelRecord, HeaderMapping) {
	memo := normalize.NewMemo()
	mapping := DetectHeader(grid, layout, memo)
	return ExtractRecords(grid, mapping, layout, memo), mapping
}

// Parse converts raw workbook bytes into personnel records using the
// default layout. A workbook that decodes but yields no records reports
// ErrDirectoryEmpty.
func Parse(payload []byte) ([]PersonnelRecord, error) {
	grid, err := DecodeGrid(payload)
	if err != nil {
		return nil, err
	}

	records, _ := BuildRecords(grid, DefaultLayout())
	if len(records) == 0 {
		return nil, domerrors.ErrDirectoryEmpty
	}
	return records, nil
}
