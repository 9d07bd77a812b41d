// Package main implements the directory verification tool. It fetches the
// workbook, runs the full parse pipeline once and prints what it found:
// header mapping, record and department counts, sample records. Operators
// run it against a fresh workbook upload before the server picks it up.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mferrari98/cont-portal/internal/config"
	"github.com/mferrari98/cont-portal/internal/directory"
	"github.com/mferrari98/cont-portal/internal/source"
	"github.com/mferrari98/cont-portal/internal/timeouts"
)

// CLI flags
var (
	urlFlag    = flag.String("url", "", "Fetch the workbook from this URL instead of the configured source")
	pathFlag   = flag.String("path", "", "Read the workbook from this local file instead of the configured source")
	sampleFlag = flag.Int("sample", 5, "Number of sample records to print")
	queryFlag  = flag.String("q", "", "Run one search against the parsed records and print the groups")
)

// maxDepartmentLines caps the per-department listing so huge sheets stay
// readable.
const maxDepartmentLines = 15

func main() {
	flag.Parse()

	src, err := resolveSource(context.Background())
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Directory source: %s (%s)\n", src.Name(), src.Ref())

	ctx, cancel := context.WithTimeout(context.Background(), timeouts.WarmLoad)
	defer cancel()

	start := time.Now()
	payload, stamp, err := src.Fetch(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "❌ Fetch failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Fetched %d bytes in %v (stamp %q)\n",
		len(payload), time.Since(start).Round(time.Millisecond), stamp)

	grid, err := directory.DecodeGrid(payload)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "❌ Decode failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Decoded grid: %d rows\n", len(grid))

	records, mapping := directory.BuildRecords(grid, directory.DefaultLayout())
	printMapping(mapping)

	if len(records) == 0 {
		_, _ = fmt.Fprintln(os.Stderr, "❌ No usable rows found")
		os.Exit(1)
	}

	departments := countDepartments(records)
	printDepartments(departments)
	printSample(records, *sampleFlag)

	if *queryFlag != "" {
		printSearch(records, *queryFlag)
	}

	fmt.Printf("\n✅ Directory verified: %d records, %d departments\n", len(records), len(departments))
}

// resolveSource picks the workbook source. The -url/-path flags override
// the environment configuration and need no other variables set.
func resolveSource(ctx context.Context) (source.Source, error) {
	switch {
	case *urlFlag != "" && *pathFlag != "":
		return nil, fmt.Errorf("use either -url or -path, not both")
	case *urlFlag != "":
		return source.NewHTTPSource(*urlFlag, timeouts.SourceFetch, 1), nil
	case *pathFlag != "":
		return source.NewFileSource(*pathFlag), nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	switch {
	case cfg.SourceURL != "":
		return source.NewHTTPSource(cfg.SourceURL, timeouts.SourceFetch, cfg.FetchMaxRetries), nil
	case cfg.SourcePath != "":
		return source.NewFileSource(cfg.SourcePath), nil
	default:
		return source.NewObjectSource(ctx, source.ObjectConfig{
			Endpoint:    cfg.SourceS3Endpoint,
			Region:      cfg.SourceS3Region,
			AccessKeyID: cfg.SourceS3AccessKeyID,
			SecretKey:   cfg.SourceS3SecretAccessKey,
			Bucket:      cfg.SourceS3Bucket,
			Key:         cfg.SourceS3Key,
		})
	}
}

// printMapping reports where header detection found each column.
func printMapping(m directory.HeaderMapping) {
	if m.HeaderRow < 0 {
		fmt.Println("⚠ No header row recognized, using default column layout")
	} else {
		fmt.Printf("✓ Header row at index %d\n", m.HeaderRow)
	}
	fmt.Printf("  columns: extension=%s department=%s title=%s name=%s\n",
		columnLabel(m.ExtensionIndex),
		columnLabel(m.DepartmentIndex),
		columnLabel(m.TitleIndex),
		columnLabel(m.NameIndex))
}

// columnLabel renders a zero-based column index as the spreadsheet column
// letter operators see in their editor, or "-" when the column was not
// recognized.
func columnLabel(idx int) string {
	if idx < 0 {
		return "-"
	}
	if name, err := excelize.ColumnNumberToName(idx + 1); err == nil {
		return name
	}
	return strconv.Itoa(idx)
}

type departmentCount struct {
	name  string
	count int
}

// countDepartments tallies records per department, largest first.
func countDepartments(records []directory.PersonnelRecord) []departmentCount {
	tally := make(map[string]int)
	for _, r := range records {
		tally[r.Department]++
	}

	counts := make([]departmentCount, 0, len(tally))
	for name, count := range tally {
		counts = append(counts, departmentCount{name: name, count: count})
	}
	slices.SortFunc(counts, func(a, b departmentCount) int {
		if a.count != b.count {
			return b.count - a.count
		}
		return strings.Compare(a.name, b.name)
	})
	return counts
}

func printDepartments(departments []departmentCount) {
	fmt.Printf("\nDepartments (%d):\n", len(departments))
	shown := departments
	if len(shown) > maxDepartmentLines {
		shown = shown[:maxDepartmentLines]
	}
	for _, d := range shown {
		fmt.Printf("  %4d  %s\n", d.count, d.name)
	}
	if rest := len(departments) - len(shown); rest > 0 {
		fmt.Printf("  ... and %d more\n", rest)
	}
}

// printSample prints the first n records in extraction order.
func printSample(records []directory.PersonnelRecord, n int) {
	if n <= 0 {
		return
	}
	if n > len(records) {
		n = len(records)
	}
	fmt.Printf("\nSample records:\n")
	for _, r := range records[:n] {
		fmt.Printf("  [%s] %-30s  %-25s  ext %s\n", r.ID, r.Name, r.Department, r.Extension)
	}
}

// printSearch runs one search over the parsed records and prints the
// ranked groups, mirroring what the search endpoint would return.
func printSearch(records []directory.PersonnelRecord, query string) {
	groups := directory.Search(records, query)
	total := 0
	for _, g := range groups {
		total += len(g.Records)
	}

	fmt.Printf("\nSearch %q: %d records in %d groups\n", query, total, len(groups))
	for _, g := range groups {
		fmt.Printf("  %s\n", g.Department)
		for _, r := range g.Records {
			fmt.Printf("    %-30s ext %-8s score %d\n", r.Name, r.Extension, r.Score)
		}
	}
}
