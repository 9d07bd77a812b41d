package directory

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/mferrari98/cont-portal/internal/normalize"
	"github.com/mferrari98/cont-portal/internal/sliceutil"
	"github.com/mferrari98/cont-portal/internal/stringutil"
)

// Score tiers, highest first. Extension- and department-only inclusions
// score zero so direct name hits always lead their group.
const (
	ScoreSurname   = 3
	ScoreWholeWord = 2
	ScoreSubstring = 1
	ScoreIndirect  = 0
)

// MinQueryLength is the minimum trimmed query length, in runes, below
// which Search returns nothing.
const MinQueryLength = 2

// Branch labels returned by QueryBranch.
const (
	BranchName      = "name"
	BranchExtension = "extension"
	BranchRejected  = "rejected"
)

// QueryBranch reports which strategy Search will run for a query:
// "rejected" for degenerate queries, "extension" for numeric ones,
// "name" for everything else. Callers label search metrics with it.
func QueryBranch(query string) string {
	trimmed := strings.TrimSpace(query)
	if utf8.RuneCountInString(trimmed) < MinQueryLength {
		return BranchRejected
	}
	normQuery := normalize.Normalize(trimmed)
	if normQuery == "" {
		return BranchRejected
	}
	if extensionQuery(normQuery) != "" {
		return BranchExtension
	}
	return BranchName
}

// Search runs the tiered query strategy over the record list and returns
// ranked department groups. It never fails: degenerate queries yield an
// empty result. The record list is read-only; results carry copies with
// Score and Terms populated.
//
// Numeric queries match extensions by substring. Text queries prefer
// whole-token prefix matches on names, expanded with everyone sharing an
// extension with a matched person, and fall back to plain substring
// matching. Single-word queries additionally pull in whole departments
// whose name contains the query.
func Search(records []PersonnelRecord, query string) []Group {
	trimmed := strings.TrimSpace(query)
	if utf8.RuneCountInString(trimmed) < MinQueryLength {
		return nil
	}

	normQuery := normalize.Normalize(trimmed)
	if normQuery == "" {
		return nil
	}
	terms := strings.Fields(normQuery)

	var matches []PersonnelRecord
	if digits := extensionQuery(normQuery); digits != "" {
		matches = matchByExtension(records, digits)
		terms = []string{digits}
	} else {
		matches = matchByName(records, normQuery, terms)
	}
	if len(matches) == 0 {
		return nil
	}

	scored := make([]PersonnelRecord, len(matches))
	for i, rec := range matches {
		rec.Score = scoreRecord(rec, normQuery, terms)
		rec.Terms = terms
		scored[i] = rec
	}

	return groupByDepartment(scored)
}

// extensionQuery returns the digit string to search for when the query is
// purely numeric (ignoring spaces), or "" for text queries.
func extensionQuery(normQuery string) string {
	digits := stringutil.DigitsOnly(normQuery)
	if digits == "" {
		return ""
	}
	compact := strings.ReplaceAll(normQuery, " ", "")
	if !stringutil.IsNumeric(compact) {
		return ""
	}
	return digits
}

// matchByExtension matches records whose searchable extension contains
// the digit string. Substring matching lets "412" find "4125" and "4126".
func matchByExtension(records []PersonnelRecord, digits string) []PersonnelRecord {
	var matches []PersonnelRecord
	for _, rec := range records {
		if strings.Contains(rec.searchExt, digits) {
			matches = append(matches, rec)
		}
	}
	return matches
}

// matchByName runs the text tiers: exact whole-token matches expanded by
// shared extension, then substring fallback, then the single-term
// department union.
func matchByName(records []PersonnelRecord, normQuery string, terms []string) []PersonnelRecord {
	var exact []PersonnelRecord
	for _, rec := range records {
		if matchesTermsByToken(rec.searchName, terms) {
			exact = append(exact, rec)
		}
	}

	var results []PersonnelRecord
	if len(exact) > 0 {
		results = expandByExtension(records, exact)
	} else {
		for _, rec := range records {
			if matchesTermsBySubstring(rec.searchName, terms) {
				results = append(results, rec)
			}
		}
	}

	// A single word may name a department rather than a person.
	if len(terms) == 1 {
		for _, rec := range records {
			if strings.Contains(rec.searchDept, normQuery) {
				results = append(results, rec)
			}
		}
		results = sliceutil.Deduplicate(results, func(r PersonnelRecord) string { return r.ID })
	}

	return results
}

// expandByExtension widens an exact-match set to every record sharing an
// extension with a match: the unit of retrieval is effectively "who sits
// at this extension", so co-located people surface together. Placeholder
// extensions never join records.
func expandByExtension(records, exact []PersonnelRecord) []PersonnelRecord {
	matchedIDs := make(map[string]bool, len(exact))
	matchedExts := make(map[string]bool, len(exact))
	for _, rec := range exact {
		matchedIDs[rec.ID] = true
		if rec.Extension != MissingExtension {
			matchedExts[rec.Extension] = true
		}
	}

	var results []PersonnelRecord
	for _, rec := range records {
		if matchedIDs[rec.ID] || matchedExts[rec.Extension] {
			results = append(results, rec)
		}
	}
	return results
}

// matchesTermsByToken reports whether every term equals or prefixes some
// whitespace-delimited token of the searchable name.
func matchesTermsByToken(searchName string, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	tokens := strings.Fields(searchName)
	for _, term := range terms {
		matched := false
		for _, tok := range tokens {
			if strings.HasPrefix(tok, term) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// matchesTermsBySubstring reports whether every term appears somewhere in
// the searchable name.
func matchesTermsBySubstring(searchName string, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	for _, term := range terms {
		if !strings.Contains(searchName, term) {
			return false
		}
	}
	return true
}

// scoreRecord assigns the highest tier the record earns against the query.
func scoreRecord(rec PersonnelRecord, normQuery string, terms []string) int {
	if normQuery == surname(rec) {
		return ScoreSurname
	}
	if matchesTermsByToken(rec.searchName, terms) {
		return ScoreWholeWord
	}
	if matchesTermsBySubstring(rec.searchName, terms) {
		return ScoreSubstring
	}
	return ScoreIndirect
}

// surname extracts the record's normalized surname: the segment before
// the first comma when the name is "Surname, Given", otherwise the first
// word of the searchable name.
func surname(rec PersonnelRecord) string {
	if i := strings.Index(rec.Name, ","); i >= 0 {
		return normalize.Normalize(rec.Name[:i])
	}
	first, _, _ := strings.Cut(rec.searchName, " ")
	return first
}

// groupByDepartment buckets scored records and orders everything for
// display: records by score then name, groups by best score then
// department.
func groupByDepartment(scored []PersonnelRecord) []Group {
	var order []string
	buckets := make(map[string][]PersonnelRecord)
	for _, rec := range scored {
		if _, ok := buckets[rec.Department]; !ok {
			order = append(order, rec.Department)
		}
		buckets[rec.Department] = append(buckets[rec.Department], rec)
	}

	groups := make([]Group, 0, len(order))
	for _, dept := range order {
		recs := buckets[dept]
		slices.SortStableFunc(recs, func(a, b PersonnelRecord) int {
			if a.Score != b.Score {
				return b.Score - a.Score
			}
			return strings.Compare(a.searchName, b.searchName)
		})
		groups = append(groups, Group{Department: dept, Records: recs})
	}

	slices.SortStableFunc(groups, func(a, b Group) int {
		if as, bs := a.Records[0].Score, b.Records[0].Score; as != bs {
			return bs - as
		}
		return strings.Compare(a.Records[0].searchDept, b.Records[0].searchDept)
	})

	return groups
}
