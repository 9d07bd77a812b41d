package directory

import (
	"testing"
)

func searchFixture() []PersonnelRecord {
	return []PersonnelRecord{
		NewRecord("1", "Perez, Juan", "COMPRAS", "4125"),
		NewRecord("2", "Gomez, Ana", "COMPRAS", "4125"),
		NewRecord("3", "Diaz, Luis", "VENTAS", "4126"),
		NewRecord("4", "José Martínez", "SISTEMAS", "4200"),
		NewRecord("5", MissingName, "VENTAS", "4300"),
		NewRecord("6", "Suarez, Pedro", "DEPOSITO", MissingExtension),
		NewRecord("7", "Vega, Hugo", "DEPOSITO", MissingExtension),
	}
}

// flatten collects every record of every group in display order.
func flatten(groups []Group) []PersonnelRecord {
	var out []PersonnelRecord
	for _, g := range groups {
		out = append(out, g.Records...)
	}
	return out
}

func findRecord(t *testing.T, groups []Group, name string) PersonnelRecord {
	t.Helper()
	for _, r := range flatten(groups) {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("record %q not in results: %+v", name, groups)
	return PersonnelRecord{}
}

func TestSearchRejectsShortQueries(t *testing.T) {
	records := searchFixture()
	for _, q := range []string{"", "p", " x ", "  ", "©®"} {
		if got := Search(records, q); got != nil {
			t.Errorf("Search(%q) = %+v, want nil", q, got)
		}
	}
}

func TestSearchExtensionSharingExpansion(t *testing.T) {
	// Mirrors the canonical co-location case: one name hit pulls in
	// everyone at the same extension.
	records := []PersonnelRecord{
		NewRecord("1", "Juan Perez", "ADMINISTRACION", "101"),
		NewRecord("2", "Ana Gomez", "ADMINISTRACION", "101"),
	}

	groups := Search(records, "perez")

	flat := flatten(groups)
	if len(flat) != 2 {
		t.Fatalf("got %d records, want both extension sharers: %+v", len(flat), groups)
	}
	if r := findRecord(t, groups, "Juan Perez"); r.Score != ScoreWholeWord {
		t.Errorf("Juan Perez score = %d, want %d", r.Score, ScoreWholeWord)
	}
	if r := findRecord(t, groups, "Ana Gomez"); r.Score != ScoreIndirect {
		t.Errorf("Ana Gomez score = %d, want %d", r.Score, ScoreIndirect)
	}
}

func TestSearchNumericQueryMatchesExtensions(t *testing.T) {
	records := []PersonnelRecord{
		NewRecord("1", "Juan Perez", "ADMINISTRACION", "101"),
		NewRecord("2", "Ana Gomez", "ADMINISTRACION", "101"),
	}

	for _, q := range []string{"101", " 101 ", "10 1"} {
		flat := flatten(Search(records, q))
		if len(flat) != 2 {
			t.Errorf("Search(%q) returned %d records, want 2", q, len(flat))
		}
	}
}

func TestSearchExtensionSubstring(t *testing.T) {
	groups := Search(searchFixture(), "412")

	flat := flatten(groups)
	if len(flat) != 3 {
		t.Fatalf("got %d records, want 3 extensions containing 412: %+v", len(flat), groups)
	}
	for _, r := range flat {
		if r.Score != ScoreIndirect {
			t.Errorf("%s scored %d, want %d for extension-only inclusion", r.Name, r.Score, ScoreIndirect)
		}
		if len(r.Terms) != 1 || r.Terms[0] != "412" {
			t.Errorf("%s terms = %v, want the digit string", r.Name, r.Terms)
		}
	}
}

func TestSearchSurnameScoresTop(t *testing.T) {
	groups := Search(searchFixture(), "perez")

	if r := findRecord(t, groups, "Perez, Juan"); r.Score != ScoreSurname {
		t.Errorf("comma-form surname score = %d, want %d", r.Score, ScoreSurname)
	}
	// The extension sharer rides along with no score of its own.
	if r := findRecord(t, groups, "Gomez, Ana"); r.Score != ScoreIndirect {
		t.Errorf("co-located record score = %d, want %d", r.Score, ScoreIndirect)
	}
}

func TestSearchAccentAndCaseInsensitive(t *testing.T) {
	records := searchFixture()

	for _, q := range []string{"jose", "JOSÉ", "José", "martinez", "MARTÍNEZ"} {
		groups := Search(records, q)
		if len(flatten(groups)) == 0 {
			t.Errorf("Search(%q) found nothing, want José Martínez", q)
			continue
		}
		findRecord(t, groups, "José Martínez")
	}
}

func TestSearchFirstWordIsSurnameWithoutComma(t *testing.T) {
	groups := Search(searchFixture(), "jose")

	if r := findRecord(t, groups, "José Martínez"); r.Score != ScoreSurname {
		t.Errorf("first-word surname score = %d, want %d", r.Score, ScoreSurname)
	}
}

func TestSearchSubstringFallback(t *testing.T) {
	// No token starts with "artine", but one contains it.
	groups := Search(searchFixture(), "artine")

	flat := flatten(groups)
	if len(flat) != 1 {
		t.Fatalf("got %d records, want 1 substring match: %+v", len(flat), groups)
	}
	if flat[0].Score != ScoreSubstring {
		t.Errorf("substring match score = %d, want %d", flat[0].Score, ScoreSubstring)
	}
}

func TestSearchSingleTermDepartmentUnion(t *testing.T) {
	groups := Search(searchFixture(), "ventas")

	flat := flatten(groups)
	if len(flat) != 2 {
		t.Fatalf("got %d records, want the whole VENTAS sector: %+v", len(flat), groups)
	}
	for _, r := range flat {
		if r.Department != "VENTAS" {
			t.Errorf("unexpected department %q in results", r.Department)
		}
		if r.Score != ScoreIndirect {
			t.Errorf("department-only match scored %d, want %d", r.Score, ScoreIndirect)
		}
	}
}

func TestSearchMultiTermSkipsDepartmentUnion(t *testing.T) {
	if groups := Search(searchFixture(), "sector ventas"); groups != nil {
		t.Errorf("multi-term department query returned %+v, want nil", groups)
	}
}

func TestSearchPlaceholderExtensionNeverExpands(t *testing.T) {
	// Suarez and Vega both sit at "N/A"; matching one must not drag the
	// other in.
	groups := Search(searchFixture(), "suarez")

	flat := flatten(groups)
	if len(flat) != 1 {
		t.Fatalf("got %d records, want 1: %+v", len(flat), groups)
	}
	if flat[0].Name != "Suarez, Pedro" {
		t.Errorf("matched %q, want Suarez, Pedro", flat[0].Name)
	}
}

func TestSearchGroupOrdering(t *testing.T) {
	records := []PersonnelRecord{
		NewRecord("1", "Perez, Juan", "ZONA NORTE", "300"),
		NewRecord("2", "Gomez, Ana", "ANEXO", "300"),
	}

	// Name hit in ZONA NORTE outranks the co-located ANEXO record, so
	// score ordering beats the alphabet.
	groups := Search(records, "perez")
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2: %+v", len(groups), groups)
	}
	if groups[0].Department != "ZONA NORTE" || groups[1].Department != "ANEXO" {
		t.Errorf("group order = [%s, %s], want score-descending", groups[0].Department, groups[1].Department)
	}

	// All-indirect results tie on score and fall back to the alphabet.
	groups = Search(records, "300")
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2: %+v", len(groups), groups)
	}
	if groups[0].Department != "ANEXO" || groups[1].Department != "ZONA NORTE" {
		t.Errorf("group order = [%s, %s], want alphabetical on tie", groups[0].Department, groups[1].Department)
	}
}

func TestSearchRecordOrderingWithinGroup(t *testing.T) {
	groups := Search(searchFixture(), "perez")

	if len(groups) == 0 || groups[0].Department != "COMPRAS" {
		t.Fatalf("unexpected groups: %+v", groups)
	}
	recs := groups[0].Records
	if len(recs) != 2 {
		t.Fatalf("COMPRAS group has %d records, want 2", len(recs))
	}
	if recs[0].Name != "Perez, Juan" || recs[1].Name != "Gomez, Ana" {
		t.Errorf("within-group order = [%s, %s], want score-descending", recs[0].Name, recs[1].Name)
	}
}

func TestSearchLeavesInputUntouched(t *testing.T) {
	records := searchFixture()

	Search(records, "perez")

	for _, r := range records {
		if r.Score != 0 || r.Terms != nil {
			t.Fatalf("Search mutated the shared record list: %+v", r)
		}
	}
}

func TestSearchTermsCarryQueryTokens(t *testing.T) {
	groups := Search(searchFixture(), "juan perez")

	r := findRecord(t, groups, "Perez, Juan")
	if len(r.Terms) != 2 || r.Terms[0] != "juan" || r.Terms[1] != "perez" {
		t.Errorf("Terms = %v, want the normalized query tokens", r.Terms)
	}
}

func TestQueryBranch(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"perez", BranchName},
		{"juan perez", BranchName},
		{"José", BranchName},
		{"4125", BranchExtension},
		{"41 25", BranchExtension},
		{"", BranchRejected},
		{"p", BranchRejected},
		{"  ", BranchRejected},
		{"©®", BranchRejected},
		{"sala 3", BranchName},
	}

	for _, tt := range tests {
		if got := QueryBranch(tt.query); got != tt.want {
			t.Errorf("QueryBranch(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}
