package directory

// Grid bounds. The source workbooks never carry real data past these
// limits, but they do carry trailing noise (merged-cell artifacts, stray
// formatting rows), so everything beyond is ignored.
const (
	// MaxRows caps how many rows of the first sheet are considered.
	MaxRows = 800

	// MaxColumns caps how many cells per row are considered.
	MaxColumns = 8

	// HeaderScanRows is how deep header detection looks before giving up
	// and falling back to the default column positions.
	HeaderScanRows = 20
)

// Layout is the heuristic configuration for one family of source
// spreadsheets: the header token dictionaries, the default column
// positions used when no header row is recognized, and the literal
// boilerplate markers baked into the sheets.
//
// All tokens, phrases and excluded names are stored in normalized form
// (see package normalize) and compared against normalized cells.
type Layout struct {
	// Header token dictionaries, one per record field. A cell labels a
	// column when its normalized text contains any token.
	ExtensionTokens  []string
	DepartmentTokens []string
	TitleTokens      []string
	NameTokens       []string

	// Default column indices, used when detection finds no header row
	// and as fallbacks when a detected header lacks a column.
	DefaultExtensionIndex  int
	DefaultDepartmentIndex int
	DefaultTitleIndex      int
	DefaultNameIndex       int

	// StopPhrases terminate extraction: a contentless row mentioning one
	// of these marks the end of the usable directory, and everything
	// after it is discarded.
	StopPhrases []string

	// ExcludedNames are boilerplate values that leak into name cells and
	// must never become records.
	ExcludedNames []string
}

// DefaultLayout returns the layout of the company phone guide as it has
// shipped for years. The default indices {1, 2, 3, 4} and the literal
// phrases match the historical sheets and are load-bearing; change them
// only alongside the sheets themselves.
func DefaultLayout() Layout {
	return Layout{
		ExtensionTokens:  []string{"interno", "int", "ext", "extension", "anexo", "telefono", "tel"},
		DepartmentTokens: []string{"sector", "area", "departamento", "depto", "gerencia", "oficina", "dependencia"},
		TitleTokens:      []string{"cargo", "puesto", "funcion", "titulo"},
		NameTokens:       []string{"apellido", "nombre", "agente", "empleado", "personal", "responsable"},

		DefaultExtensionIndex:  1,
		DefaultDepartmentIndex: 2,
		DefaultTitleIndex:      3,
		DefaultNameIndex:       4,

		StopPhrases: []string{
			"telefonos internos reserva",
			"reserva 6000",
		},

		ExcludedNames: []string{
			// The guide's contact address, pasted into a name cell on
			// every published revision.
			"guiainternacmetcomar",
			// A sector label that drifts into the name column on rows
			// describing the sector head position.
			"subgerencia de sector",
		},
	}
}
