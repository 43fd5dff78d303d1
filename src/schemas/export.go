package schemas

// ExportRow maps discovered column headers to values. Keys missing from a
// row render as empty cells.
type ExportRow map[string]interface{}

// ExportDataset is the flattened tabular form of a payload: a stable header
// list (union of row keys, first-seen order) plus row mappings.
type ExportDataset struct {
	Title   string                 `json:"title"`
	Headers []string               `json:"headers"`
	Rows    []ExportRow            `json:"rows"`
	Summary map[string]interface{} `json:"summary"`
	Filters map[string]interface{} `json:"filters"`
	Meta    map[string]interface{} `json:"meta"`
}

// ExportFile is a rendered download: bytes plus the content headers the
// HTTP layer should answer with.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
