package domain

// ImportOutcome is the per-file result of an import.
type ImportOutcome string

// Import outcomes.
const (
	ImportImported ImportOutcome = "imported"
	ImportSkipped  ImportOutcome = "skipped"
	ImportFailed   ImportOutcome = "failed"
)

// ImportResult describes what happened to one file.
type ImportResult struct {
	Path    string        `json:"path"`
	Outcome ImportOutcome `json:"outcome"`

	// ArchiveID is empty when the file never reached the catalog.
	ArchiveID string `json:"archive_id,omitempty"`

	// Reason explains a skip or failure.
	Reason string `json:"reason,omitempty"`
}

// ImportSummary aggregates a batch.
type ImportSummary struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`

	// Archives lists the IDs created by this batch, including failed ones.
	Archives []string       `json:"archives"`
	Results  []ImportResult `json:"results"`
}

// Add records one result.
func (s *ImportSummary) Add(r ImportResult) {
	switch r.Outcome {
	case ImportImported:
		s.Imported++
	case ImportSkipped:
		s.Skipped++
	case ImportFailed:
		s.Failed++
	}
	if r.ArchiveID != "" && r.Outcome != ImportSkipped {
		s.Archives = append(s.Archives, r.ArchiveID)
	}
	s.Results = append(s.Results, r)
}

// ImportStepsPerArchive is the number of progress steps reported per archive.
const ImportStepsPerArchive = 6

// ProgressEvent is emitted while a batch runs.
type ProgressEvent struct {
	Operation string `json:"operation"`
	Current   int    `json:"current"`
	Total     int    `json:"total"`
	Step      string `json:"step"`
	Message   string `json:"message"`
	Complete  bool   `json:"complete"`
}
