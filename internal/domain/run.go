package domain

// RunSummary holds the per-run counters reported in the finishing event.
type RunSummary struct {
	FilesFound   int
	FilesNew     int
	FilesSkipped int
	FilesSuccess int
	FilesFailure int
}

// Status derives the run outcome: SUCCESS iff no file failed. Skipped files
// never count against the run.
func (s RunSummary) Status() EventStatus {
	if s.FilesFailure > 0 {
		return StatusFailure
	}
	return StatusSuccess
}

// Metadata renders the summary in the shape persisted with the finishing
// event.
func (s RunSummary) Metadata() Metadata {
	return Metadata{
		"files_found":   s.FilesFound,
		"files_new":     s.FilesNew,
		"files_skipped": s.FilesSkipped,
		"files_success": s.FilesSuccess,
		"files_failure": s.FilesFailure,
	}
}
