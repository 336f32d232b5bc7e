package models

// ChapterLink is one remote chapter entry. Href is the locator the chapter
// marker is matched against.
type ChapterLink struct {
	Href string `json:"href"`
}

// SyncResult is the outcome of synchronizing a single source. Exactly one
// of UnreadCount and Error is set.
type SyncResult struct {
	SourceID    int64  `json:"source_id"`
	MangaID     int64  `json:"manga_id"`
	MangaName   string `json:"manga_name"`
	Domain      string `json:"domain"`
	UnreadCount *int   `json:"unread_count,omitempty"`
	Error       string `json:"error,omitempty"`
}

// OK reports whether the source synchronized successfully.
func (r SyncResult) OK() bool {
	return r.Error == ""
}

// SyncSummary aggregates the results of one pass.
type SyncSummary struct {
	Total   int          `json:"total"`
	Success int          `json:"success"`
	Errors  int          `json:"errors"`
	Results []SyncResult `json:"results"`
}

// NewSyncSummary tallies a list of results.
func NewSyncSummary(results []SyncResult) SyncSummary {
	summary := SyncSummary{Total: len(results), Results: results}
	if summary.Results == nil {
		summary.Results = []SyncResult{}
	}
	for _, r := range results {
		if r.OK() {
			summary.Success++
		} else {
			summary.Errors++
		}
	}
	return summary
}

// TotalNewChapters sums the unread counts of every successful result.
func (s SyncSummary) TotalNewChapters() int {
	total := 0
	for _, r := range s.Results {
		if r.UnreadCount != nil {
			total += *r.UnreadCount
		}
	}
	return total
}

// Failed returns the results that carry an error.
func (s SyncSummary) Failed() []SyncResult {
	var failed []SyncResult
	for _, r := range s.Results {
		if !r.OK() {
			failed = append(failed, r)
		}
	}
	return failed
}
