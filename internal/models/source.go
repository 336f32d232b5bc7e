package models

// Source is a tracked (manga, website) pairing.
type Source struct {
	ID                  int64   `json:"id"`
	MangaID             int64   `json:"manga_id"`
	WebsiteID           int64   `json:"website_id"`
	Path                string  `json:"path"`
	ExternalMangaID     *string `json:"external_manga_id,omitempty"`
	NumberUnreadChapter *int64  `json:"number_unread_chapter"`
}

// SyncSourceInfo joins a source with its manga name, website domain and the
// most recently recorded chapter marker. It is built fresh for every pass
// and never persisted.
type SyncSourceInfo struct {
	SourceID        int64
	MangaID         int64
	MangaName       string
	Domain          string
	Path            string
	ExternalMangaID *string
	CurrentChapter  *string
}
