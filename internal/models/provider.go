package models

import "context"

// Provider defines the contract that every website connector must implement.
type Provider interface {
	// Domain is the hostname this provider services. It is the registry key.
	Domain() string
	// FetchChapters returns the chapter feed for path, newest first. Sites
	// whose chapter list is keyed by a site-internal id receive it in externalID.
	FetchChapters(ctx context.Context, path string, externalID *string) ([]ChapterLink, error)
	// ExtractExternalID resolves the site-internal id for path. Sites that
	// do not need one return nil without an error.
	ExtractExternalID(ctx context.Context, path string) (*string, error)
	// CountNewChapters returns how many chapters are newer than marker.
	CountNewChapters(chapters []ChapterLink, marker string) (int, error)
}
