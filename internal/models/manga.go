// This file defines the core data structures (models) for the tracker.
// These structs represent the manga being followed, the websites that
// host them, and the reading history recorded against each manga.

package models

import (
	"errors"
	"strings"
	"time"
)

// Manga represents a single tracked title.
type Manga struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Cover      string    `json:"cover"`
	CoverSmall string    `json:"cover_small"`
	CreatedAt  time.Time `json:"-"`
}

// MangaListItem is one row of the manga listing, enriched with the
// latest read chapter and the highest unread count across its sources.
type MangaListItem struct {
	ID                  int64   `json:"id"`
	Name                string  `json:"name"`
	Cover               string  `json:"cover"`
	CurrentChapter      *string `json:"current_chapter"`
	NumberUnreadChapter *int64  `json:"number_unread_chapter"`
}

// MangaDetail is the single manga view.
type MangaDetail struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	Cover               string     `json:"cover"`
	CurrentChapter      *string    `json:"current_chapter"`
	LastReadAt          *time.Time `json:"last_read_at"`
	NumberUnreadChapter *int64     `json:"number_unread_chapter"`
}

// Website is a remote site that hosts manga. Domain is the registry key
// used to find the matching provider.
type Website struct {
	ID     int64  `json:"id"`
	Domain string `json:"domain"`
}

// HistoryItem is one recorded read position.
type HistoryItem struct {
	Number    string    `json:"number"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewManga is the input for creating a manga, optionally with its first
// source.
type NewManga struct {
	Name          string  `json:"name"`
	Cover         string  `json:"cover"`
	CoverSmall    string  `json:"cover_small"`
	SourcePath    *string `json:"source_path"`
	WebsiteDomain *string `json:"website_domain"`
}

// Validate checks that source_path and website_domain come together.
func (n NewManga) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return errors.New("name is required")
	}
	if (n.SourcePath == nil) != (n.WebsiteDomain == nil) {
		return errors.New("source_path and website_domain must be both present or absent")
	}
	return nil
}

// MangaUpdate is a partial update. Nil fields are left untouched.
//
// With WebsiteDomain and SourcePath set the source for that website is
// created or moved. With WebsiteDomain alone the existing source is
// selected, which lets a new ChapterNumber refresh its unread count.
type MangaUpdate struct {
	Name          *string `json:"name"`
	Cover         *string `json:"cover"`
	CoverSmall    *string `json:"cover_small"`
	SourcePath    *string `json:"source_path"`
	WebsiteDomain *string `json:"website_domain"`
	ChapterNumber *string `json:"chapter_number"`
}

func (u MangaUpdate) Validate() error {
	if u.Name == nil && u.Cover == nil && u.CoverSmall == nil &&
		u.SourcePath == nil && u.WebsiteDomain == nil && u.ChapterNumber == nil {
		return errors.New("at least one field required")
	}
	if u.SourcePath != nil && u.WebsiteDomain == nil {
		return errors.New("website_domain required if source_path exists")
	}
	if u.ChapterNumber != nil && strings.TrimSpace(*u.ChapterNumber) == "" {
		return errors.New("chapter_number must not be empty")
	}
	return nil
}

// MangaFilter narrows and orders the manga listing.
type MangaFilter struct {
	Page    int
	Size    int
	Text    string
	Website string
	// ReadAtAsc lists the least recently read manga first.
	ReadAtAsc bool
}
