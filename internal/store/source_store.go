package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vrsandeep/manga-sync/internal/models"
)

var syncSourceSelect = fmt.Sprintf(`
	SELECT s.id, s.manga_id, m.name, w.domain, s.path, s.external_manga_id,
	       %s AS current_chapter
	FROM source s
	JOIN manga m ON m.id = s.manga_id
	JOIN website w ON w.id = s.website_id`, fmt.Sprintf(currentChapterSubquery, "s.manga_id"))

func scanSyncSource(row interface{ Scan(...any) error }) (models.SyncSourceInfo, error) {
	var info models.SyncSourceInfo
	var externalID, current sql.NullString
	err := row.Scan(&info.SourceID, &info.MangaID, &info.MangaName, &info.Domain, &info.Path, &externalID, &current)
	if err != nil {
		return info, err
	}
	info.ExternalMangaID = nullStringPtr(externalID)
	info.CurrentChapter = nullStringPtr(current)
	return info, nil
}

// ListSyncSources returns every source hosted on one of domains, joined with
// its manga name and latest chapter marker. Sources on other domains are
// never returned.
func (s *Store) ListSyncSources(ctx context.Context, domains []string) ([]models.SyncSourceInfo, error) {
	if len(domains) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(domains)), ", ")
	query := syncSourceSelect + " WHERE w.domain IN (" + placeholders + ") ORDER BY s.id"
	args := make([]any, len(domains))
	for i, d := range domains {
		args[i] = d
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []models.SyncSourceInfo
	for rows.Next() {
		info, err := scanSyncSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, info)
	}
	return sources, rows.Err()
}

// GetSyncSource loads the sync view of a single source.
func (s *Store) GetSyncSource(ctx context.Context, sourceID int64) (models.SyncSourceInfo, error) {
	row := s.db.QueryRowContext(ctx, syncSourceSelect+" WHERE s.id = ?", sourceID)
	info, err := scanSyncSource(row)
	if err == sql.ErrNoRows {
		return info, ErrNotFound
	}
	return info, err
}

// UpdateExternalID stores the site-internal id resolved for a source.
func (s *Store) UpdateExternalID(ctx context.Context, sourceID int64, externalID string) error {
	return s.updateSource(ctx, "UPDATE source SET external_manga_id = ? WHERE id = ?", externalID, sourceID)
}

// UpdateUnreadCount stores the number of chapters released after the
// latest read one.
func (s *Store) UpdateUnreadCount(ctx context.Context, sourceID int64, count int) error {
	return s.updateSource(ctx, "UPDATE source SET number_unread_chapter = ? WHERE id = ?", count, sourceID)
}

func (s *Store) updateSource(ctx context.Context, query string, value any, sourceID int64) error {
	res, err := s.db.ExecContext(ctx, query, value, sourceID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("source %d: %w", sourceID, ErrNotFound)
	}
	return nil
}

// ListSources returns every source.
func (s *Store) ListSources(ctx context.Context) ([]*models.Source, error) {
	return s.querySources(ctx, "SELECT id, manga_id, website_id, path, external_manga_id, number_unread_chapter FROM source ORDER BY id")
}

// GetSourcesByManga returns the sources of a single manga.
func (s *Store) GetSourcesByManga(ctx context.Context, mangaID int64) ([]*models.Source, error) {
	return s.querySources(ctx, "SELECT id, manga_id, website_id, path, external_manga_id, number_unread_chapter FROM source WHERE manga_id = ? ORDER BY id", mangaID)
}

func (s *Store) querySources(ctx context.Context, query string, args ...any) ([]*models.Source, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sources := []*models.Source{}
	for rows.Next() {
		var src models.Source
		var externalID sql.NullString
		var unread sql.NullInt64
		if err := rows.Scan(&src.ID, &src.MangaID, &src.WebsiteID, &src.Path, &externalID, &unread); err != nil {
			return nil, err
		}
		src.ExternalMangaID = nullStringPtr(externalID)
		src.NumberUnreadChapter = nullInt64Ptr(unread)
		sources = append(sources, &src)
	}
	return sources, rows.Err()
}

// DeleteMangaSource removes the source linking a manga to the given domain.
func (s *Store) DeleteMangaSource(ctx context.Context, mangaID int64, domain string) error {
	website, err := s.GetWebsiteByDomain(ctx, domain)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM source WHERE manga_id = ? AND website_id = ?", mangaID, website.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoSource
	}
	return nil
}
