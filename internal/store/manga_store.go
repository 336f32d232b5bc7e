package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vrsandeep/manga-sync/internal/models"
	"github.com/vrsandeep/manga-sync/internal/util"
)

const lastReadSubquery = `(SELECT MAX(c.updated_at) FROM chapter c WHERE c.manga_id = m.id)`

// ListManga returns one page of manga, most recently read first unless the
// filter asks otherwise.
func (s *Store) ListManga(ctx context.Context, f models.MangaFilter) ([]*models.MangaListItem, error) {
	if f.Size <= 0 {
		f.Size = 20
	}
	if f.Page <= 0 {
		f.Page = 1
	}

	var sb strings.Builder
	var args []any
	sb.WriteString(`
		SELECT m.id, m.name, m.cover_small, `)
	sb.WriteString(fmt.Sprintf(currentChapterSubquery, "m.id"))
	sb.WriteString(`,
		       (SELECT MAX(s.number_unread_chapter) FROM source s WHERE s.manga_id = m.id)
		FROM manga m`)

	var where []string
	if f.Text != "" {
		where = append(where, "m.name LIKE ?")
		args = append(args, "%"+f.Text+"%")
	}
	if f.Website != "" {
		where = append(where, `EXISTS (SELECT 1 FROM source s JOIN website w ON w.id = s.website_id
			WHERE s.manga_id = m.id AND w.domain = ?)`)
		args = append(args, f.Website)
	}
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	dir := "DESC"
	if f.ReadAtAsc {
		dir = "ASC"
	}
	sb.WriteString(fmt.Sprintf(" ORDER BY %s %s, m.id %s LIMIT ? OFFSET ?", lastReadSubquery, dir, dir))
	args = append(args, f.Size, (f.Page-1)*f.Size)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.MangaListItem{}
	for rows.Next() {
		var item models.MangaListItem
		var current sql.NullString
		var unread sql.NullInt64
		if err := rows.Scan(&item.ID, &item.Name, &item.Cover, &current, &unread); err != nil {
			return nil, err
		}
		item.CurrentChapter = nullStringPtr(current)
		item.NumberUnreadChapter = nullInt64Ptr(unread)
		items = append(items, &item)
	}
	return items, rows.Err()
}

// GetManga returns the detail view of a manga or ErrNotFound.
func (s *Store) GetManga(ctx context.Context, id int64) (*models.MangaDetail, error) {
	query := fmt.Sprintf(`
		SELECT m.id, m.name, m.cover, %s,
		       (SELECT MAX(s.number_unread_chapter) FROM source s WHERE s.manga_id = m.id)
		FROM manga m WHERE m.id = ?`, fmt.Sprintf(currentChapterSubquery, "m.id"))

	var detail models.MangaDetail
	var current sql.NullString
	var unread sql.NullInt64
	err := s.db.QueryRowContext(ctx, query, id).Scan(&detail.ID, &detail.Name, &detail.Cover, &current, &unread)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	detail.CurrentChapter = nullStringPtr(current)
	detail.NumberUnreadChapter = nullInt64Ptr(unread)

	// Selected directly so the driver parses the DATETIME column.
	var lastRead time.Time
	err = s.db.QueryRowContext(ctx,
		"SELECT updated_at FROM chapter WHERE manga_id = ? ORDER BY updated_at DESC, id DESC LIMIT 1", id).Scan(&lastRead)
	switch {
	case err == nil:
		detail.LastReadAt = &lastRead
	case !errors.Is(err, sql.ErrNoRows):
		return nil, err
	}
	return &detail, nil
}

// CreateManga inserts a manga and, when given, its first source in a single
// transaction.
func (s *Store) CreateManga(ctx context.Context, in models.NewManga) (*models.Manga, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	manga := &models.Manga{
		Name:       strings.TrimSpace(in.Name),
		Cover:      in.Cover,
		CoverSmall: in.CoverSmall,
		CreatedAt:  time.Now().UTC(),
	}
	res, err := tx.ExecContext(ctx, "INSERT INTO manga (name, cover, cover_small, created_at) VALUES (?, ?, ?, ?)",
		manga.Name, manga.Cover, manga.CoverSmall, manga.CreatedAt)
	if err != nil {
		return nil, err
	}
	if manga.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}

	if in.SourcePath != nil && in.WebsiteDomain != nil {
		websiteID, err := websiteIDTx(ctx, tx, *in.WebsiteDomain)
		if err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO source (manga_id, website_id, path) VALUES (?, ?, ?)",
			manga.ID, websiteID, util.NormalizePath(*in.SourcePath)); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return manga, nil
}

// UpdateManga applies a partial update. It returns the id of the source
// selected through WebsiteDomain, or nil when the update named no website.
// A chapter row is only recorded when the number differs from the current
// chapter.
func (s *Store) UpdateManga(ctx context.Context, id int64, u models.MangaUpdate) (*int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT 1 FROM manga WHERE id = ?", id).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var sets []string
	var args []any
	if u.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, strings.TrimSpace(*u.Name))
	}
	if u.Cover != nil {
		sets = append(sets, "cover = ?")
		args = append(args, *u.Cover)
	}
	if u.CoverSmall != nil {
		sets = append(sets, "cover_small = ?")
		args = append(args, *u.CoverSmall)
	}
	if len(sets) > 0 {
		args = append(args, id)
		if _, err := tx.ExecContext(ctx, "UPDATE manga SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
			return nil, err
		}
	}

	var sourceID *int64
	if u.WebsiteDomain != nil {
		websiteID, err := websiteIDTx(ctx, tx, *u.WebsiteDomain)
		if err != nil {
			return nil, err
		}
		if u.SourcePath != nil {
			// Moving a source to another path invalidates its resolved id
			// and unread count.
			_, err = tx.ExecContext(ctx, `
				INSERT INTO source (manga_id, website_id, path) VALUES (?, ?, ?)
				ON CONFLICT(manga_id, website_id) DO UPDATE SET
					path = excluded.path,
					external_manga_id = CASE WHEN source.path = excluded.path THEN source.external_manga_id END,
					number_unread_chapter = CASE WHEN source.path = excluded.path THEN source.number_unread_chapter END`,
				id, websiteID, util.NormalizePath(*u.SourcePath))
			if err != nil {
				return nil, err
			}
		}

		var sid int64
		err = tx.QueryRowContext(ctx, "SELECT id FROM source WHERE manga_id = ? AND website_id = ?", id, websiteID).Scan(&sid)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSource
		}
		if err != nil {
			return nil, err
		}
		sourceID = &sid
	}

	if u.ChapterNumber != nil {
		number := strings.TrimSpace(*u.ChapterNumber)
		var latest sql.NullString
		err := tx.QueryRowContext(ctx, "SELECT "+fmt.Sprintf(currentChapterSubquery, "?"), id).Scan(&latest)
		if err != nil {
			return nil, err
		}
		if !latest.Valid || latest.String != number {
			if _, err := tx.ExecContext(ctx, "INSERT INTO chapter (manga_id, number, updated_at) VALUES (?, ?, ?)",
				id, number, time.Now().UTC()); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return sourceID, nil
}

// DeleteManga removes a manga with its sources and history.
func (s *Store) DeleteManga(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM manga WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// History returns the recorded read positions of a manga, newest first.
func (s *Store) History(ctx context.Context, mangaID int64) ([]*models.HistoryItem, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT number, updated_at FROM chapter WHERE manga_id = ? ORDER BY updated_at DESC, id DESC", mangaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []*models.HistoryItem{}
	for rows.Next() {
		var item models.HistoryItem
		if err := rows.Scan(&item.Number, &item.UpdatedAt); err != nil {
			return nil, err
		}
		history = append(history, &item)
	}
	return history, rows.Err()
}

func websiteIDTx(ctx context.Context, tx *sql.Tx, domain string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, "SELECT id FROM website WHERE domain = ?", domain).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUnknownWebsite
	}
	return id, err
}
