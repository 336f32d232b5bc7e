package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/vrsandeep/manga-sync/internal/models"
)

// ListWebsites returns every known website ordered by domain.
func (s *Store) ListWebsites(ctx context.Context) ([]*models.Website, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, domain FROM website ORDER BY domain")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	websites := []*models.Website{}
	for rows.Next() {
		var w models.Website
		if err := rows.Scan(&w.ID, &w.Domain); err != nil {
			return nil, err
		}
		websites = append(websites, &w)
	}
	return websites, rows.Err()
}

// GetWebsiteByDomain looks up a website. It returns ErrUnknownWebsite when
// the domain has not been registered.
func (s *Store) GetWebsiteByDomain(ctx context.Context, domain string) (*models.Website, error) {
	var w models.Website
	err := s.db.QueryRowContext(ctx, "SELECT id, domain FROM website WHERE domain = ?", domain).Scan(&w.ID, &w.Domain)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnknownWebsite
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateWebsite registers a new website domain.
func (s *Store) CreateWebsite(ctx context.Context, domain string) (*models.Website, error) {
	domain = strings.TrimSpace(domain)
	res, err := s.db.ExecContext(ctx, "INSERT INTO website (domain) VALUES (?)", domain)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrWebsiteExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Website{ID: id, Domain: domain}, nil
}

// DeleteWebsite removes a website and, through the foreign key cascade,
// every source hosted on it.
func (s *Store) DeleteWebsite(ctx context.Context, domain string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM website WHERE domain = ?", domain)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUnknownWebsite
	}
	return nil
}
