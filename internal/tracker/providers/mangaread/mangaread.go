// Package mangaread reads chapter lists straight from mangaread.org title
// pages.
package mangaread

import (
	"context"
	"net/http"

	"github.com/vrsandeep/manga-sync/internal/models"
	"github.com/vrsandeep/manga-sync/internal/tracker/providers"
)

const (
	Domain         = "mangaread.org"
	defaultBaseURL = "https://www.mangaread.org"
	chapterLinks   = "li.wp-manga-chapter > a"
)

// Provider implements models.Provider for mangaread.org.
type Provider struct {
	providers.Base
}

func New(client *http.Client) *Provider {
	return NewWithBaseURL(client, defaultBaseURL)
}

// NewWithBaseURL points the provider at another host, such as a test server.
func NewWithBaseURL(client *http.Client, baseURL string) *Provider {
	return &Provider{Base: providers.Base{Client: client, BaseURL: baseURL, Name: Domain}}
}

// FetchChapters reads the chapter list of the title page at path. The page
// lists chapters newest first.
func (p *Provider) FetchChapters(ctx context.Context, path string, _ *string) ([]models.ChapterLink, error) {
	doc, err := p.GetDocument(ctx, p.BaseURL+path)
	if err != nil {
		return nil, err
	}
	return p.CollectAttr(doc, chapterLinks, "href")
}

// ExtractExternalID returns nil: title pages carry the chapter list.
func (p *Provider) ExtractExternalID(ctx context.Context, path string) (*string, error) {
	return nil, nil
}
