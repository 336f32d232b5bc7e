// Package mangabuddy reads chapter lists from mangabuddy.com. Chapters are
// served by an API keyed by the numeric book id embedded in the title page.
package mangabuddy

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/vrsandeep/manga-sync/internal/models"
	"github.com/vrsandeep/manga-sync/internal/tracker/providers"
)

const (
	Domain         = "mangabuddy.com"
	defaultBaseURL = "https://mangabuddy.com"
	chapterOptions = "#chapter-list option"
)

var bookIDPattern = regexp.MustCompile(`var\s+bookId\s*=\s*(\d+);`)

// Provider implements models.Provider for mangabuddy.com.
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

// FetchChapters asks the chapters API for the book identified by
// externalID. The path is not used.
func (p *Provider) FetchChapters(ctx context.Context, _ string, externalID *string) ([]models.ChapterLink, error) {
	if externalID == nil || *externalID == "" {
		return nil, models.NewParseError(Domain, "external manga id is required")
	}

	doc, err := p.GetDocument(ctx, fmt.Sprintf("%s/api/manga/%s/chapters", p.BaseURL, *externalID))
	if err != nil {
		return nil, err
	}
	return p.CollectAttr(doc, chapterOptions, "value")
}

// ExtractExternalID reads the book id from the title page at path.
func (p *Provider) ExtractExternalID(ctx context.Context, path string) (*string, error) {
	body, err := p.GetBody(ctx, p.BaseURL+path)
	if err != nil {
		return nil, err
	}

	m := bookIDPattern.FindSubmatch(body)
	if m == nil {
		return nil, models.NewParseError(Domain, "could not find bookId in page")
	}
	id := string(m[1])
	return &id, nil
}
