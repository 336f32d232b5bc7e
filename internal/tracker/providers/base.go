package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/vrsandeep/manga-sync/internal/models"
	"github.com/vrsandeep/manga-sync/internal/util"
)

// maxBodyBytes caps how much of a remote page is read.
const maxBodyBytes = 8 << 20

// Base carries what every HTML provider shares: the HTTP client, the site
// root and the common chapter matcher. Providers embed it.
type Base struct {
	Client  *http.Client
	BaseURL string
	Name    string
}

// Domain returns the registry key of the provider.
func (b *Base) Domain() string {
	return b.Name
}

// CountNewChapters is shared by every site: the position of the first
// locator ending in marker.
func (b *Base) CountNewChapters(chapters []models.ChapterLink, marker string) (int, error) {
	return util.CountNewChapters(chapters, marker)
}

// get issues a GET for url. Transport failures and non-2xx responses are
// reported as ErrHTTP. The caller closes the body.
func (b *Base) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, models.NewHTTPError(b.Name, "failed to build request", err)
	}

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, models.NewHTTPError(b.Name, "request failed", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, models.NewHTTPError(b.Name, fmt.Sprintf("unexpected status %d from %s", resp.StatusCode, url), nil)
	}
	return resp, nil
}

// GetBody fetches url and returns its raw body.
func (b *Base) GetBody(ctx context.Context, url string) ([]byte, error) {
	resp, err := b.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, models.NewHTTPError(b.Name, "failed to read response body", err)
	}
	return body, nil
}

// GetDocument fetches url and parses it as HTML.
func (b *Base) GetDocument(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := b.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, models.NewHTTPError(b.Name, "failed to read response body", err)
	}
	return doc, nil
}

// CollectAttr returns attr of every element matched by selector, in
// document order, as chapter links. An empty result is ErrParse.
func (b *Base) CollectAttr(doc *goquery.Document, selector, attr string) ([]models.ChapterLink, error) {
	var chapters []models.ChapterLink
	doc.Find(selector).Each(func(i int, s *goquery.Selection) {
		if v, ok := s.Attr(attr); ok {
			chapters = append(chapters, models.ChapterLink{Href: v})
		}
	})
	if len(chapters) == 0 {
		return nil, models.NewParseError(b.Name, fmt.Sprintf("no chapters matched %q", selector))
	}
	return chapters, nil
}
