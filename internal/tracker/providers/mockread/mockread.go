// A mock provider for development and testing purposes. It serves a
// deterministic chapter feed without making network calls.
package mockread

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/vrsandeep/manga-sync/internal/models"
	"github.com/vrsandeep/manga-sync/internal/tracker/providers"
)

const (
	Domain          = "mockread.local"
	DefaultChapters = 25
)

// Provider serves "chapter-N" down to "chapter-1" for any path. A path
// ending in a number, such as "/series/40", yields that many chapters.
type Provider struct {
	providers.Base
}

func New() *Provider {
	return &Provider{Base: providers.Base{Name: Domain}}
}

func (p *Provider) FetchChapters(ctx context.Context, path string, _ *string) ([]models.ChapterLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.NewHTTPError(Domain, "request cancelled", err)
	}

	path = strings.TrimSuffix(path, "/")
	count := DefaultChapters
	if i := strings.LastIndex(path, "/"); i >= 0 {
		if n, err := strconv.Atoi(path[i+1:]); err == nil {
			count = n
		}
	}
	if count <= 0 {
		return nil, models.NewParseError(Domain, "no chapters found")
	}

	chapters := make([]models.ChapterLink, 0, count)
	for i := count; i >= 1; i-- {
		chapters = append(chapters, models.ChapterLink{Href: fmt.Sprintf("%s/chapter-%d", path, i)})
	}
	return chapters, nil
}

func (p *Provider) ExtractExternalID(ctx context.Context, path string) (*string, error) {
	return nil, nil
}
