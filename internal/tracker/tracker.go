// Package tracker assembles the set of website providers the service
// knows how to synchronize.
package tracker

import (
	"net/http"

	"github.com/vrsandeep/manga-sync/internal/tracker/providers"
	"github.com/vrsandeep/manga-sync/internal/tracker/providers/mangabuddy"
	"github.com/vrsandeep/manga-sync/internal/tracker/providers/mangaread"
	"github.com/vrsandeep/manga-sync/internal/tracker/providers/mockread"
)

// NewRegistry builds the production registry. All network providers share
// client so they share its cookies and rate limits.
func NewRegistry(client *http.Client, withMock bool) *providers.Registry {
	r := providers.NewRegistry(
		mangaread.New(client),
		mangabuddy.New(client),
	)
	if withMock {
		r.Register(mockread.New())
	}
	return r
}
