package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vrsandeep/manga-sync/internal/models"
)

type stubProvider struct {
	Base
}

func (s *stubProvider) FetchChapters(ctx context.Context, path string, externalID *string) ([]models.ChapterLink, error) {
	return nil, nil
}

func (s *stubProvider) ExtractExternalID(ctx context.Context, path string) (*string, error) {
	return nil, nil
}

func newStub(domain string) *stubProvider {
	return &stubProvider{Base: Base{Name: domain}}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(newStub("mangabuddy.com"), newStub("mangaread.org"))

	p, ok := r.Get("mangaread.org")
	require.True(t, ok)
	assert.Equal(t, "mangaread.org", p.Domain())

	_, ok = r.Get("unknown.example")
	assert.False(t, ok)

	r.Register(newStub("aaa.example"))
	assert.Equal(t, []string{"aaa.example", "mangabuddy.com", "mangaread.org"}, r.SupportedDomains())
}

func TestRegistryDuplicatePanics(t *testing.T) {
	r := NewRegistry(newStub("mangabuddy.com"))
	assert.Panics(t, func() {
		r.Register(newStub("mangabuddy.com"))
	})
}

func TestEmptyRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.SupportedDomains())
}
