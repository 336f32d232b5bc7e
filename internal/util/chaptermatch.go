package util

import (
	"fmt"
	"strings"

	"github.com/vrsandeep/manga-sync/internal/models"
)

// CountNewChapters returns the position of the first chapter (newest first)
// whose locator ends with marker, with or without a trailing slash. That
// position is the number of chapters released after marker.
//
// The comparison is a plain suffix match. It relies on sites prefixing the
// number with a textual anchor such as "chapter-", otherwise "1" would also
// match ".../21".
func CountNewChapters(chapters []models.ChapterLink, marker string) (int, error) {
	withSlash := marker + "/"
	for i, chapter := range chapters {
		if strings.HasSuffix(chapter.Href, withSlash) || strings.HasSuffix(chapter.Href, marker) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", models.ErrChapterNotFound, marker)
}

// NormalizePath drops a single trailing slash so that "/manga/x/" and
// "/manga/x" refer to the same source.
func NormalizePath(path string) string {
	if len(path) > 1 {
		return strings.TrimSuffix(path, "/")
	}
	return path
}
