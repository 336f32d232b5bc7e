// Package syncer compares each tracked source's latest read chapter with the
// remote chapter feed and records how many chapters are unread.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/vrsandeep/manga-sync/internal/cache"
	"github.com/vrsandeep/manga-sync/internal/metrics"
	"github.com/vrsandeep/manga-sync/internal/models"
)

// JobID tags progress updates published by a full pass.
const JobID = "unread-sync"

// SourceStore is the persistence the syncer reads sources from and writes
// results back to.
type SourceStore interface {
	ListSyncSources(ctx context.Context, domains []string) ([]models.SyncSourceInfo, error)
	GetSyncSource(ctx context.Context, sourceID int64) (models.SyncSourceInfo, error)
	UpdateExternalID(ctx context.Context, sourceID int64, externalID string) error
	UpdateUnreadCount(ctx context.Context, sourceID int64, count int) error
}

// ProviderRegistry resolves the provider for a website domain.
type ProviderRegistry interface {
	Get(domain string) (models.Provider, bool)
	SupportedDomains() []string
}

// Publisher receives progress updates, typically the websocket hub.
type Publisher interface {
	BroadcastJSON(v interface{})
}

// Service runs synchronization passes. A Service is safe for concurrent
// use: a scheduled pass and on-demand refreshes may overlap.
type Service struct {
	store    SourceStore
	registry ProviderRegistry
	feeds    *cache.FeedCache
	metrics  metrics.Recorder
	progress Publisher
}

// New creates a Service. rec and progress may be nil.
func New(store SourceStore, registry ProviderRegistry, feeds *cache.FeedCache, rec metrics.Recorder, progress Publisher) *Service {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{
		store:    store,
		registry: registry,
		feeds:    feeds,
		metrics:  rec,
		progress: progress,
	}
}

// SyncSource synchronizes one source. Every failure is reported in the
// result's Error field; it never aborts the caller.
func (s *Service) SyncSource(ctx context.Context, info models.SyncSourceInfo) models.SyncResult {
	count, _, err := s.syncSource(ctx, info)
	return s.result(info, count, err)
}

// RefreshSource synchronizes a single source by id, typically right after
// a reader recorded a new chapter. It returns an error only when the source
// cannot be loaded or no feed at all could be obtained; other failures are
// reported in the result.
func (s *Service) RefreshSource(ctx context.Context, sourceID int64) (models.SyncResult, error) {
	info, err := s.store.GetSyncSource(ctx, sourceID)
	if err != nil {
		return models.SyncResult{SourceID: sourceID, Error: err.Error()}, err
	}

	count, haveFeed, err := s.syncSource(ctx, info)
	result := s.result(info, count, err)
	if err != nil && !haveFeed {
		return result, err
	}
	return result, nil
}

// SyncAll synchronizes every source hosted on a supported domain, one at a
// time. Cancelling ctx stops the pass between sources; the remaining
// sources are reported as cancelled.
func (s *Service) SyncAll(ctx context.Context) models.SyncSummary {
	start := time.Now()
	runID := uuid.NewString()

	sources, err := s.store.ListSyncSources(ctx, s.registry.SupportedDomains())
	if err != nil {
		log.Printf("Sync pass %s: failed to load sources: %v", runID, err)
		return models.NewSyncSummary(nil)
	}

	log.Printf("Sync pass %s: synchronizing %d sources", runID, len(sources))
	results := make([]models.SyncResult, 0, len(sources))
	for i, info := range sources {
		var result models.SyncResult
		if ctx.Err() != nil {
			result = s.result(info, 0, fmt.Errorf("sync cancelled: %w", ctx.Err()))
		} else {
			result = s.SyncSource(ctx, info)
		}
		results = append(results, result)
		s.publish(runID, result, i+1, len(sources))
	}

	summary := models.NewSyncSummary(results)
	s.metrics.RecordSyncPass(time.Since(start), summary.TotalNewChapters())
	s.publishDone(runID, summary)
	return summary
}

// syncSource reports the unread count of info. haveFeed tells whether a
// chapter feed was obtained, from the cache or the network.
func (s *Service) syncSource(ctx context.Context, info models.SyncSourceInfo) (count int, haveFeed bool, err error) {
	provider, ok := s.registry.Get(info.Domain)
	if !ok {
		return 0, false, fmt.Errorf("%w: no strategy for domain %s", models.ErrUnsupportedDomain, info.Domain)
	}

	externalID := info.ExternalMangaID
	if externalID == nil {
		id, err := provider.ExtractExternalID(ctx, info.Path)
		if err != nil {
			return 0, false, err
		}
		if id != nil {
			if err := s.store.UpdateExternalID(ctx, info.SourceID, *id); err != nil {
				log.Printf("Failed to store external id for source %d: %v", info.SourceID, err)
			}
			externalID = id
		}
	}

	chapters, ok := s.feeds.Get(info.Domain, info.Path)
	s.metrics.RecordCacheLookup(ok)
	if !ok {
		chapters, err = s.fetch(ctx, provider, info, externalID)
		if err != nil {
			return 0, false, err
		}
	}

	if info.CurrentChapter == nil {
		count = len(chapters)
	} else {
		count, err = provider.CountNewChapters(chapters, *info.CurrentChapter)
		if errors.Is(err, models.ErrChapterNotFound) {
			// The cached feed may predate the chapter just read.
			s.metrics.RecordChapterRetry(info.Domain)
			fresh, fetchErr := s.fetch(ctx, provider, info, externalID)
			if fetchErr != nil {
				return 0, true, fetchErr
			}
			count, err = provider.CountNewChapters(fresh, *info.CurrentChapter)
		}
		if err != nil {
			return 0, true, err
		}
	}

	if err := s.store.UpdateUnreadCount(ctx, info.SourceID, count); err != nil {
		log.Printf("Failed to store unread count for source %d: %v", info.SourceID, err)
	}
	return count, true, nil
}

func (s *Service) fetch(ctx context.Context, provider models.Provider, info models.SyncSourceInfo, externalID *string) ([]models.ChapterLink, error) {
	chapters, err := provider.FetchChapters(ctx, info.Path, externalID)
	if err != nil {
		return nil, err
	}
	s.feeds.Set(info.Domain, info.Path, chapters)
	return chapters, nil
}

func (s *Service) result(info models.SyncSourceInfo, count int, err error) models.SyncResult {
	result := models.SyncResult{
		SourceID:  info.SourceID,
		MangaID:   info.MangaID,
		MangaName: info.MangaName,
		Domain:    info.Domain,
	}
	if err != nil {
		result.Error = err.Error()
	} else {
		result.UnreadCount = &count
	}
	s.metrics.RecordSourceSynced(info.Domain, err == nil)
	return result
}

func (s *Service) publish(runID string, result models.SyncResult, done, total int) {
	if s.progress == nil {
		return
	}
	update := models.ProgressUpdate{
		JobID:    JobID,
		RunID:    runID,
		ItemID:   result.SourceID,
		Progress: float64(done) / float64(total) * 100,
		Status:   "completed",
	}
	if result.OK() {
		update.Message = fmt.Sprintf("%s (%s): %d unread", result.MangaName, result.Domain, *result.UnreadCount)
	} else {
		update.Status = "failed"
		update.Message = fmt.Sprintf("%s (%s): %s", result.MangaName, result.Domain, result.Error)
	}
	s.progress.BroadcastJSON(update)
}

func (s *Service) publishDone(runID string, summary models.SyncSummary) {
	if s.progress == nil {
		return
	}
	s.progress.BroadcastJSON(models.ProgressUpdate{
		JobID:    JobID,
		RunID:    runID,
		Progress: 100,
		Status:   "completed",
		Message: fmt.Sprintf("%d sources synced, %d errors, %d new chapters total",
			summary.Total, summary.Errors, summary.TotalNewChapters()),
		Done: true,
	})
}
