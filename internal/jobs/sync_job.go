package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/vrsandeep/manga-sync/internal/models"
)

// SyncJobID identifies the periodic unread-chapter sync.
const SyncJobID = "unread-sync"

// Syncer runs one full synchronization pass.
type Syncer interface {
	SyncAll(ctx context.Context) models.SyncSummary
}

// RegisterSyncJob registers the full sync pass with the manager.
func RegisterSyncJob(jm *JobManager, syncer Syncer) {
	jm.Register(SyncJobID, "Unread Chapter Sync", func(ctx context.Context) (string, error) {
		summary := syncer.SyncAll(ctx)
		LogSummary(summary)
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("sync interrupted: %w", err)
		}
		return SummaryLine(summary), nil
	})
}

// SummaryLine renders the aggregate outcome of a pass.
func SummaryLine(summary models.SyncSummary) string {
	return fmt.Sprintf("Sync job completed: %d sources synced, %d errors, %d new chapters total",
		summary.Total, summary.Errors, summary.TotalNewChapters())
}

// LogSummary logs the aggregate line and one line per failed source.
func LogSummary(summary models.SyncSummary) {
	log.Println(SummaryLine(summary))
	for _, r := range summary.Failed() {
		log.Printf("Sync failed for %s (source %d, %s): %s", r.MangaName, r.SourceID, r.Domain, r.Error)
	}
}
