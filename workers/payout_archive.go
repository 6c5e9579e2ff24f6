// workers/payout_archive.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"idle-miner/models"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

// ObjectUploader stores one object under key.
type ObjectUploader interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
}

// PayoutArchive is the exported document for one window.
type PayoutArchive struct {
	From    time.Time            `json:"from"`
	To      time.Time            `json:"to"`
	Payouts []models.LedgerEntry `json:"payouts"`
}

// PayoutArchiver exports reward payouts of each completed window to object
// storage.
type PayoutArchiver struct {
	DB       *gorm.DB
	Uploader ObjectUploader
	Window   time.Duration
	Clock    clockwork.Clock
}

func NewPayoutArchiver(db *gorm.DB, uploader ObjectUploader, window time.Duration, clock clockwork.Clock) *PayoutArchiver {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PayoutArchiver{DB: db, Uploader: uploader, Window: window, Clock: clock}
}

// ArchiveKey names the object for [from, to).
func ArchiveKey(from, to time.Time) string {
	return fmt.Sprintf("payouts/%s_%s.json", from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
}

// ArchiveWindow uploads every payout created in [from, to). Empty windows are
// still written.
func (a *PayoutArchiver) ArchiveWindow(ctx context.Context, from, to time.Time) (string, int, error) {
	var payouts []models.LedgerEntry
	if err := a.DB.WithContext(ctx).
		Where("kind = ? AND created_at >= ? AND created_at < ?", models.LedgerEntryRewardPayout, from, to).
		Order("created_at ASC").
		Find(&payouts).Error; err != nil {
		return "", 0, fmt.Errorf("failed to load payouts: %w", err)
	}

	body, err := json.Marshal(PayoutArchive{From: from.UTC(), To: to.UTC(), Payouts: payouts})
	if err != nil {
		return "", 0, err
	}

	key := ArchiveKey(from, to)
	if err := a.Uploader.PutObject(ctx, key, body, "application/json"); err != nil {
		return "", 0, fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return key, len(payouts), nil
}

// Run archives the most recently completed window.
func (a *PayoutArchiver) Run(ctx context.Context) {
	to := a.Clock.Now().UTC().Truncate(a.Window)
	from := to.Add(-a.Window)

	key, n, err := a.ArchiveWindow(ctx, from, to)
	if err != nil {
		log.Printf("❌ [ARCHIVE] %v", err)
		return
	}
	log.Printf("📦 [ARCHIVE] Wrote %d payout(s) to %s", n, key)
}
