// workers/token_account_sync.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"idle-miner/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MirroredTokenAccount matches the sync service's token account JSON.
type MirroredTokenAccount struct {
	Address   string    `json:"address"`
	Owner     string    `json:"owner"`
	Mint      string    `json:"mint"`
	IsActive  bool      `json:"is_active"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenAccountSync mirrors token account ownership from the wallet sync
// service. Balances are never taken from the mirror.
type TokenAccountSync struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
	Clock      clockwork.Clock

	lastSync time.Time
}

func NewTokenAccountSync(db *gorm.DB, baseURL, token string, clock clockwork.Clock) *TokenAccountSync {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TokenAccountSync{
		BaseURL: baseURL,
		Token:   token,
		DB:      db,
		Clock:   clock,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		lastSync: clock.Now().UTC().Add(-24 * time.Hour),
	}
}

func (s *TokenAccountSync) GetChangedAccounts(ctx context.Context, since time.Time) ([]MirroredTokenAccount, error) {
	u, err := url.Parse(fmt.Sprintf("%s/api/v1/public/token-accounts", s.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", s.Token)

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call sync service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("sync service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Accounts []MirroredTokenAccount `json:"token_accounts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode sync service response: %w", err)
	}
	return response.Accounts, nil
}

// SyncOnce pulls changes since the last successful sync and upserts them by
// address. Vault rows are never overwritten.
func (s *TokenAccountSync) SyncOnce(ctx context.Context) (int, error) {
	started := s.Clock.Now().UTC()

	mirrored, err := s.GetChangedAccounts(ctx, s.lastSync)
	if err != nil {
		return 0, err
	}
	if len(mirrored) == 0 {
		s.lastSync = started
		return 0, nil
	}

	rows := make([]models.TokenAccount, 0, len(mirrored))
	for _, m := range mirrored {
		if m.Address == "" || m.Owner == "" || m.Mint == "" {
			log.Printf("⚠️ [WALLET_SYNC] Skipping incomplete token account %+v", m)
			continue
		}
		updated := m.UpdatedAt
		if updated.IsZero() {
			updated = started
		}
		rows = append(rows, models.TokenAccount{
			ID:        uuid.NewString(),
			Address:   m.Address,
			Owner:     m.Owner,
			Mint:      m.Mint,
			IsActive:  m.IsActive,
			CreatedAt: updated,
			UpdatedAt: updated,
		})
	}
	if len(rows) == 0 {
		s.lastSync = started
		return 0, nil
	}

	if err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"owner", "mint", "is_active", "updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Eq{Column: clause.Column{Table: "token_accounts", Name: "is_vault"}, Value: false},
		}},
	}).Create(&rows).Error; err != nil {
		// lastSync stays put so the same window is retried
		return 0, fmt.Errorf("failed to upsert %d token account(s): %w", len(rows), err)
	}

	s.lastSync = started
	return len(rows), nil
}

// Run is the scheduled job body.
func (s *TokenAccountSync) Run(ctx context.Context) {
	n, err := s.SyncOnce(ctx)
	if err != nil {
		log.Printf("❌ [WALLET_SYNC] %v", err)
		return
	}
	if n > 0 {
		log.Printf("✅ [WALLET_SYNC] Upserted %d token account(s)", n)
	}
}
