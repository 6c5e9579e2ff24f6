package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"idle-miner/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxBatch caps how many claims or upgrades one request may chain.
const MaxBatch = 50

// OperationResult is the committed player state after an operation.
type OperationResult struct {
	Player  models.Player        `json:"player"`
	Payouts []models.LedgerEntry `json:"payouts,omitempty"`
}

// PlayerView is a read-only snapshot with accrual projected to now.
type PlayerView struct {
	Player              models.Player `json:"player"`
	ProjectedScore      models.Uint64 `json:"projected_score"`
	ClaimableMilestones uint64        `json:"claimable_milestones"`
	NextAccrualAt       int64         `json:"next_accrual_at"`
	Now                 int64         `json:"now"`
}

type PlayerService struct {
	DB      *gorm.DB
	Gateway RewardGateway
	Clock   clockwork.Clock
}

func NewPlayerService(db *gorm.DB, gateway RewardGateway, clock clockwork.Clock) *PlayerService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PlayerService{DB: db, Gateway: gateway, Clock: clock}
}

// Register creates the caller's player record and charges the entry fee.
// A second registration by the same identity fails with ErrUnauthorized.
func (s *PlayerService) Register(ctx context.Context, caller string) (*models.Player, error) {
	if caller == "" {
		return nil, ErrUnauthorized
	}

	var player models.Player
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cfg, err := loadGameConfig(tx)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Player{}).
			Where("authority = ? OR seed = ?", caller, models.PlayerSeed(caller)).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: %s already owns a player", ErrUnauthorized, caller)
		}

		now := s.Clock.Now()
		key := uuid.NewString()
		receipt, err := s.Gateway.CollectEntryFee(ctx, tx, EntryFee{
			Payer:          caller,
			Treasury:       cfg.TransferAuthority().Delegate(),
			Amount:         uint64(cfg.EntryFee),
			IdempotencyKey: key,
		})
		if err != nil {
			return err
		}

		player = models.Player{
			ID:           uuid.NewString(),
			Seed:         models.PlayerSeed(caller),
			Authority:    caller,
			Score:        0,
			MiningRate:   cfg.BaseRate,
			LastUpdateTS: now.Unix(),
			Miners:       1,
		}
		if err := createPlayer(tx, &player); err != nil {
			return err
		}

		return tx.Create(&models.LedgerEntry{
			ID:          key,
			Kind:        models.LedgerEntryEntryFee,
			Authority:   caller,
			Asset:       models.NativeAsset,
			Amount:      cfg.EntryFee,
			Source:      receipt.Source,
			Destination: receipt.Destination,
			GatewayRef:  receipt.Ref,
			CreatedAt:   now,
		}).Error
	})
	if err != nil {
		log.Printf("❌ [PLAYER] Register by %s rejected: %v", caller, err)
		return nil, err
	}

	log.Printf("⛏️ [PLAYER] Registered %s: rate=%d ts=%d", caller, player.MiningRate, player.LastUpdateTS)
	return &player, nil
}

// Claim burns one milestone and pays one reward.
func (s *PlayerService) Claim(ctx context.Context, caller string) (*OperationResult, error) {
	return s.ClaimMany(ctx, caller, 1)
}

// ClaimMany performs n claims in one all-or-nothing transaction.
func (s *PlayerService) ClaimMany(ctx context.Context, caller string, n int) (*OperationResult, error) {
	if err := validateBatch(n); err != nil {
		return nil, err
	}

	var payouts []models.LedgerEntry
	res, err := s.apply(ctx, "Claim", caller, func(tx *gorm.DB, p *models.Player, cfg *models.GameConfig, now time.Time) error {
		// Stage every burn before any value leaves the vault.
		for i := 0; i < n; i++ {
			if err := UpdateScore(p, cfg, now.Unix()); err != nil {
				return err
			}
			if err := burnMilestone(p, cfg); err != nil {
				return err
			}
		}

		for i := 0; i < n; i++ {
			key := uuid.NewString()
			receipt, err := s.Gateway.TransferReward(ctx, tx, RewardTransfer{
				Vault:          cfg.RewardVault,
				Mint:           cfg.RewardMint,
				Owner:          caller,
				Amount:         uint64(cfg.RewardPerMilestone),
				Authority:      cfg.TransferAuthority(),
				IdempotencyKey: key,
			})
			if err != nil {
				return err
			}
			payouts = append(payouts, models.LedgerEntry{
				ID:          key,
				Kind:        models.LedgerEntryRewardPayout,
				Authority:   caller,
				Asset:       cfg.RewardMint,
				Amount:      cfg.RewardPerMilestone,
				Source:      receipt.Source,
				Destination: receipt.Destination,
				GatewayRef:  receipt.Ref,
				CreatedAt:   now,
			})
		}
		return tx.Create(&payouts).Error
	})
	if err != nil {
		return nil, err
	}
	res.Payouts = payouts
	return res, nil
}

// Upgrade burns one milestone, doubles the mining rate and adds a miner.
func (s *PlayerService) Upgrade(ctx context.Context, caller string) (*OperationResult, error) {
	return s.UpgradeMany(ctx, caller, 1)
}

// UpgradeMany performs n upgrades in one all-or-nothing transaction.
func (s *PlayerService) UpgradeMany(ctx context.Context, caller string, n int) (*OperationResult, error) {
	if err := validateBatch(n); err != nil {
		return nil, err
	}
	return s.apply(ctx, "Upgrade", caller, func(tx *gorm.DB, p *models.Player, cfg *models.GameConfig, now time.Time) error {
		for i := 0; i < n; i++ {
			if err := UpdateScore(p, cfg, now.Unix()); err != nil {
				return err
			}
			if err := burnMilestone(p, cfg); err != nil {
				return err
			}
			if err := applyUpgrade(p); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetPlayer returns the caller's record with accrual projected to now.
// Nothing is written.
func (s *PlayerService) GetPlayer(ctx context.Context, caller string) (*PlayerView, error) {
	db := s.DB.WithContext(ctx)
	cfg, err := loadGameConfig(db)
	if err != nil {
		return nil, err
	}
	stored, err := findPlayer(db, caller, false)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now().Unix()
	projected := *stored
	if err := UpdateScore(&projected, cfg, now); err != nil {
		return nil, err
	}

	return &PlayerView{
		Player:              *stored,
		ProjectedScore:      projected.Score,
		ClaimableMilestones: uint64(projected.Score) / uint64(cfg.MilestoneScore),
		NextAccrualAt:       NextAccrualAt(&projected, cfg),
		Now:                 now,
	}, nil
}

// ListPayouts returns the caller's most recent reward payouts, newest first.
func (s *PlayerService) ListPayouts(ctx context.Context, caller string, limit int) ([]models.LedgerEntry, error) {
	if caller == "" {
		return nil, ErrUnauthorized
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var entries []models.LedgerEntry
	err := s.DB.WithContext(ctx).
		Where("authority = ? AND kind = ?", caller, models.LedgerEntryRewardPayout).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// ListPayoutsSince returns the caller's payouts created after since, oldest first.
func (s *PlayerService) ListPayoutsSince(ctx context.Context, caller string, since time.Time) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := s.DB.WithContext(ctx).
		Where("authority = ? AND kind = ? AND created_at > ?", caller, models.LedgerEntryRewardPayout, since).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

type playerStep func(tx *gorm.DB, p *models.Player, cfg *models.GameConfig, now time.Time) error

// apply runs step against a scratch copy of the caller's locked record and
// saves the copy only if step succeeds. Any error rolls back the transaction.
func (s *PlayerService) apply(ctx context.Context, op, caller string, step playerStep) (*OperationResult, error) {
	var scratch models.Player
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cfg, err := loadGameConfig(tx)
		if err != nil {
			return err
		}
		stored, err := findPlayer(tx, caller, true)
		if err != nil {
			return err
		}

		scratch = *stored
		if err := step(tx, &scratch, cfg, s.Clock.Now()); err != nil {
			return err
		}
		return tx.Save(&scratch).Error
	})
	if err != nil {
		log.Printf("❌ [PLAYER] %s by %s rejected: %v", op, caller, err)
		return nil, err
	}

	log.Printf("⛏️ [PLAYER] %s by %s: score=%d rate=%d miners=%d ts=%d",
		op, caller, scratch.Score, scratch.MiningRate, scratch.Miners, scratch.LastUpdateTS)
	return &OperationResult{Player: scratch}, nil
}

// findPlayer resolves the record derived from caller and checks ownership.
func findPlayer(db *gorm.DB, caller string, forUpdate bool) (*models.Player, error) {
	if caller == "" {
		return nil, ErrUnauthorized
	}
	q := db
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var p models.Player
	if err := q.Where("seed = ?", models.PlayerSeed(caller)).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no player for %s", ErrUnauthorized, caller)
		}
		return nil, err
	}
	if err := Authorize(caller, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// createPlayer inserts p. A concurrent registration that won the unique
// index on seed/authority surfaces as ErrUnauthorized, like the count check.
func createPlayer(tx *gorm.DB, p *models.Player) error {
	if err := tx.Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s already owns a player", ErrUnauthorized, p.Authority)
		}
		return err
	}
	return nil
}

func validateBatch(n int) error {
	if n < 1 || n > MaxBatch {
		return fmt.Errorf("%w: %d (allowed 1-%d)", ErrInvalidBatch, n, MaxBatch)
	}
	return nil
}
