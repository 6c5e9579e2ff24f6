package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"idle-miner/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InitializeParams are the admin-supplied game parameters.
type InitializeParams struct {
	EntryFee           uint64 `json:"entry_fee,string"`
	BaseRate           uint64 `json:"base_rate,string"`
	IntervalSeconds    int64  `json:"interval_seconds"`
	MilestoneScore     uint64 `json:"milestone_score,string"`
	RewardPerMilestone uint64 `json:"reward_per_milestone,string"`
	RewardMint         string `json:"reward_mint"`
	RewardVault        string `json:"reward_vault"`
}

func (p InitializeParams) validate() error {
	switch {
	case p.BaseRate == 0:
		return fmt.Errorf("%w: base_rate must be positive", ErrInvalidConfig)
	case p.MilestoneScore == 0:
		return fmt.Errorf("%w: milestone_score must be positive", ErrInvalidConfig)
	case p.RewardMint == "":
		return fmt.Errorf("%w: reward_mint is required", ErrInvalidConfig)
	case p.RewardVault == "":
		return fmt.Errorf("%w: reward_vault is required", ErrInvalidConfig)
	}
	return nil
}

type GameService struct {
	DB      *gorm.DB
	AdminID string
}

func NewGameService(db *gorm.DB, adminID string) *GameService {
	return &GameService{DB: db, AdminID: adminID}
}

// Initialize creates the singleton GameConfig and delegates the reward vault
// to it. Only the designated admin may call it, and only once.
func (s *GameService) Initialize(ctx context.Context, caller string, p InitializeParams) (*models.GameConfig, error) {
	if err := AuthorizeAdmin(caller, s.AdminID); err != nil {
		return nil, err
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	cfg := &models.GameConfig{
		ID:                 uuid.NewString(),
		Seed:               models.GameConfigSeed,
		Admin:              caller,
		EntryFee:           models.Uint64(p.EntryFee),
		BaseRate:           models.Uint64(p.BaseRate),
		IntervalSeconds:    p.IntervalSeconds,
		MilestoneScore:     models.Uint64(p.MilestoneScore),
		RewardPerMilestone: models.Uint64(p.RewardPerMilestone),
		RewardMint:         p.RewardMint,
		RewardVault:        p.RewardVault,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.GameConfig{}).Where("seed = ?", models.GameConfigSeed).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyInitialized
		}

		var vault models.TokenAccount
		exists := true
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("address = ?", p.RewardVault).First(&vault).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			exists = false
			vault = models.TokenAccount{
				ID:       uuid.NewString(),
				Address:  p.RewardVault,
				Owner:    caller,
				Mint:     p.RewardMint,
				IsActive: true,
			}
		case err != nil:
			return err
		case vault.Mint != p.RewardMint:
			return fmt.Errorf("%w: vault %s holds %s, want %s", ErrVaultMismatch, vault.Address, vault.Mint, p.RewardMint)
		}
		vault.IsVault = true
		vault.Delegate = cfg.TransferAuthority().Delegate()
		if exists {
			err = tx.Save(&vault).Error
		} else {
			err = tx.Create(&vault).Error
		}
		if err != nil {
			return err
		}

		return tx.Create(cfg).Error
	})
	if err != nil {
		log.Printf("❌ [GAME] Initialize by %s rejected: %v", caller, err)
		return nil, err
	}

	log.Printf("✅ [GAME] Initialized: base_rate=%d interval=%ds milestone=%d reward=%d vault=%s",
		cfg.BaseRate, cfg.IntervalSeconds, cfg.MilestoneScore, cfg.RewardPerMilestone, cfg.RewardVault)
	return cfg, nil
}

// Config returns the current GameConfig.
func (s *GameService) Config(ctx context.Context) (*models.GameConfig, error) {
	return loadGameConfig(s.DB.WithContext(ctx))
}
