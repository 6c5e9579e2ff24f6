package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"idle-miner/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TokenAccountService struct {
	DB    *gorm.DB
	Clock clockwork.Clock
}

func NewTokenAccountService(db *gorm.DB, clock clockwork.Clock) *TokenAccountService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TokenAccountService{DB: db, Clock: clock}
}

// EnsureRewardAccount returns the caller's reward account for the configured
// mint, creating it at its derived address if needed. Idempotent.
func (s *TokenAccountService) EnsureRewardAccount(ctx context.Context, caller string) (*models.TokenAccount, error) {
	if caller == "" {
		return nil, ErrUnauthorized
	}

	var account models.TokenAccount
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cfg, err := loadGameConfig(tx)
		if err != nil {
			return err
		}

		err = tx.Where("owner = ? AND mint = ? AND is_vault = ?", caller, cfg.RewardMint, false).
			Order("created_at ASC").
			First(&account).Error
		if err == nil {
			if !account.IsActive {
				account.IsActive = true
				return tx.Model(&account).Update("is_active", true).Error
			}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		account = models.TokenAccount{
			ID:       uuid.NewString(),
			Address:  models.RewardAccountAddress(caller, cfg.RewardMint),
			Owner:    caller,
			Mint:     cfg.RewardMint,
			IsActive: true,
		}
		return tx.Create(&account).Error
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// FundVault deposits amount into the reward vault. Admin only.
func (s *TokenAccountService) FundVault(ctx context.Context, caller string, amount uint64) (*models.TokenAccount, error) {
	var vault models.TokenAccount
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cfg, err := loadGameConfig(tx)
		if err != nil {
			return err
		}
		if err := AuthorizeAdmin(caller, cfg.Admin); err != nil {
			return err
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("address = ?", cfg.RewardVault).
			First(&vault).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: vault %s not found", ErrVaultMismatch, cfg.RewardVault)
			}
			return err
		}

		balance, ok := checkedAddUint64(uint64(vault.Balance), amount)
		if !ok {
			return ErrMathOverflow
		}
		vault.Balance = models.Uint64(balance)
		if err := tx.Model(&vault).Update("balance", vault.Balance).Error; err != nil {
			return err
		}

		return tx.Create(&models.LedgerEntry{
			ID:          uuid.NewString(),
			Kind:        models.LedgerEntryVaultDeposit,
			Authority:   caller,
			Asset:       cfg.RewardMint,
			Amount:      models.Uint64(amount),
			Destination: vault.Address,
			CreatedAt:   s.Clock.Now(),
		}).Error
	})
	if err != nil {
		log.Printf("❌ [VAULT] Deposit of %d by %s rejected: %v", amount, caller, err)
		return nil, err
	}

	log.Printf("💰 [VAULT] Deposited %d into %s (balance=%d)", amount, vault.Address, vault.Balance)
	return &vault, nil
}

// RewardAccount returns the caller's active reward account, if any.
func (s *TokenAccountService) RewardAccount(ctx context.Context, caller string) (*models.TokenAccount, bool, error) {
	db := s.DB.WithContext(ctx)
	cfg, err := loadGameConfig(db)
	if err != nil {
		return nil, false, err
	}
	var account models.TokenAccount
	if err := db.Where("owner = ? AND mint = ? AND is_vault = ? AND is_active = ?", caller, cfg.RewardMint, false, true).
		Order("created_at ASC").
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &account, true, nil
}
