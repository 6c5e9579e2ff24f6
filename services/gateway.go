package services

import (
	"context"
	"errors"
	"fmt"

	"idle-miner/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntryFee asks the payment path to move the registration fee.
type EntryFee struct {
	Payer          string
	Treasury       string
	Amount         uint64
	IdempotencyKey string
}

// RewardTransfer asks the gateway to pay one milestone's reward from the vault.
type RewardTransfer struct {
	Vault          string
	Mint           string
	Owner          string // destination is the owner's account for Mint
	Amount         uint64
	Authority      models.TransferAuthority
	IdempotencyKey string
}

// TransferReceipt is what a gateway reports back for a completed movement.
type TransferReceipt struct {
	Ref         string `json:"ref"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// RewardGateway moves value on behalf of player operations. tx is the
// operation's open transaction; a gateway that keeps its state in the same
// database must use it so a failed operation rolls its movement back.
type RewardGateway interface {
	CollectEntryFee(ctx context.Context, tx *gorm.DB, fee EntryFee) (*TransferReceipt, error)
	TransferReward(ctx context.Context, tx *gorm.DB, t RewardTransfer) (*TransferReceipt, error)
}

// LedgerGateway keeps reward balances in the token_accounts table.
type LedgerGateway struct{}

func NewLedgerGateway() *LedgerGateway {
	return &LedgerGateway{}
}

// CollectEntryFee records a receipt for the fee and moves no funds. The
// native asset has no balance in this ledger; collecting the fee for real
// needs an external gateway such as TransferClient.
func (g *LedgerGateway) CollectEntryFee(ctx context.Context, tx *gorm.DB, fee EntryFee) (*TransferReceipt, error) {
	return &TransferReceipt{
		Ref:         "ledger:" + refKey(fee.IdempotencyKey),
		Source:      fee.Payer,
		Destination: fee.Treasury,
	}, nil
}

// TransferReward debits the vault and credits the owner's reward account.
func (g *LedgerGateway) TransferReward(ctx context.Context, tx *gorm.DB, t RewardTransfer) (*TransferReceipt, error) {
	if t.Authority.IsZero() {
		return nil, fmt.Errorf("%w: missing transfer authority", ErrUnauthorized)
	}

	var vault models.TokenAccount
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("address = ?", t.Vault).
		First(&vault).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: vault %s not found", ErrVaultMismatch, t.Vault)
		}
		return nil, err
	}
	if !vault.IsVault || vault.Mint != t.Mint {
		return nil, fmt.Errorf("%w: vault %s holds %s, want %s", ErrVaultMismatch, vault.Address, vault.Mint, t.Mint)
	}
	if vault.Delegate != t.Authority.Delegate() {
		return nil, fmt.Errorf("%w: vault %s is not delegated to the game config", ErrUnauthorized, vault.Address)
	}

	var dest models.TokenAccount
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner = ? AND mint = ? AND is_vault = ? AND is_active = ?", t.Owner, t.Mint, false, true).
		Order("created_at ASC").
		First(&dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: owner %s mint %s", ErrRewardAccountMissing, t.Owner, t.Mint)
		}
		return nil, err
	}

	vaultBalance, ok := checkedSubUint64(uint64(vault.Balance), t.Amount)
	if !ok {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientVaultBalance, vault.Balance, t.Amount)
	}
	destBalance, ok := checkedAddUint64(uint64(dest.Balance), t.Amount)
	if !ok {
		return nil, ErrMathOverflow
	}

	if err := tx.Model(&vault).Update("balance", models.Uint64(vaultBalance)).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&dest).Update("balance", models.Uint64(destBalance)).Error; err != nil {
		return nil, err
	}

	return &TransferReceipt{
		Ref:         "ledger:" + refKey(t.IdempotencyKey),
		Source:      vault.Address,
		Destination: dest.Address,
	}, nil
}

func refKey(key string) string {
	if key == "" {
		return uuid.NewString()
	}
	return key
}
