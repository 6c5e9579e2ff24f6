package models

import "time"

// LedgerEntryKind classifies a value movement.
type LedgerEntryKind string

const (
	LedgerEntryEntryFee     LedgerEntryKind = "entry_fee"
	LedgerEntryRewardPayout LedgerEntryKind = "reward_payout"
	LedgerEntryVaultDeposit LedgerEntryKind = "vault_deposit"
)

// NativeAsset names the asset entry fees are paid in.
const NativeAsset = "native"

// LedgerEntry records one value movement authorized by a game operation.
type LedgerEntry struct {
	ID          string          `gorm:"primaryKey;type:uuid" json:"id"`
	Kind        LedgerEntryKind `gorm:"type:varchar(32);not null;index:idx_ledger_kind_created" json:"kind"`
	Authority   string          `gorm:"type:varchar(128);not null;index" json:"authority"`
	Asset       string          `gorm:"type:varchar(128);not null" json:"asset"`
	Amount      Uint64          `gorm:"type:numeric(20,0);not null" json:"amount"`
	Source      string          `gorm:"type:varchar(128)" json:"source,omitempty"`
	Destination string          `gorm:"type:varchar(128)" json:"destination,omitempty"`
	GatewayRef  string          `gorm:"type:varchar(128)" json:"gateway_ref,omitempty"`
	CreatedAt   time.Time       `gorm:"not null;index:idx_ledger_kind_created" json:"created_at"`
}
