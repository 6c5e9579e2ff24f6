// models/token_account.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// TokenAccount is a reward-asset balance: the vault or a player's reward account.
// Accounts may be mirrored from the wallet sync service; balances are only
// ever changed by the local ledger gateway.
type TokenAccount struct {
	ID       string `gorm:"primaryKey;type:uuid;not null" json:"id"`
	Address  string `gorm:"type:varchar(128);not null;uniqueIndex" json:"address"` // Primary lookup key
	Owner    string `gorm:"type:varchar(128);not null;index:idx_token_owner_mint" json:"owner"`
	Mint     string `gorm:"type:varchar(128);not null;index:idx_token_owner_mint" json:"mint"`
	Balance  Uint64 `gorm:"type:numeric(20,0);not null;default:0" json:"balance"`
	Delegate string `gorm:"type:varchar(128)" json:"delegate,omitempty"` // transfer authority, vault only
	IsVault  bool   `gorm:"not null;default:false" json:"is_vault"`
	IsActive bool   `gorm:"not null" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// rewardAccountNamespace scopes derived reward account addresses.
var rewardAccountNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("idle-miner/reward-account"))

// RewardAccountAddress derives the deterministic reward account address for
// an owner and mint.
func RewardAccountAddress(owner, mint string) string {
	return uuid.NewSHA1(rewardAccountNamespace, []byte(mint+"/"+owner)).String()
}
