// models/game_config.go
package models

import "time"

// GameConfigSeed is the derivation tag of the singleton config row.
const GameConfigSeed = "game-config"

// GameConfig holds the global game parameters. It is written once by the
// admin bootstrap and read by every player operation.
type GameConfig struct {
	ID                 string `gorm:"primaryKey;type:uuid" json:"id"`
	Seed               string `gorm:"uniqueIndex;not null" json:"seed"`
	Admin              string `gorm:"not null" json:"admin"`
	EntryFee           Uint64 `gorm:"type:numeric(20,0);not null" json:"entry_fee"`
	BaseRate           Uint64 `gorm:"type:numeric(20,0);not null" json:"base_rate"`
	IntervalSeconds    int64  `gorm:"not null" json:"interval_seconds"` // <= 0 disables accrual
	MilestoneScore     Uint64 `gorm:"type:numeric(20,0);not null" json:"milestone_score"`
	RewardPerMilestone Uint64 `gorm:"type:numeric(20,0);not null" json:"reward_per_milestone"`
	RewardMint         string `gorm:"type:varchar(128);not null" json:"reward_mint"`
	RewardVault        string `gorm:"type:varchar(128);not null" json:"reward_vault"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TransferAuthority returns the config's delegated signing capability over
// the reward vault.
func (c *GameConfig) TransferAuthority() TransferAuthority {
	return TransferAuthority{configID: c.ID, seed: c.Seed}
}

// TransferAuthority is an opaque capability a RewardGateway checks against
// the vault's delegate. Only a GameConfig can mint one.
type TransferAuthority struct {
	configID string
	seed     string
}

// Delegate is the identity the vault must be delegated to.
func (a TransferAuthority) Delegate() string {
	if a.configID == "" {
		return ""
	}
	return a.seed + ":" + a.configID
}

// IsZero reports whether the capability was never minted.
func (a TransferAuthority) IsZero() bool {
	return a.configID == ""
}
