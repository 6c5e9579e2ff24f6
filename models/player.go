// models/player.go
package models

import "time"

// PlayerSeedPrefix prefixes the derivation tag of every player row.
const PlayerSeedPrefix = "player:"

// PlayerSeed derives the one record address an authority may own.
func PlayerSeed(authority string) string {
	return PlayerSeedPrefix + authority
}

// Player is the per-identity accrual record.
type Player struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Seed         string `gorm:"uniqueIndex;not null" json:"seed"`
	Authority    string `gorm:"type:varchar(128);uniqueIndex;not null" json:"authority"`
	Score        Uint64 `gorm:"type:numeric(20,0);not null;default:0" json:"score"`
	MiningRate   Uint64 `gorm:"type:numeric(20,0);not null" json:"mining_rate"`
	LastUpdateTS int64  `gorm:"not null" json:"last_update_ts"` // unix seconds
	Miners       uint32 `gorm:"not null" json:"miners"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
