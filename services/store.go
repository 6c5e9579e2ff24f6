package services

import (
	"errors"

	"idle-miner/models"

	"gorm.io/gorm"
)

// loadGameConfig reads the singleton config inside tx.
func loadGameConfig(tx *gorm.DB) (*models.GameConfig, error) {
	var cfg models.GameConfig
	if err := tx.Where("seed = ?", models.GameConfigSeed).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotInitialized
		}
		return nil, err
	}
	return &cfg, nil
}
