// config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything the service reads from the environment.
type Config struct {
	DatabaseURL      string
	ListenAddr       string
	GameServiceToken string
	AllowedOrigins   []string
	GameAdminID      string

	TransferServiceURL string

	WalletSyncURL      string
	WalletSyncInterval time.Duration

	R2                    R2Config
	PayoutArchiveInterval time.Duration

	Bootstrap *BootstrapParams
}

// R2Config holds the Cloudflare R2 (S3-compatible) credentials for the payout archive.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
}

// Enabled reports whether every value the archive needs is present.
func (r R2Config) Enabled() bool {
	return r.AccountID != "" && r.AccessKeyID != "" && r.AccessKeySecret != "" && r.Bucket != ""
}

// BootstrapParams are the one-time game parameters applied at startup when GAME_BOOTSTRAP=true.
type BootstrapParams struct {
	EntryFee           uint64
	BaseRate           uint64
	IntervalSeconds    int64
	MilestoneScore     uint64
	RewardPerMilestone uint64
	RewardMint         string
	RewardVault        string
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		ListenAddr:         getenv("LISTEN_ADDR", ":5200"),
		GameServiceToken:   os.Getenv("GAME_SERVICE_TOKEN"),
		GameAdminID:        os.Getenv("GAME_ADMIN_ID"),
		TransferServiceURL: strings.TrimRight(os.Getenv("TRANSFER_SERVICE_URL"), "/"),
		WalletSyncURL:      strings.TrimRight(os.Getenv("WALLET_SYNC_URL"), "/"),
		R2: R2Config{
			AccountID:       os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			AccessKeySecret: os.Getenv("R2_ACCESS_KEY_SECRET"),
			Bucket:          os.Getenv("R2_BUCKET_NAME"),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if cfg.GameServiceToken == "" {
		return nil, fmt.Errorf("GAME_SERVICE_TOKEN environment variable not set")
	}
	if cfg.GameAdminID == "" {
		return nil, fmt.Errorf("GAME_ADMIN_ID environment variable not set")
	}

	for _, origin := range strings.Split(getenv("ALLOWED_ORIGINS", "http://localhost:3000"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	var err error
	if cfg.WalletSyncInterval, err = durationEnv("WALLET_SYNC_INTERVAL", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.PayoutArchiveInterval, err = durationEnv("PAYOUT_ARCHIVE_INTERVAL", 24*time.Hour); err != nil {
		return nil, err
	}

	if strings.EqualFold(os.Getenv("GAME_BOOTSTRAP"), "true") {
		if cfg.Bootstrap, err = bootstrapFromEnv(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func bootstrapFromEnv() (*BootstrapParams, error) {
	p := &BootstrapParams{
		RewardMint:  os.Getenv("REWARD_MINT"),
		RewardVault: os.Getenv("REWARD_VAULT"),
	}
	var err error
	if p.EntryFee, err = uintEnv("ENTRY_FEE"); err != nil {
		return nil, err
	}
	if p.BaseRate, err = uintEnv("BASE_RATE"); err != nil {
		return nil, err
	}
	if p.MilestoneScore, err = uintEnv("MILESTONE_SCORE"); err != nil {
		return nil, err
	}
	if p.RewardPerMilestone, err = uintEnv("REWARD_PER_MILESTONE"); err != nil {
		return nil, err
	}
	raw := os.Getenv("INTERVAL_SECONDS")
	if p.IntervalSeconds, err = strconv.ParseInt(raw, 10, 64); err != nil {
		return nil, fmt.Errorf("invalid INTERVAL_SECONDS %q: %w", raw, err)
	}
	if p.RewardMint == "" || p.RewardVault == "" {
		return nil, fmt.Errorf("REWARD_MINT and REWARD_VAULT are required when GAME_BOOTSTRAP=true")
	}
	return p, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", key, raw)
	}
	return d, nil
}

func uintEnv(key string) (uint64, error) {
	raw := os.Getenv(key)
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}
