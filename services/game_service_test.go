package services

import (
	"context"
	"errors"
	"testing"

	"idle-miner/models"
)

func validParams() InitializeParams {
	return InitializeParams{
		EntryFee:           500,
		BaseRate:           10,
		IntervalSeconds:    60,
		MilestoneScore:     100,
		RewardPerMilestone: 1,
		RewardMint:         testMint,
		RewardVault:        testVault,
	}
}

func TestInitializeStoresConfigAndDelegatesVault(t *testing.T) {
	db := newTestDB(t)
	svc := NewGameService(db, testAdmin)
	ctx := context.Background()

	cfg, err := svc.Initialize(ctx, testAdmin, validParams())
	if err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}

	got, err := svc.Config(ctx)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if got.ID != cfg.ID || got.Admin != testAdmin || got.BaseRate != 10 || got.IntervalSeconds != 60 ||
		got.MilestoneScore != 100 || got.RewardPerMilestone != 1 || got.EntryFee != 500 {
		t.Errorf("Unexpected stored config: %+v", got)
	}

	var vault models.TokenAccount
	if err := db.Where("address = ?", testVault).First(&vault).Error; err != nil {
		t.Fatalf("Failed to load vault: %v", err)
	}
	if !vault.IsVault || vault.Mint != testMint || vault.Delegate != cfg.TransferAuthority().Delegate() {
		t.Errorf("Vault not delegated to config: %+v", vault)
	}
}

func TestInitializeOnlyOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewGameService(db, testAdmin)
	ctx := context.Background()

	if _, err := svc.Initialize(ctx, testAdmin, validParams()); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}
	second := validParams()
	second.BaseRate = 99
	if _, err := svc.Initialize(ctx, testAdmin, second); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("Expected ErrAlreadyInitialized, got %v", err)
	}

	cfg, err := svc.Config(ctx)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.BaseRate != 10 {
		t.Errorf("Config overwritten: base_rate=%d", cfg.BaseRate)
	}
}

func TestInitializeRejectsNonAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := NewGameService(db, testAdmin)

	if _, err := svc.Initialize(context.Background(), "mallory", validParams()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Config(context.Background()); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized after rejected bootstrap, got %v", err)
	}
}

func TestInitializeWithoutAdminConfigured(t *testing.T) {
	svc := NewGameService(newTestDB(t), "")
	if _, err := svc.Initialize(context.Background(), "", validParams()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestInitializeValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*InitializeParams)
	}{
		{"zero base rate", func(p *InitializeParams) { p.BaseRate = 0 }},
		{"zero milestone", func(p *InitializeParams) { p.MilestoneScore = 0 }},
		{"missing mint", func(p *InitializeParams) { p.RewardMint = "" }},
		{"missing vault", func(p *InitializeParams) { p.RewardVault = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewGameService(newTestDB(t), testAdmin)
			p := validParams()
			tt.mutate(&p)
			if _, err := svc.Initialize(context.Background(), testAdmin, p); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestInitializeAllowsDisabledAccrual(t *testing.T) {
	svc := NewGameService(newTestDB(t), testAdmin)
	p := validParams()
	p.IntervalSeconds = -5
	if _, err := svc.Initialize(context.Background(), testAdmin, p); err != nil {
		t.Fatalf("Expected non-positive interval to be accepted, got %v", err)
	}
}

func TestInitializeRejectsVaultOfOtherMint(t *testing.T) {
	db := newTestDB(t)
	if err := db.Create(&models.TokenAccount{
		ID:       "6d1f8a34-0f7e-4c69-9a44-1f5b0c2d9e11",
		Address:  testVault,
		Owner:    testAdmin,
		Mint:     "other-mint",
		IsActive: true,
	}).Error; err != nil {
		t.Fatalf("Failed to seed vault: %v", err)
	}

	svc := NewGameService(db, testAdmin)
	if _, err := svc.Initialize(context.Background(), testAdmin, validParams()); !errors.Is(err, ErrVaultMismatch) {
		t.Fatalf("Expected ErrVaultMismatch, got %v", err)
	}
}

func TestInitializeAdoptsExistingVault(t *testing.T) {
	db := newTestDB(t)
	if err := db.Create(&models.TokenAccount{
		ID:       "0b7c3f52-2d4a-4e0b-8f21-7c9a1d4e6b30",
		Address:  testVault,
		Owner:    testAdmin,
		Mint:     testMint,
		Balance:  250,
		IsActive: true,
	}).Error; err != nil {
		t.Fatalf("Failed to seed vault: %v", err)
	}

	svc := NewGameService(db, testAdmin)
	cfg, err := svc.Initialize(context.Background(), testAdmin, validParams())
	if err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}

	var vault models.TokenAccount
	db.Where("address = ?", testVault).First(&vault)
	if vault.Balance != 250 || !vault.IsVault || vault.Delegate != cfg.TransferAuthority().Delegate() {
		t.Errorf("Existing vault not adopted: %+v", vault)
	}
}
