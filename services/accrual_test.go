package services

import (
	"errors"
	"math"
	"testing"

	"idle-miner/models"
)

func testConfig(interval int64) *models.GameConfig {
	return &models.GameConfig{
		ID:                 "3f1c1d8e-0000-4000-8000-000000000001",
		Seed:               models.GameConfigSeed,
		BaseRate:           10,
		IntervalSeconds:    interval,
		MilestoneScore:     100,
		RewardPerMilestone: 1,
	}
}

func TestUpdateScoreScenario(t *testing.T) {
	cfg := testConfig(60)
	p := &models.Player{MiningRate: 10, LastUpdateTS: 0, Miners: 1}

	if err := UpdateScore(p, cfg, 600); err != nil {
		t.Fatalf("Failed to update score: %v", err)
	}
	if p.Score != 100 {
		t.Errorf("Expected score 100 after 10 intervals, got %d", p.Score)
	}
	if p.LastUpdateTS != 600 {
		t.Errorf("Expected last update 600, got %d", p.LastUpdateTS)
	}
}

func TestUpdateScoreIdempotent(t *testing.T) {
	cfg := testConfig(60)
	p := &models.Player{MiningRate: 10, LastUpdateTS: 0}

	if err := UpdateScore(p, cfg, 150); err != nil {
		t.Fatalf("Failed to update score: %v", err)
	}
	first := *p
	if err := UpdateScore(p, cfg, 150); err != nil {
		t.Fatalf("Failed to update score: %v", err)
	}
	if *p != first {
		t.Errorf("Second call with same now mutated state: %+v -> %+v", first, *p)
	}
}

func TestUpdateScoreKeepsRemainder(t *testing.T) {
	cfg := testConfig(60)
	p := &models.Player{MiningRate: 10, LastUpdateTS: 0}

	// 90s: one interval credited, 30s carried
	if err := UpdateScore(p, cfg, 90); err != nil {
		t.Fatalf("Failed to update score: %v", err)
	}
	if p.Score != 10 || p.LastUpdateTS != 60 {
		t.Fatalf("Expected score 10 at ts 60, got %d at %d", p.Score, p.LastUpdateTS)
	}

	// 120s total: the carried 30s completes the second interval
	if err := UpdateScore(p, cfg, 120); err != nil {
		t.Fatalf("Failed to update score: %v", err)
	}
	if p.Score != 20 || p.LastUpdateTS != 120 {
		t.Errorf("Expected score 20 at ts 120, got %d at %d", p.Score, p.LastUpdateTS)
	}
}

func TestUpdateScoreAdditive(t *testing.T) {
	cfg := testConfig(7)
	const total = 1000
	for split := int64(0); split <= total; split += 13 {
		single := &models.Player{MiningRate: 3, LastUpdateTS: 5}
		if err := UpdateScore(single, cfg, 5+total); err != nil {
			t.Fatalf("Failed to update score: %v", err)
		}

		double := &models.Player{MiningRate: 3, LastUpdateTS: 5}
		if err := UpdateScore(double, cfg, 5+split); err != nil {
			t.Fatalf("Failed to update score: %v", err)
		}
		if err := UpdateScore(double, cfg, 5+total); err != nil {
			t.Fatalf("Failed to update score: %v", err)
		}

		if *single != *double {
			t.Fatalf("split at %d: one call %+v, two calls %+v", split, *single, *double)
		}
	}
	want := models.Uint64((total / 7) * 3)
	p := &models.Player{MiningRate: 3, LastUpdateTS: 5}
	_ = UpdateScore(p, cfg, 5+total)
	if p.Score != want {
		t.Errorf("Expected score %d, got %d", want, p.Score)
	}
}

func TestUpdateScoreNoOps(t *testing.T) {
	tests := []struct {
		name     string
		interval int64
		last     int64
		now      int64
	}{
		{"clock behind", 60, 500, 400},
		{"clock equal", 60, 500, 500},
		{"partial interval", 60, 0, 59},
		{"accrual disabled", 0, 0, 1_000_000},
		{"negative interval", -60, 0, 1_000_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &models.Player{Score: 7, MiningRate: 10, LastUpdateTS: tt.last}
			before := *p
			if err := UpdateScore(p, testConfig(tt.interval), tt.now); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if *p != before {
				t.Errorf("Expected no change, got %+v", *p)
			}
		})
	}
}

func TestUpdateScoreOverflowLeavesRecord(t *testing.T) {
	tests := []struct {
		name string
		p    models.Player
		now  int64
	}{
		{"rate overflow", models.Player{MiningRate: math.MaxUint64 / 2, LastUpdateTS: 0}, 180},
		{"score overflow", models.Player{Score: math.MaxUint64 - 5, MiningRate: 10, LastUpdateTS: 0}, 60},
		{"elapsed overflow", models.Player{MiningRate: 1, LastUpdateTS: math.MinInt64}, math.MaxInt64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.p
			err := UpdateScore(&p, testConfig(60), tt.now)
			if !errors.Is(err, ErrMathOverflow) {
				t.Fatalf("Expected ErrMathOverflow, got %v", err)
			}
			if p != tt.p {
				t.Errorf("Record mutated on overflow: %+v -> %+v", tt.p, p)
			}
		})
	}
}

func TestBurnMilestoneAndUpgrade(t *testing.T) {
	cfg := testConfig(60)

	p := &models.Player{Score: 99, MiningRate: 10, Miners: 1}
	if err := burnMilestone(p, cfg); !errors.Is(err, ErrInsufficientScore) {
		t.Fatalf("Expected ErrInsufficientScore, got %v", err)
	}
	if p.Score != 99 {
		t.Errorf("Score changed on failed burn: %d", p.Score)
	}

	p.Score = 250
	if err := burnMilestone(p, cfg); err != nil {
		t.Fatalf("Failed to burn milestone: %v", err)
	}
	if p.Score != 150 {
		t.Errorf("Expected 150 after one burn, got %d", p.Score)
	}

	if err := applyUpgrade(p); err != nil {
		t.Fatalf("Failed to upgrade: %v", err)
	}
	if p.MiningRate != 20 || p.Miners != 2 {
		t.Errorf("Expected rate 20 miners 2, got %d/%d", p.MiningRate, p.Miners)
	}

	huge := &models.Player{MiningRate: 1 << 63, Miners: 64}
	if err := applyUpgrade(huge); !errors.Is(err, ErrMathOverflow) {
		t.Fatalf("Expected ErrMathOverflow, got %v", err)
	}
	if huge.MiningRate != 1<<63 || huge.Miners != 64 {
		t.Errorf("Upgrade mutated record on overflow: %+v", *huge)
	}
}

func TestNextAccrualAt(t *testing.T) {
	p := &models.Player{LastUpdateTS: 600}
	if got := NextAccrualAt(p, testConfig(60)); got != 660 {
		t.Errorf("Expected 660, got %d", got)
	}
	if got := NextAccrualAt(p, testConfig(0)); got != 0 {
		t.Errorf("Expected 0 with accrual disabled, got %d", got)
	}
}
