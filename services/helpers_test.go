package services

import (
	"context"
	"testing"
	"time"

	"idle-miner/models"

	"github.com/glebarez/sqlite"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testAdmin = "admin-wallet"
	testMint  = "reward-mint"
	testVault = "reward-vault"
)

// newTestDB opens a migrated in-memory database. One connection keeps every
// query on the same in-memory instance.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

type testGame struct {
	db      *gorm.DB
	clock   *clockwork.FakeClock
	game    *GameService
	players *PlayerService
	tokens  *TokenAccountService
	cfg     *models.GameConfig
}

// newTestGame bootstraps base_rate=10, interval=60s, milestone=100, reward=1
// with the clock at unix 0.
func newTestGame(t *testing.T) *testGame {
	return newTestGameWith(t, InitializeParams{
		EntryFee:           1_000,
		BaseRate:           10,
		IntervalSeconds:    60,
		MilestoneScore:     100,
		RewardPerMilestone: 1,
		RewardMint:         testMint,
		RewardVault:        testVault,
	})
}

func newTestGameWith(t *testing.T, params InitializeParams) *testGame {
	t.Helper()
	db := newTestDB(t)
	clock := clockwork.NewFakeClockAt(time.Unix(0, 0).UTC())

	g := &testGame{
		db:      db,
		clock:   clock,
		game:    NewGameService(db, testAdmin),
		players: NewPlayerService(db, NewLedgerGateway(), clock),
		tokens:  NewTokenAccountService(db, clock),
	}

	cfg, err := g.game.Initialize(context.Background(), testAdmin, params)
	if err != nil {
		t.Fatalf("Failed to initialize game: %v", err)
	}
	g.cfg = cfg
	return g
}

func (g *testGame) fundVault(t *testing.T, amount uint64) {
	t.Helper()
	if _, err := g.tokens.FundVault(context.Background(), testAdmin, amount); err != nil {
		t.Fatalf("Failed to fund vault: %v", err)
	}
}

// register creates a player and its reward account.
func (g *testGame) register(t *testing.T, who string) *models.Player {
	t.Helper()
	p, err := g.players.Register(context.Background(), who)
	if err != nil {
		t.Fatalf("Failed to register %s: %v", who, err)
	}
	if _, err := g.tokens.EnsureRewardAccount(context.Background(), who); err != nil {
		t.Fatalf("Failed to create reward account for %s: %v", who, err)
	}
	return p
}

func (g *testGame) storedPlayer(t *testing.T, who string) models.Player {
	t.Helper()
	var p models.Player
	if err := g.db.Where("authority = ?", who).First(&p).Error; err != nil {
		t.Fatalf("Failed to load player %s: %v", who, err)
	}
	return p
}

func (g *testGame) balance(t *testing.T, address string) uint64 {
	t.Helper()
	var a models.TokenAccount
	if err := g.db.Where("address = ?", address).First(&a).Error; err != nil {
		t.Fatalf("Failed to load account %s: %v", address, err)
	}
	return uint64(a.Balance)
}

func (g *testGame) advance(seconds int64) {
	g.clock.Advance(time.Duration(seconds) * time.Second)
}
