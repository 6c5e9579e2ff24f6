package services

import (
	"idle-miner/models"
)

// UpdateScore credits the player for every whole interval elapsed since
// LastUpdateTS and advances LastUpdateTS by exactly the time consumed, so the
// partial interval carries over to the next call.
//
// It is a no-op when the clock has not advanced past LastUpdateTS, when the
// config disables accrual (IntervalSeconds <= 0), or when less than one
// interval has elapsed. On ErrMathOverflow the player is left untouched.
func UpdateScore(p *models.Player, cfg *models.GameConfig, now int64) error {
	if now <= p.LastUpdateTS {
		return nil
	}

	elapsed, ok := checkedSubInt64(now, p.LastUpdateTS)
	if !ok {
		return ErrMathOverflow
	}

	if cfg.IntervalSeconds <= 0 {
		return nil
	}

	intervals := elapsed / cfg.IntervalSeconds
	if intervals <= 0 {
		return nil
	}

	earned, ok := checkedMulUint64(uint64(intervals), uint64(p.MiningRate))
	if !ok {
		return ErrMathOverflow
	}
	score, ok := checkedAddUint64(uint64(p.Score), earned)
	if !ok {
		return ErrMathOverflow
	}
	consumed, ok := checkedMulInt64(intervals, cfg.IntervalSeconds)
	if !ok {
		return ErrMathOverflow
	}
	ts, ok := checkedAddInt64(p.LastUpdateTS, consumed)
	if !ok {
		return ErrMathOverflow
	}

	p.Score = models.Uint64(score)
	p.LastUpdateTS = ts
	return nil
}

// NextAccrualAt is the unix time at which the next whole interval completes,
// or 0 when accrual is disabled.
func NextAccrualAt(p *models.Player, cfg *models.GameConfig) int64 {
	if cfg.IntervalSeconds <= 0 {
		return 0
	}
	next, ok := checkedAddInt64(p.LastUpdateTS, cfg.IntervalSeconds)
	if !ok {
		return 0
	}
	return next
}

// burnMilestone removes exactly one milestone from the player's score.
func burnMilestone(p *models.Player, cfg *models.GameConfig) error {
	if p.Score < cfg.MilestoneScore {
		return ErrInsufficientScore
	}
	score, ok := checkedSubUint64(uint64(p.Score), uint64(cfg.MilestoneScore))
	if !ok {
		return ErrMathOverflow
	}
	p.Score = models.Uint64(score)
	return nil
}

// applyUpgrade doubles the mining rate and adds a miner.
func applyUpgrade(p *models.Player) error {
	rate, ok := checkedMulUint64(uint64(p.MiningRate), 2)
	if !ok {
		return ErrMathOverflow
	}
	miners, ok := checkedAddUint32(p.Miners, 1)
	if !ok {
		return ErrMathOverflow
	}
	p.MiningRate = models.Uint64(rate)
	p.Miners = miners
	return nil
}
