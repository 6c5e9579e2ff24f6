package services

import (
	"fmt"

	"idle-miner/models"
)

// Authorize binds caller to the player record it must own.
func Authorize(caller string, p *models.Player) error {
	if caller == "" || p == nil {
		return ErrUnauthorized
	}
	if p.Authority != caller || p.Seed != models.PlayerSeed(caller) {
		return fmt.Errorf("%w: %s does not own player %s", ErrUnauthorized, caller, p.ID)
	}
	return nil
}

// AuthorizeAdmin checks caller against the designated game admin.
func AuthorizeAdmin(caller, admin string) error {
	if caller == "" || admin == "" || caller != admin {
		return fmt.Errorf("%w: %q is not the game admin", ErrUnauthorized, caller)
	}
	return nil
}
