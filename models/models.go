package models

// All lists every table the service migrates.
func All() []interface{} {
	return []interface{}{
		&GameConfig{},
		&Player{},
		&TokenAccount{},
		&LedgerEntry{},
	}
}
