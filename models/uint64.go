package models

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
)

// Uint64 is a uint64 column stored as numeric(20,0). The full unsigned range
// round-trips on Postgres. Drivers that hand large numerics back as float64
// (SQLite) are only exact below 2^53; Scan rejects anything at or above it.
type Uint64 uint64

// maxExactFloat is 2^53, the first integer float64 cannot tell from its neighbours.
const maxExactFloat = 1 << 53

// Value implements driver.Valuer.
func (u Uint64) Value() (driver.Value, error) {
	if uint64(u) <= math.MaxInt64 {
		return int64(u), nil
	}
	return strconv.FormatUint(uint64(u), 10), nil
}

// Scan implements sql.Scanner.
func (u *Uint64) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*u = 0
	case int64:
		if v < 0 {
			return fmt.Errorf("models.Uint64: negative value %d", v)
		}
		*u = Uint64(v)
	case float64:
		if v < 0 || v >= maxExactFloat || v != math.Trunc(v) {
			return fmt.Errorf("models.Uint64: value %v out of range", v)
		}
		*u = Uint64(v)
	case []byte:
		return u.parse(string(v))
	case string:
		return u.parse(v)
	default:
		return fmt.Errorf("models.Uint64: unsupported type %T", src)
	}
	return nil
}

func (u *Uint64) parse(s string) error {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("models.Uint64: %w", err)
	}
	*u = Uint64(n)
	return nil
}
