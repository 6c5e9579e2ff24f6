package models

import (
	"math"
	"testing"
)

func TestUint64Value(t *testing.T) {
	v, err := Uint64(42).Value()
	if err != nil || v != int64(42) {
		t.Errorf("Expected int64 42, got %v (%v)", v, err)
	}

	v, err = Uint64(math.MaxUint64).Value()
	if err != nil || v != "18446744073709551615" {
		t.Errorf("Expected decimal string for max uint64, got %v (%v)", v, err)
	}
}

func TestUint64Scan(t *testing.T) {
	tests := []struct {
		name    string
		src     interface{}
		want    Uint64
		wantErr bool
	}{
		{"nil", nil, 0, false},
		{"int64", int64(7), 7, false},
		{"negative", int64(-1), 0, true},
		{"bytes", []byte("18446744073709551615"), math.MaxUint64, false},
		{"string", "100", 100, false},
		{"float", float64(12), 12, false},
		{"fraction", 1.5, 0, true},
		{"largest exact float", float64(1<<53 - 1), 1<<53 - 1, false},
		{"rounded float", float64(1 << 53), 0, true},
		{"float above int64", float64(1 << 63), 0, true},
		{"garbage", "abc", 0, true},
		{"bool", true, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Uint64
			err := got.Scan(tt.src)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Scan(%v) error = %v, wantErr %v", tt.src, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Scan(%v) = %d, want %d", tt.src, got, tt.want)
			}
		})
	}
}
