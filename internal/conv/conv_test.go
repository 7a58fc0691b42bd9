package conv

import (
	"math"
	"testing"
)

type handle uint32

func TestToID(t *testing.T) {
	if got := ToID[handle](42); got != 42 {
		t.Errorf("ToID(42) = %d, want 42", got)
	}
	if got := ToID[handle](0); got != 0 {
		t.Errorf("ToID(0) = %d, want 0", got)
	}
}

func TestToIDPanics(t *testing.T) {
	tests := []struct {
		name string
		n    int
	}{
		{"negative", -1},
		{"sentinel", math.MaxUint32 - 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("ToID(%d) did not panic", tt.n)
				}
			}()
			_ = ToID[handle](tt.n)
		})
	}
}

func TestIntToUint32(t *testing.T) {
	if got := IntToUint32(7); got != 7 {
		t.Errorf("IntToUint32(7) = %d", got)
	}
	defer func() {
		if recover() == nil {
			t.Error("IntToUint32(-1) did not panic")
		}
	}()
	_ = IntToUint32(-1)
}
