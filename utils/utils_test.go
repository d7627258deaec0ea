package utils

import (
	"math"
	"testing"

	"voidline/peer/domain"
)

func TestFiniteVec(t *testing.T) {
	tests := []struct {
		v    domain.Vector2
		want bool
	}{
		{domain.Vector2{X: 1, Y: -2}, true},
		{domain.Vector2{X: math.NaN(), Y: 0}, false},
		{domain.Vector2{X: 0, Y: math.Inf(-1)}, false},
	}
	for _, tt := range tests {
		if got := FiniteVec(tt.v); got != tt.want {
			t.Errorf("FiniteVec(%+v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("VOIDLINE_TEST_STR", "x")
	t.Setenv("VOIDLINE_TEST_INT", "42")
	t.Setenv("VOIDLINE_TEST_BAD", "abc")

	if got := GetEnvDefault("VOIDLINE_TEST_STR", "d"); got != "x" {
		t.Errorf("GetEnvDefault = %q", got)
	}
	if got := GetEnvDefault("VOIDLINE_TEST_MISSING", "d"); got != "d" {
		t.Errorf("GetEnvDefault missing = %q", got)
	}
	if got := GetEnvInt("VOIDLINE_TEST_INT", 1); got != 42 {
		t.Errorf("GetEnvInt = %d", got)
	}
	if got := GetEnvInt("VOIDLINE_TEST_BAD", 1); got != 1 {
		t.Errorf("GetEnvInt bad = %d", got)
	}
}
