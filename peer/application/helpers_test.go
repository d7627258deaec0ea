package application

import (
	"math"
	"testing"

	"voidline/peer/domain"
)

const eps = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) <= eps*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func approxVec(a, b domain.Vector2) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y)
}

func testTuning(t *testing.T) *Tuning {
	t.Helper()
	tuning := DefaultTuning()
	return &tuning
}

// holding は指定キーを押し続けた状態の入力を作ります。
func holding(keys ...domain.Key) *domain.Controls {
	c := domain.NewControls()
	for _, k := range keys {
		c.SetKey(k, true)
	}
	c.Advance()
	c.Advance()
	return c
}
