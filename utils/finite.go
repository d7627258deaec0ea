package utils

import (
	"math"

	"voidline/peer/domain"
)

// FiniteVec はベクトルの全成分が有限かを返します。
func FiniteVec(v domain.Vector2) bool {
	return Finite(v.X, v.Y)
}

// Finite は全ての値がNaNでも無限大でもないかを返します。
func Finite(values ...float64) bool {
	for _, f := range values {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
