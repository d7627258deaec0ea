package domain

import "math"

// Vector2 は2Dベクトルです。値として扱い、各演算は新しい値を返します。
type Vector2 struct {
	X, Y float64
}

func (v Vector2) Add(o Vector2) Vector2 {
	return Vector2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vector2) Sub(o Vector2) Vector2 {
	return Vector2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vector2) Scale(s float64) Vector2 {
	return Vector2{X: v.X * s, Y: v.Y * s}
}

// Length はベクトルの長さを返します。
func (v Vector2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Normalized は単位ベクトルを返します。
// 長さ0のときはNaNになるため、呼び出し側でTryNormalizedを使うこと。
func (v Vector2) Normalized() Vector2 {
	l := v.Length()
	return Vector2{X: v.X / l, Y: v.Y / l}
}

// TryNormalized は長さ0のとき ok=false を返します。
func (v Vector2) TryNormalized() (Vector2, bool) {
	l := v.Length()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return Vector2{}, false
	}
	return Vector2{X: v.X / l, Y: v.Y / l}, true
}

// Distance は a から b までの距離を返します。
func Distance(a, b Vector2) float64 {
	return b.Sub(a).Length()
}

// FromAngle は角度(度)の方向を向く単位ベクトルを返します。
func FromAngle(deg float64) Vector2 {
	rad := deg * math.Pi / 180
	return Vector2{X: math.Cos(rad), Y: math.Sin(rad)}
}
