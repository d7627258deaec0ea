package application

import (
	"math"
	"math/rand/v2"

	"voidline/peer/domain"
)

const (
	botDangerDist float64 = 400  // 弾丸回避を始める距離
	botNoiseAngle float64 = 0.52 // ±30度 (π/6 ≈ 0.52 rad)
	rushChance    float64 = 0.02 // 毎tick 2% の確率で突撃
	botFireRange  float64 = 2500 // 射撃を始める距離
)

// RuleBotController はルールベースのボットAIです。
// ボットごとに異なる個性パラメータを持ちます。
type RuleBotController struct {
	CloseRange float64 // 後退を始める距離
	MidRange   float64 // ストレイフを始める距離
	StrafeSign float64 // +1: 反時計回り, -1: 時計回り

	random func() float64
}

// NewRuleBotController はランダムな個性を持つボットAIを生成します。
func NewRuleBotController(random func() float64) *RuleBotController {
	if random == nil {
		random = rand.Float64
	}
	strafeSign := 1.0
	if random() < 0.5 {
		strafeSign = -1.0
	}
	return &RuleBotController{
		CloseRange: 300 + random()*400,   // 300〜700
		MidRange:   1000 + random()*1000, // 1000〜2000
		StrafeSign: strafeSign,
		random:     random,
	}
}

func (r *RuleBotController) Decide(self *Ship, enemies []*Ship, incoming []*Bullet) BotAction {
	nearest := r.findNearestEnemy(self, enemies)

	action := BotAction{AimAt: self.Position.Add(domain.FromAngle(self.Nose()).Scale(1000))}
	if nearest != nil {
		action.AimAt = nearest.Position
		action.Fire = domain.Distance(self.Position, nearest.Position) < botFireRange
	}

	// 被弾回避を優先
	if dir, ok := r.evadeBullet(self, incoming); ok {
		action.MoveDirection = r.addNoise(dir)
		return action
	}
	if nearest == nil {
		return action
	}

	delta := nearest.Position.Sub(self.Position)
	dist := delta.Length()
	if dist < 0.001 {
		return action
	}
	n := delta.Scale(1 / dist)

	// ランダム突撃: 一定確率で距離に関係なく接近
	if r.random() < rushChance {
		action.MoveDirection = r.addNoise(n)
		return action
	}

	var dir domain.Vector2
	switch {
	case dist < r.CloseRange:
		// 近距離: 後退
		dir = n.Scale(-1)
	case dist < r.MidRange:
		// 中距離: 横移動（ストレイフ方向はボットごとに異なる）
		dir = domain.Vector2{X: -n.Y * r.StrafeSign, Y: n.X * r.StrafeSign}
	default:
		// 遠距離: 接近
		dir = n
	}
	action.MoveDirection = r.addNoise(dir)
	return action
}

// evadeBullet は自分に向かってくる弾丸を回避する方向を返します。
func (r *RuleBotController) evadeBullet(self *Ship, bullets []*Bullet) (domain.Vector2, bool) {
	closestDist := math.MaxFloat64
	var closest *Bullet

	for _, b := range bullets {
		toSelf := self.Position.Sub(b.Position)
		dist := toSelf.Length()
		if dist > botDangerDist {
			continue
		}

		// 弾丸が自分に向かっているか確認（内積 > 0）
		if toSelf.X*b.Velocity.X+toSelf.Y*b.Velocity.Y <= 0 {
			continue
		}
		if dist < closestDist {
			closestDist = dist
			closest = b
		}
	}

	if closest == nil {
		return domain.Vector2{}, false
	}

	// 弾丸の進行方向に対して垂直に回避
	v, ok := closest.Velocity.TryNormalized()
	if !ok {
		return domain.Vector2{}, false
	}
	return domain.Vector2{X: -v.Y, Y: v.X}, true
}

// findNearestEnemy は最寄りの敵を探します。
func (r *RuleBotController) findNearestEnemy(self *Ship, enemies []*Ship) *Ship {
	var nearest *Ship
	nearestDist := math.MaxFloat64

	for _, other := range enemies {
		if other == self || other.Health <= 0 {
			continue
		}
		if d := domain.Distance(self.Position, other.Position); d < nearestDist {
			nearestDist = d
			nearest = other
		}
	}
	return nearest
}

// addNoise は移動方向に ±30度 のランダムノイズを加えます。
func (r *RuleBotController) addNoise(dir domain.Vector2) domain.Vector2 {
	noise := (r.random()*2 - 1) * botNoiseAngle
	cos, sin := math.Cos(noise), math.Sin(noise)
	return domain.Vector2{
		X: dir.X*cos - dir.Y*sin,
		Y: dir.X*sin + dir.Y*cos,
	}
}
