package application

import (
	"math"
	"math/rand/v2"

	"voidline/peer/domain"
)

// Hit は自機への命中1件です。
type Hit struct {
	Bullet BulletKey
	Killed bool // この命中で撃墜され、リスポーンした
}

// Resolver は他ピアの弾丸と自機の当たり判定、被弾処理を行います。
type Resolver struct {
	tuning *Tuning
	random func() float64
}

func NewResolver(tuning *Tuning, random func() float64) *Resolver {
	if random == nil {
		random = rand.Float64
	}
	return &Resolver{tuning: tuning, random: random}
}

// Resolve は自機に命中した弾丸を取り除き、ダメージと故障、撃墜を適用します。
// 自分の弾丸は判定しません。
func (r *Resolver) Resolve(self domain.PeerAddress, ship *Ship, bullets *BulletSet) []Hit {
	var hits []Hit
	for _, b := range bullets.Live() {
		if b.Owner == self {
			continue
		}
		if domain.Distance(ship.Position, b.Position) >= r.tuning.HitRadius {
			continue
		}
		bullets.Remove(b.Key())
		hits = append(hits, Hit{Bullet: b.Key(), Killed: r.damage(ship)})
	}
	return hits
}

func (r *Resolver) damage(ship *Ship) bool {
	t := r.tuning
	ship.Health -= t.BulletDamage
	ship.TakeDamage()

	h := float64(ship.Health) / 1000
	if r.random() < math.Max(0, t.GyroBreakChance-h) {
		ship.GyroBroken = true
	}
	if r.random() < math.Max(0, t.RCSBreakChance-h) {
		ship.RCSBroken = true
	}
	if r.random() < math.Max(0, t.EngineBreakChance-h) {
		ship.EngineBroken = true
	}

	if ship.Health <= 0 {
		ship.Respawn()
		return true
	}
	return false
}
