package application

import (
	"math"

	"voidline/peer/domain"
)

// ClampToCone は照準方向を center±halfCone の円錐に収めます。
// 角度ではなく軸ごとに左右の方向ベクトルの成分の間へクランプするため、
// 円錐が座標軸をまたぐ向き(90度の倍数付近)では中心方向そのものも縮みます。
func ClampToCone(dir domain.Vector2, center, halfCone float64) domain.Vector2 {
	left := domain.FromAngle(center - halfCone)
	right := domain.FromAngle(center + halfCone)
	return domain.Vector2{
		X: sortedClamp(dir.X, left.X, right.X),
		Y: sortedClamp(dir.Y, left.Y, right.Y),
	}
}

// sortedClamp は a,b の大小に関係なく v をその間に収めます。
func sortedClamp(v, a, b float64) float64 {
	lo, hi := min(a, b), max(a, b)
	return min(max(v, lo), hi)
}

// Muzzle は counter 発目の発射位置です。偶数発目と奇数発目で左右の砲口を交互に使います。
func Muzzle(tuning *Tuning, ship *Ship, counter uint32) domain.Vector2 {
	nose := domain.FromAngle(ship.Nose())
	perp := domain.Vector2{X: nose.Y, Y: -nose.X}
	side := float64(counter%2)*2 - 1
	return ship.Position.
		Add(perp.Scale(side * tuning.MuzzleSide)).
		Add(nose.Scale(tuning.MuzzleForward))
}

// Gun は自機の射撃間隔と弾丸IDを管理します。
type Gun struct {
	tuning   *Tuning
	cooldown float64
	counter  uint32
}

func NewGun(tuning *Tuning) *Gun {
	return &Gun{tuning: tuning, cooldown: tuning.FireInterval}
}

// Trigger はクールダウンを進め、撃てるなら true を返します。
func (g *Gun) Trigger(step float64, held bool) bool {
	g.cooldown -= step
	if !held || g.cooldown >= 0 {
		return false
	}
	g.cooldown = g.tuning.FireInterval
	return true
}

// Fire は target(ワールド座標)へ向けた弾丸を作ります。
// 砲口と target が一致して方向が定まらないときは撃たず、IDも消費しません。
func (g *Gun) Fire(owner domain.PeerAddress, ship *Ship, target domain.Vector2) (*Bullet, bool) {
	t := g.tuning
	muzzle := Muzzle(t, ship, g.counter)
	raw, ok := target.Sub(muzzle).TryNormalized()
	if !ok {
		return nil, false
	}
	dir := ClampToCone(raw, ship.Nose(), t.AimHalfCone)

	b := &Bullet{
		ID:       g.counter,
		Owner:    owner,
		Position: muzzle,
		Velocity: dir.Scale(t.MuzzleSpeed).Add(ship.Velocity),
		Angle:    math.Atan2(dir.Y, dir.X) * 180 / math.Pi,
		TTL:      t.BulletTTL,
	}
	g.counter++
	return b, true
}

// Shots は発射済みの弾数です。
func (g *Gun) Shots() uint32 {
	return g.counter
}
