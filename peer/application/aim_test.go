package application

import (
	"math"
	"testing"

	"voidline/peer/domain"
)

func TestClampToCone_OnAxisAimIsUnchanged(t *testing.T) {
	// 座標軸から半円錐角以上離れた向きでは中心方向はそのまま
	for _, center := range []float64{20, 45, 70, 120, 160, 200, 250, 300, 340} {
		dir := domain.FromAngle(center)
		got := ClampToCone(dir, center, 15)
		if !approxVec(got, dir) {
			t.Errorf("center %v: got %+v, want %+v", center, got, dir)
		}
	}
}

func TestClampToCone_PerAxisQuirk(t *testing.T) {
	// 0度付近では左右の x 成分が等しく、中心方向の x が cos15° まで縮む
	got := ClampToCone(domain.Vector2{X: 1, Y: 0}, 0, 15)
	want := domain.Vector2{X: math.Cos(15 * math.Pi / 180), Y: 0}
	if !approxVec(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestClampToCone_OutsideCone(t *testing.T) {
	// 真横を狙っても円錐の端に寄せられる
	got := ClampToCone(domain.FromAngle(135), 45, 15)
	left, right := domain.FromAngle(30), domain.FromAngle(60)
	if got.X < math.Min(left.X, right.X)-eps || got.X > math.Max(left.X, right.X)+eps {
		t.Errorf("X = %v outside [%v,%v]", got.X, left.X, right.X)
	}
	if got.Y < math.Min(left.Y, right.Y)-eps || got.Y > math.Max(left.Y, right.Y)+eps {
		t.Errorf("Y = %v outside [%v,%v]", got.Y, left.Y, right.Y)
	}
}

func TestMuzzle_AlternatesSides(t *testing.T) {
	tuning := testTuning(t)
	s := NewShip(tuning, true)

	// Angle 0 のとき機首は -X
	if got := Muzzle(tuning, s, 0); !approxVec(got, domain.Vector2{X: -120, Y: -20}) {
		t.Errorf("shot 0 muzzle = %+v", got)
	}
	if got := Muzzle(tuning, s, 1); !approxVec(got, domain.Vector2{X: -120, Y: 20}) {
		t.Errorf("shot 1 muzzle = %+v", got)
	}
}

func TestGun_Cadence(t *testing.T) {
	g := NewGun(testTuning(t))

	var fired []int
	for tick := 1; tick <= 18; tick++ {
		if g.Trigger(1, true) {
			fired = append(fired, tick)
		}
	}
	want := []int{6, 12, 18}
	if len(fired) != len(want) {
		t.Fatalf("fired at %v, want %v", fired, want)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Errorf("fired at %v, want %v", fired, want)
		}
	}

	if g.Trigger(100, false) {
		t.Error("fired without trigger held")
	}
	if !g.Trigger(1, true) {
		t.Error("cooldown should have elapsed while idle")
	}
}

func TestGun_Fire(t *testing.T) {
	tuning := testTuning(t)
	g := NewGun(tuning)
	s := NewShip(tuning, true)
	s.Angle = 135 // 機首は 315度
	s.Velocity = domain.Vector2{X: 10, Y: 20}

	muzzle := Muzzle(tuning, s, 0)
	target := muzzle.Add(domain.FromAngle(315).Scale(500))

	b, ok := g.Fire("self", s, target)
	if !ok {
		t.Fatal("Fire returned false")
	}
	if b.ID != 0 || b.Owner != "self" || b.Position != muzzle {
		t.Errorf("bullet = %+v", b)
	}
	wantVel := domain.FromAngle(315).Scale(tuning.MuzzleSpeed).Add(s.Velocity)
	if !approxVec(b.Velocity, wantVel) {
		t.Errorf("Velocity = %+v, want %+v", b.Velocity, wantVel)
	}
	if !approx(b.Angle, -45) {
		t.Errorf("Angle = %v, want -45", b.Angle)
	}
	if b.TTL != tuning.BulletTTL {
		t.Errorf("TTL = %v", b.TTL)
	}
	if g.Shots() != 1 {
		t.Errorf("Shots = %d, want 1", g.Shots())
	}
}

func TestGun_FireDegenerateAim(t *testing.T) {
	tuning := testTuning(t)
	g := NewGun(tuning)
	s := NewShip(tuning, true)

	if _, ok := g.Fire("self", s, Muzzle(tuning, s, 0)); ok {
		t.Fatal("Fire at muzzle should be skipped")
	}
	if g.Shots() != 0 {
		t.Errorf("Shots = %d, want 0", g.Shots())
	}
}
