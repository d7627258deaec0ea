package application

import (
	"math"
	"testing"

	"voidline/peer/domain"
)

func TestNewShip(t *testing.T) {
	tuning := testTuning(t)
	s := NewShip(tuning, true)

	if s.Health != 100 {
		t.Errorf("Health = %d, want 100", s.Health)
	}
	if s.Speed != tuning.BaseSpeed || s.AfterburnerFuel != tuning.MaxAfterburner {
		t.Errorf("Speed = %v, fuel = %v", s.Speed, s.AfterburnerFuel)
	}
	if !s.EngineUsable() || !s.RCSUsable() || !s.GyroUsable() || !s.ShieldOn {
		t.Error("subsystems should start on")
	}
	if s.ShieldAlpha != tuning.ShieldAlpha {
		t.Errorf("ShieldAlpha = %v, want %v", s.ShieldAlpha, tuning.ShieldAlpha)
	}
}

func TestShip_ForwardThrustFollowsNose(t *testing.T) {
	for _, angle := range []float64{0, 30, 90, 200, 315} {
		s := NewShip(testTuning(t), true)
		s.Angle = angle

		s.Step(1, holding(domain.KeyForward))

		want := domain.FromAngle(s.Nose()).Scale(200)
		if !approxVec(s.Velocity, want) {
			t.Errorf("angle %v: Velocity = %+v, want %+v", angle, s.Velocity, want)
		}
		if !approxVec(s.Position, want.Scale(1.0/1000)) {
			t.Errorf("angle %v: Position = %+v", angle, s.Position)
		}
	}
}

func TestShip_OpposingKeysCancel(t *testing.T) {
	s := NewShip(testTuning(t), true)
	s.Step(1, holding(domain.KeyForward, domain.KeyBack, domain.KeyLeft, domain.KeyRight))

	if s.LastInput != (domain.Vector2{}) {
		t.Errorf("LastInput = %+v, want zero", s.LastInput)
	}
	if s.Velocity != (domain.Vector2{}) || s.AngularVelocity != 0 {
		t.Errorf("ship moved: v=%+v av=%v", s.Velocity, s.AngularVelocity)
	}
}

func TestShip_Afterburner(t *testing.T) {
	tuning := testTuning(t)
	s := NewShip(tuning, true)

	s.Step(1, holding(domain.KeyAfterburner))
	if s.Speed != tuning.AfterburnerSpeed {
		t.Errorf("Speed = %v, want %v", s.Speed, tuning.AfterburnerSpeed)
	}
	if !approx(s.AfterburnerFuel, 99.5) {
		t.Errorf("fuel = %v, want 99.5", s.AfterburnerFuel)
	}

	s.Step(1, holding())
	if s.Speed != tuning.BaseSpeed {
		t.Errorf("Speed after release = %v, want %v", s.Speed, tuning.BaseSpeed)
	}
	if !approx(s.AfterburnerFuel, 99.75) {
		t.Errorf("fuel = %v, want 99.75", s.AfterburnerFuel)
	}

	// 満タンを超えない
	s.Step(10, holding())
	if s.AfterburnerFuel != tuning.MaxAfterburner {
		t.Errorf("fuel = %v, want capped at %v", s.AfterburnerFuel, tuning.MaxAfterburner)
	}
}

func TestShip_AfterburnerLowFuel(t *testing.T) {
	tuning := testTuning(t)
	s := NewShip(tuning, true)
	s.AfterburnerFuel = 0.75

	s.Step(1, holding(domain.KeyAfterburner))
	if s.Speed != tuning.BaseSpeed {
		t.Errorf("Speed = %v, want base speed below 1 fuel", s.Speed)
	}
	if !approx(s.AfterburnerFuel, 0.25) {
		t.Errorf("fuel = %v, want 0.25", s.AfterburnerFuel)
	}

	s.Step(1, holding(domain.KeyAfterburner))
	if s.AfterburnerFuel != 0 {
		t.Errorf("fuel = %v, want floored at 0", s.AfterburnerFuel)
	}

	// 空のまま押し続けると回復に回る
	s.Step(1, holding(domain.KeyAfterburner))
	if !approx(s.AfterburnerFuel, 0.25) {
		t.Errorf("fuel = %v, want regenerating", s.AfterburnerFuel)
	}
}

func TestShip_TogglesAreEdgeTriggered(t *testing.T) {
	s := NewShip(testTuning(t), true)
	c := domain.NewControls()

	c.SetKey(domain.KeyEngine, true)
	c.SetKey(domain.KeyRCS, true)
	c.SetKey(domain.KeyGyro, true)
	c.SetKey(domain.KeyShield, true)
	for i := 0; i < 3; i++ {
		c.Advance()
		s.Step(1, c)
	}

	if s.EngineOn || s.RCSOn || s.GyroOn || s.ShieldOn {
		t.Errorf("expected each toggle to flip once: engine=%v rcs=%v gyro=%v shield=%v", s.EngineOn, s.RCSOn, s.GyroOn, s.ShieldOn)
	}
	if s.ShieldAlpha != 0 {
		t.Errorf("ShieldAlpha = %v, want 0 with shield off", s.ShieldAlpha)
	}
}

func TestShip_RCSDampening(t *testing.T) {
	s := NewShip(testTuning(t), true)
	s.Velocity = domain.Vector2{X: 100, Y: -50}

	s.Step(1, nil)

	want := domain.Vector2{X: 98, Y: -49}
	if !approxVec(s.Velocity, want) {
		t.Errorf("Velocity = %+v, want %+v", s.Velocity, want)
	}
}

func TestShip_NoRCSWithoutEngine(t *testing.T) {
	s := NewShip(testTuning(t), true)
	s.Velocity = domain.Vector2{X: 100}
	s.EngineBroken = true

	s.Step(1, nil)

	if s.Velocity.X != 100 {
		t.Errorf("Velocity = %+v, want unchanged", s.Velocity)
	}
	if !approx(s.Position.X, 0.1) {
		t.Errorf("Position = %+v, want drift 0.1", s.Position)
	}
}

func TestShip_LargeStepDoesNotOvershoot(t *testing.T) {
	s := NewShip(testTuning(t), true)
	s.Velocity = domain.Vector2{X: 100}
	s.AngularVelocity = 3

	s.Step(100, nil)

	if s.Velocity.X != 0 {
		t.Errorf("Velocity = %+v, want 0", s.Velocity)
	}
	if s.AngularVelocity != 0 {
		t.Errorf("AngularVelocity = %v, want 0", s.AngularVelocity)
	}
}

func TestShip_TurnAndGyro(t *testing.T) {
	s := NewShip(testTuning(t), true)

	s.Step(1, holding(domain.KeyRight))
	if !approx(s.AngularVelocity, 0.1) {
		t.Fatalf("AngularVelocity = %v, want 0.1", s.AngularVelocity)
	}
	if !approx(s.Angle, 0.1) {
		t.Errorf("Angle = %v, want 0.1", s.Angle)
	}

	s.Step(1, holding())
	if !approx(s.AngularVelocity, 0.08) {
		t.Errorf("AngularVelocity after gyro = %v, want 0.08", s.AngularVelocity)
	}

	s.GyroOn = false
	s.Step(1, holding())
	if !approx(s.AngularVelocity, 0.08) {
		t.Errorf("AngularVelocity without gyro = %v, want 0.08", s.AngularVelocity)
	}
}

func TestShip_AngleWrapsBelowZero(t *testing.T) {
	s := NewShip(testTuning(t), true)
	s.Step(1, holding(domain.KeyLeft))

	if s.Angle < 0 || s.Angle >= 360 {
		t.Fatalf("Angle = %v, want within [0,360)", s.Angle)
	}
	if !approx(s.Angle, 359.9) {
		t.Errorf("Angle = %v, want 359.9", s.Angle)
	}
}

func TestShip_ShieldGlow(t *testing.T) {
	tuning := testTuning(t)
	s := NewShip(tuning, true)

	s.TakeDamage()
	if s.ShieldAlpha != tuning.ShieldHitAlpha || !s.DamageTaken() {
		t.Fatalf("after hit: alpha=%v taken=%v", s.ShieldAlpha, s.DamageTaken())
	}

	s.Step(1, nil)
	if !approx(s.ShieldAlpha, tuning.ShieldHitAlpha-tuning.ShieldFade) {
		t.Errorf("alpha = %v, want %v", s.ShieldAlpha, tuning.ShieldHitAlpha-tuning.ShieldFade)
	}

	for i := 0; i < 20; i++ {
		s.Step(1, nil)
	}
	if s.ShieldAlpha != tuning.ShieldAlpha || s.DamageTaken() {
		t.Errorf("alpha = %v taken=%v, want baseline and cleared", s.ShieldAlpha, s.DamageTaken())
	}
}

func TestShip_MirrorDoesNotIntegrate(t *testing.T) {
	s := NewShip(testTuning(t), false)
	s.Velocity = domain.Vector2{X: 100}
	s.AngularVelocity = 1

	s.Step(1, holding(domain.KeyForward, domain.KeyEngine))

	if s.Position != (domain.Vector2{}) || s.Angle != 0 || !s.EngineOn {
		t.Errorf("mirror changed: pos=%+v angle=%v engine=%v", s.Position, s.Angle, s.EngineOn)
	}
}

func TestShip_StateRoundTrip(t *testing.T) {
	tuning := testTuning(t)
	src := NewShip(tuning, true)
	src.Position = domain.Vector2{X: 12.5, Y: -7}
	src.Angle = 123.25
	src.Health = 35
	src.EngineBroken = true
	src.LastInput = domain.Vector2{X: 1, Y: -1}
	src.Speed = tuning.AfterburnerSpeed

	decoded, err := domain.ParsePlayerStatePayload(src.State().Encode())
	if err != nil {
		t.Fatalf("ParsePlayerStatePayload failed: %v", err)
	}
	dst := NewShip(tuning, false)
	dst.ApplyState(decoded)

	if dst.Position != src.Position || dst.Angle != src.Angle || dst.Health != src.Health {
		t.Errorf("mirror = pos %+v angle %v health %d", dst.Position, dst.Angle, dst.Health)
	}
	if dst.EngineUsable() != src.EngineUsable() {
		t.Errorf("EngineUsable = %v, want %v", dst.EngineUsable(), src.EngineUsable())
	}
	if dst.LastInput != src.LastInput || dst.Speed != src.Speed {
		t.Errorf("input = %+v speed = %v", dst.LastInput, dst.Speed)
	}
}

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{360, 0},
		{725, 5},
		{-90, 270},
		{-720, 0},
		{-1e-15, 0},
	}
	for _, tt := range tests {
		got := wrapAngle(tt.in)
		if got < 0 || got >= 360 || math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("wrapAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
