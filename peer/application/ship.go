package application

import (
	"math"

	"voidline/peer/domain"
)

// Ship は自機もしくはミラーされた他ピアの機体です。
// 自機(Controlled)だけが入力を読み、物理を積分します。
type Ship struct {
	Position        domain.Vector2
	Velocity        domain.Vector2
	Angle           float64 // 度 [0,360)
	AngularVelocity float64 // 度/フレーム
	Health          int
	Speed           float64
	AfterburnerFuel float64

	EngineOn     bool
	EngineBroken bool
	RCSOn        bool
	RCSBroken    bool
	GyroOn       bool
	GyroBroken   bool
	ShieldOn     bool

	Controlled bool
	LastInput  domain.Vector2

	ShieldAlpha float64
	damageTaken bool

	tuning *Tuning
}

func NewShip(tuning *Tuning, controlled bool) *Ship {
	return &Ship{
		Health:          tuning.MaxHealth,
		Speed:           tuning.BaseSpeed,
		AfterburnerFuel: tuning.MaxAfterburner,
		EngineOn:        true,
		RCSOn:           true,
		GyroOn:          true,
		ShieldOn:        true,
		Controlled:      controlled,
		ShieldAlpha:     tuning.ShieldAlpha,
		tuning:          tuning,
	}
}

func (s *Ship) EngineUsable() bool { return s.EngineOn && !s.EngineBroken }
func (s *Ship) RCSUsable() bool    { return s.RCSOn && !s.RCSBroken }
func (s *Ship) GyroUsable() bool   { return s.GyroOn && !s.GyroBroken }

// DamageTaken は被弾後のシールド発光が残っているかを返します。
func (s *Ship) DamageTaken() bool {
	return s.damageTaken
}

// Nose は推進で進む向き(機首)の角度です。スプライトは後ろ向きに描かれるため180度ずれます。
func (s *Ship) Nose() float64 {
	return wrapAngle(s.Angle + 180)
}

// Step は step フレーム分だけ機体を進めます。
// ミラーはシールド発光の減衰だけを行い、位置などは player-state で上書きされます。
func (s *Ship) Step(step float64, input domain.InputState) {
	if s.Controlled && input != nil {
		s.sampleInput(step, input)
	}
	s.relaxShield(step)
	if !s.Controlled {
		return
	}
	s.integrateAngular(step)
	s.integrateLinear(step)
}

func (s *Ship) sampleInput(step float64, input domain.InputState) {
	t := s.tuning

	var in domain.Vector2
	if input.Key(domain.KeyForward).IsDown() {
		in.Y -= 1
	}
	if input.Key(domain.KeyBack).IsDown() {
		in.Y += 1
	}
	if input.Key(domain.KeyLeft).IsDown() {
		in.X -= 1
	}
	if input.Key(domain.KeyRight).IsDown() {
		in.X += 1
	}
	s.LastInput = in

	if input.Key(domain.KeyAfterburner).IsDown() && s.AfterburnerFuel > 0 {
		if s.AfterburnerFuel > 1 {
			s.Speed = t.AfterburnerSpeed
		}
		s.AfterburnerFuel = math.Max(0, s.AfterburnerFuel-step*t.AfterburnerDrain)
	} else {
		s.Speed = t.BaseSpeed
		s.AfterburnerFuel = math.Min(t.MaxAfterburner, s.AfterburnerFuel+step*t.AfterburnerRegen)
	}

	if input.Key(domain.KeyEngine) == domain.KeyPressed {
		s.EngineOn = !s.EngineOn
	}
	if input.Key(domain.KeyRCS) == domain.KeyPressed {
		s.RCSOn = !s.RCSOn
	}
	if input.Key(domain.KeyGyro) == domain.KeyPressed {
		s.GyroOn = !s.GyroOn
	}
	if input.Key(domain.KeyShield) == domain.KeyPressed {
		s.ShieldOn = !s.ShieldOn
	}
}

func (s *Ship) relaxShield(step float64) {
	t := s.tuning
	if !s.ShieldOn {
		s.ShieldAlpha = 0
		return
	}
	if s.ShieldAlpha < t.ShieldAlpha {
		s.ShieldAlpha = t.ShieldAlpha
	}
	if s.damageTaken && s.ShieldAlpha > t.ShieldAlpha {
		s.ShieldAlpha = math.Max(t.ShieldAlpha, s.ShieldAlpha-step*t.ShieldFade)
	} else {
		s.damageTaken = false
	}
}

func (s *Ship) integrateAngular(step float64) {
	t := s.tuning
	switch {
	case s.LastInput.X != 0 && s.EngineUsable():
		s.AngularVelocity = s.AngularVelocity*decay(t.TurnDampening, step) + s.LastInput.X*step*t.TurnRate
	case s.GyroUsable():
		s.AngularVelocity *= decay(t.GyroDampening, step)
	}
	s.Angle = wrapAngle(s.Angle + s.AngularVelocity*step)
}

func (s *Ship) integrateLinear(step float64) {
	t := s.tuning
	switch {
	case s.LastInput.Y != 0 && s.EngineUsable():
		thrust := domain.FromAngle(s.Angle).Scale(s.Speed * s.LastInput.Y * step)
		s.Velocity = s.Velocity.Scale(decay(t.SpeedDampening, step)).Add(thrust)
	case s.RCSUsable() && s.EngineUsable():
		s.Velocity = s.Velocity.Scale(decay(t.RCSDampening, step))
	}
	s.Position = s.Position.Add(s.Velocity.Scale(step / 1000))
}

// TakeDamage は被弾フラグを立て、シールドを発光させます。体力は変えません。
func (s *Ship) TakeDamage() {
	s.damageTaken = true
	if s.ShieldOn {
		s.ShieldAlpha = s.tuning.ShieldHitAlpha
	}
}

// Respawn は原点で全快させ、全サブシステムを修理します。
func (s *Ship) Respawn() {
	s.Position = domain.Vector2{}
	s.Velocity = domain.Vector2{}
	s.Angle = 0
	s.AngularVelocity = 0
	s.Health = s.tuning.MaxHealth
	s.EngineBroken = false
	s.RCSBroken = false
	s.GyroBroken = false
}

// State は複製用の player-state を作ります。
func (s *Ship) State() *domain.PlayerStatePayload {
	return &domain.PlayerStatePayload{
		Position: s.Position,
		Angle:    s.Angle,
		Health:   int32(s.Health),
		Input:    s.LastInput,
		Engine:   s.EngineUsable(),
		Speed:    s.Speed,
	}
}

// ApplyState は受信した player-state でミラーを丸ごと上書きします。
func (s *Ship) ApplyState(p *domain.PlayerStatePayload) {
	s.Position = p.Position
	s.Angle = wrapAngle(p.Angle)
	s.Health = int(p.Health)
	s.LastInput = p.Input
	s.EngineOn = p.Engine
	s.EngineBroken = false
	s.Speed = p.Speed
}

// decay は1フレームあたり rate で減衰させる係数を step フレーム分に伸ばします。負にはなりません。
func decay(rate, step float64) float64 {
	return math.Max(0, 1-rate*step)
}

// wrapAngle は角度を [0,360) に正規化します。
func wrapAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}
