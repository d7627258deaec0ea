package application

import (
	"math"

	"voidline/peer/domain"
)

const (
	autopilotTurnDeadband = 8  // 度
	autopilotThrustCone   = 45 // 度
)

// Autopilot は BotController の判断を自機のキー入力とマウスに変換します。
type Autopilot struct {
	bot      BotController
	controls *domain.Controls
}

func NewAutopilot(bot BotController) *Autopilot {
	return &Autopilot{bot: bot, controls: domain.NewControls()}
}

// Drive はこのtickの入力を作ります。Tick の直前に呼ぶこと。
func (a *Autopilot) Drive(g *Game) domain.InputState {
	self := g.Self()
	var incoming []*Bullet
	for _, b := range g.Bullets() {
		if b.Owner != g.Address() {
			incoming = append(incoming, b)
		}
	}

	action := a.bot.Decide(self, g.Mirrors(), incoming)
	a.steer(self, action.MoveDirection)
	a.controls.SetMouse(g.Camera().WorldToScreen(action.AimAt), action.Fire)
	a.controls.Advance()
	return a.controls
}

// steer は機首を dir へ向ける旋回キーと、概ね向いたときの前進キーを決めます。
func (a *Autopilot) steer(self *Ship, dir domain.Vector2) {
	a.controls.SetKey(domain.KeyForward, false)
	a.controls.SetKey(domain.KeyLeft, false)
	a.controls.SetKey(domain.KeyRight, false)
	if dir.Length() < 1e-6 {
		return
	}

	want := math.Atan2(dir.Y, dir.X) * 180 / math.Pi
	diff := angleDiff(want, self.Nose())
	switch {
	case diff > autopilotTurnDeadband:
		a.controls.SetKey(domain.KeyRight, true)
	case diff < -autopilotTurnDeadband:
		a.controls.SetKey(domain.KeyLeft, true)
	}
	if math.Abs(diff) < autopilotThrustCone {
		a.controls.SetKey(domain.KeyForward, true)
	}
}

// angleDiff は from から to への最短の回転角を (-180,180] で返します。
func angleDiff(to, from float64) float64 {
	d := wrapAngle(to - from)
	if d > 180 {
		d -= 360
	}
	return d
}
