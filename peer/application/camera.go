package application

import (
	"math"

	"voidline/peer/domain"
)

// Camera は追従とズームを平滑化するカメラです。
// 描画変換は screen = world*Zoom + Position です。
type Camera struct {
	Position        domain.Vector2
	DesiredPosition domain.Vector2
	Zoom            float64
	DesiredZoom     float64
	FollowAll       bool

	tuning *Tuning
}

func NewCamera(tuning *Tuning) *Camera {
	return &Camera{
		Zoom:        tuning.MaxZoom,
		DesiredZoom: tuning.MaxZoom,
		tuning:      tuning,
	}
}

// ScreenCenter はビューポートの中心です。
func (c *Camera) ScreenCenter() domain.Vector2 {
	return domain.Vector2{X: c.tuning.ViewportWidth / 2, Y: c.tuning.ViewportHeight / 2}
}

// SpeedZoom は速さに応じた基本ズームです。静止時は上限になります。
func (c *Camera) SpeedZoom(speed float64) float64 {
	t := c.tuning
	if speed <= 0 {
		return t.MaxZoom
	}
	return math.Max(t.MinZoom, math.Min(t.MaxZoom, t.SpeedZoomFactor/speed))
}

// Target は目標のズームと位置を決めます。others はミラーされた機体です。
func (c *Camera) Target(self *Ship, others []*Ship, mouse domain.Vector2) {
	t := c.tuning
	center := c.ScreenCenter()
	parallax := mouse.Sub(center).Scale(t.MouseParallax)

	zoom := c.SpeedZoom(self.Velocity.Length())
	var focus domain.Vector2
	if c.FollowAll {
		ships := append([]*Ship{self}, others...)
		zoom, focus = c.fitAll(ships)
	} else {
		focus = self.Position.Add(self.Velocity.Scale(zoom / t.VelocityLead))
	}
	focus = focus.Add(parallax)

	c.DesiredZoom = zoom
	c.DesiredPosition = center.Sub(focus.Scale(zoom))
}

// fitAll は全機体の外接矩形がビューポートの一定割合に収まるズームと重心を返します。
func (c *Camera) fitAll(ships []*Ship) (float64, domain.Vector2) {
	t := c.tuning
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	var sum domain.Vector2
	for _, s := range ships {
		minX = math.Min(minX, s.Position.X)
		maxX = math.Max(maxX, s.Position.X)
		minY = math.Min(minY, s.Position.Y)
		maxY = math.Max(maxY, s.Position.Y)
		sum = sum.Add(s.Position)
	}

	zoom := t.FollowAllMaxZoom
	if span := maxX - minX; span > 0 {
		zoom = math.Min(zoom, t.ViewportWidth*t.FollowAllFill/span)
	}
	if span := maxY - minY; span > 0 {
		zoom = math.Min(zoom, t.ViewportHeight*t.FollowAllFill/span)
	}
	return zoom, sum.Scale(1 / float64(len(ships)))
}

// Update は現在値を目標へ指数的に近づけます。一定の目標に対して行き過ぎません。
func (c *Camera) Update(step float64) {
	if step <= 0 {
		return
	}
	alpha := 1 - math.Pow(1-c.tuning.CameraSmoothing, step)
	c.Position = c.Position.Add(c.DesiredPosition.Sub(c.Position).Scale(alpha))
	c.Zoom += (c.DesiredZoom - c.Zoom) * alpha
}

func (c *Camera) ScreenToWorld(p domain.Vector2) domain.Vector2 {
	return p.Sub(c.Position).Scale(1 / c.Zoom)
}

func (c *Camera) WorldToScreen(p domain.Vector2) domain.Vector2 {
	return p.Scale(c.Zoom).Add(c.Position)
}
