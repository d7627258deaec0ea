package application

import (
	"errors"
	"fmt"

	"voidline/utils"
)

// FrameMS は係数の基準となる1フレームの長さ(ms)です。
const FrameMS = 1000.0 / 60.0

var ErrInvalidTuning = errors.New("invalid tuning")

// Tuning はゲームプレイの調整値です。
// 時間に関する値は全て基準フレーム(60FPS)単位です。
type Tuning struct {
	// 推進
	BaseSpeed        float64 `yaml:"base_speed"`
	AfterburnerSpeed float64 `yaml:"afterburner_speed"`
	MaxAfterburner   float64 `yaml:"max_afterburner"`
	AfterburnerDrain float64 `yaml:"afterburner_drain"`
	AfterburnerRegen float64 `yaml:"afterburner_regen"`
	SpeedDampening   float64 `yaml:"speed_dampening"`
	RCSDampening     float64 `yaml:"rcs_dampening"`
	TurnDampening    float64 `yaml:"turn_dampening"`
	TurnRate         float64 `yaml:"turn_rate"`
	GyroDampening    float64 `yaml:"gyro_dampening"`

	// シールド表示
	ShieldAlpha    float64 `yaml:"shield_alpha"`
	ShieldHitAlpha float64 `yaml:"shield_hit_alpha"`
	ShieldFade     float64 `yaml:"shield_fade"`

	// 被弾
	MaxHealth         int     `yaml:"max_health"`
	HitRadius         float64 `yaml:"hit_radius"`
	BulletDamage      int     `yaml:"bullet_damage"`
	GyroBreakChance   float64 `yaml:"gyro_break_chance"`
	RCSBreakChance    float64 `yaml:"rcs_break_chance"`
	EngineBreakChance float64 `yaml:"engine_break_chance"`

	// 射撃
	MuzzleSpeed   float64 `yaml:"muzzle_speed"`
	MuzzleForward float64 `yaml:"muzzle_forward"`
	MuzzleSide    float64 `yaml:"muzzle_side"`
	AimHalfCone   float64 `yaml:"aim_half_cone"`
	FireInterval  float64 `yaml:"fire_interval"`
	BulletTTL     float64 `yaml:"bullet_ttl"`

	// カメラ
	SpeedZoomFactor  float64 `yaml:"speed_zoom_factor"`
	MinZoom          float64 `yaml:"min_zoom"`
	MaxZoom          float64 `yaml:"max_zoom"`
	FollowAllMaxZoom float64 `yaml:"follow_all_max_zoom"`
	FollowAllFill    float64 `yaml:"follow_all_fill"`
	MouseParallax    float64 `yaml:"mouse_parallax"`
	VelocityLead     float64 `yaml:"velocity_lead"`
	CameraSmoothing  float64 `yaml:"camera_smoothing"`
	ViewportWidth    float64 `yaml:"viewport_width"`
	ViewportHeight   float64 `yaml:"viewport_height"`
}

func DefaultTuning() Tuning {
	return Tuning{
		BaseSpeed:        200,
		AfterburnerSpeed: 600,
		MaxAfterburner:   100,
		AfterburnerDrain: 0.5,
		AfterburnerRegen: 0.25,
		SpeedDampening:   0.005,
		RCSDampening:     0.02,
		TurnDampening:    0.01,
		TurnRate:         0.1,
		GyroDampening:    0.2,

		ShieldAlpha:    0.15,
		ShieldHitAlpha: 0.5,
		ShieldFade:     1.0 / 40,

		MaxHealth:         100,
		HitRadius:         40,
		BulletDamage:      5,
		GyroBreakChance:   0.10,
		RCSBreakChance:    0.10,
		EngineBreakChance: 0.05,

		MuzzleSpeed:   50000,
		MuzzleForward: 120,
		MuzzleSide:    20,
		AimHalfCone:   15,
		FireInterval:  5,
		BulletTTL:     180, // 3秒 @60FPS

		SpeedZoomFactor:  5000,
		MinZoom:          0.4,
		MaxZoom:          0.6,
		FollowAllMaxZoom: 0.8,
		FollowAllFill:    0.7,
		MouseParallax:    0.4,
		VelocityLead:     20,
		CameraSmoothing:  0.1,
		ViewportWidth:    1280,
		ViewportHeight:   720,
	}
}

// Validate は係数が破綻しない範囲にあるかを検査します。NaN と無限大は全て拒否します。
func (t *Tuning) Validate() error {
	all := map[string]float64{
		"base_speed":          t.BaseSpeed,
		"afterburner_speed":   t.AfterburnerSpeed,
		"max_afterburner":     t.MaxAfterburner,
		"afterburner_drain":   t.AfterburnerDrain,
		"afterburner_regen":   t.AfterburnerRegen,
		"speed_dampening":     t.SpeedDampening,
		"rcs_dampening":       t.RCSDampening,
		"turn_dampening":      t.TurnDampening,
		"turn_rate":           t.TurnRate,
		"gyro_dampening":      t.GyroDampening,
		"shield_alpha":        t.ShieldAlpha,
		"shield_hit_alpha":    t.ShieldHitAlpha,
		"shield_fade":         t.ShieldFade,
		"hit_radius":          t.HitRadius,
		"gyro_break_chance":   t.GyroBreakChance,
		"rcs_break_chance":    t.RCSBreakChance,
		"engine_break_chance": t.EngineBreakChance,
		"muzzle_speed":        t.MuzzleSpeed,
		"muzzle_forward":      t.MuzzleForward,
		"muzzle_side":         t.MuzzleSide,
		"aim_half_cone":       t.AimHalfCone,
		"fire_interval":       t.FireInterval,
		"bullet_ttl":          t.BulletTTL,
		"speed_zoom_factor":   t.SpeedZoomFactor,
		"min_zoom":            t.MinZoom,
		"max_zoom":            t.MaxZoom,
		"follow_all_max_zoom": t.FollowAllMaxZoom,
		"follow_all_fill":     t.FollowAllFill,
		"mouse_parallax":      t.MouseParallax,
		"velocity_lead":       t.VelocityLead,
		"camera_smoothing":    t.CameraSmoothing,
		"viewport_width":      t.ViewportWidth,
		"viewport_height":     t.ViewportHeight,
	}
	for name, v := range all {
		if !utils.Finite(v) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidTuning, name, v)
		}
	}

	positive := []string{
		"base_speed", "max_afterburner", "hit_radius", "muzzle_speed", "fire_interval",
		"bullet_ttl", "min_zoom", "follow_all_max_zoom", "velocity_lead",
		"viewport_width", "viewport_height",
	}
	for _, name := range positive {
		if v := all[name]; v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidTuning, name, v)
		}
	}
	if t.MaxHealth <= 0 {
		return fmt.Errorf("%w: max_health must be positive, got %d", ErrInvalidTuning, t.MaxHealth)
	}
	if t.BulletDamage < 0 {
		return fmt.Errorf("%w: bullet_damage must not be negative, got %d", ErrInvalidTuning, t.BulletDamage)
	}
	if t.MinZoom > t.MaxZoom {
		return fmt.Errorf("%w: min_zoom %v exceeds max_zoom %v", ErrInvalidTuning, t.MinZoom, t.MaxZoom)
	}
	if t.CameraSmoothing <= 0 || t.CameraSmoothing > 1 {
		return fmt.Errorf("%w: camera_smoothing must be in (0,1], got %v", ErrInvalidTuning, t.CameraSmoothing)
	}
	if t.AimHalfCone < 0 || t.AimHalfCone >= 90 {
		return fmt.Errorf("%w: aim_half_cone must be in [0,90), got %v", ErrInvalidTuning, t.AimHalfCone)
	}
	return nil
}
