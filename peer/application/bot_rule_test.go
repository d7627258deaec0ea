package application

import (
	"testing"

	"voidline/peer/domain"
)

// 乱数0.5固定: ノイズなし、突撃なし、ストレイフは反時計回り
func newTestBot(t *testing.T) *RuleBotController {
	t.Helper()
	bot := NewRuleBotController(fixedRandom(0.5))
	if bot.CloseRange != 500 || bot.MidRange != 1500 || bot.StrafeSign != 1 {
		t.Fatalf("unexpected personality: %+v", bot)
	}
	return bot
}

func shipAt(tuning *Tuning, x, y float64) *Ship {
	s := NewShip(tuning, false)
	s.Position = domain.Vector2{X: x, Y: y}
	return s
}

func TestRuleBot_NoEnemies(t *testing.T) {
	tuning := testTuning(t)
	bot := newTestBot(t)
	self := NewShip(tuning, true)

	action := bot.Decide(self, nil, nil)

	if action.Fire {
		t.Error("should not fire without enemies")
	}
	if action.MoveDirection != (domain.Vector2{}) {
		t.Errorf("MoveDirection = %v, want zero", action.MoveDirection)
	}
	// 機首は Angle+180 なので Angle=0 では -X 方向
	if !approxVec(action.AimAt, domain.Vector2{X: -1000, Y: 0}) {
		t.Errorf("AimAt = %v, want (-1000,0)", action.AimAt)
	}
}

func TestRuleBot_Ranges(t *testing.T) {
	tuning := testTuning(t)

	tests := []struct {
		name     string
		enemy    domain.Vector2
		wantDir  domain.Vector2
		wantFire bool
	}{
		{name: "far approaches", enemy: domain.Vector2{X: 3000}, wantDir: domain.Vector2{X: 1}, wantFire: false},
		{name: "mid strafes", enemy: domain.Vector2{X: 1000}, wantDir: domain.Vector2{Y: 1}, wantFire: true},
		{name: "close retreats", enemy: domain.Vector2{X: 200}, wantDir: domain.Vector2{X: -1}, wantFire: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot := newTestBot(t)
			self := NewShip(tuning, true)
			enemy := shipAt(tuning, tt.enemy.X, tt.enemy.Y)

			action := bot.Decide(self, []*Ship{enemy}, nil)

			if !approxVec(action.MoveDirection, tt.wantDir) {
				t.Errorf("MoveDirection = %v, want %v", action.MoveDirection, tt.wantDir)
			}
			if action.Fire != tt.wantFire {
				t.Errorf("Fire = %v, want %v", action.Fire, tt.wantFire)
			}
			if action.AimAt != enemy.Position {
				t.Errorf("AimAt = %v, want %v", action.AimAt, enemy.Position)
			}
		})
	}
}

func TestRuleBot_PicksNearestLivingEnemy(t *testing.T) {
	tuning := testTuning(t)
	bot := newTestBot(t)
	self := NewShip(tuning, true)

	dead := shipAt(tuning, 100, 0)
	dead.Health = 0
	near := shipAt(tuning, 0, 800)
	far := shipAt(tuning, 2000, 0)

	action := bot.Decide(self, []*Ship{far, dead, near, self}, nil)
	if action.AimAt != near.Position {
		t.Errorf("AimAt = %v, want %v", action.AimAt, near.Position)
	}
}

func TestRuleBot_EvadesIncomingBullet(t *testing.T) {
	tuning := testTuning(t)
	self := NewShip(tuning, true)
	enemy := shipAt(tuning, 3000, 0)

	tests := []struct {
		name      string
		bullet    *Bullet
		wantDir   domain.Vector2
		wantEvade bool
	}{
		{
			name:      "approaching",
			bullet:    &Bullet{Owner: "peer", Position: domain.Vector2{X: 100}, Velocity: domain.Vector2{X: -50000}},
			wantDir:   domain.Vector2{X: 0, Y: -1},
			wantEvade: true,
		},
		{
			name:      "moving away",
			bullet:    &Bullet{Owner: "peer", Position: domain.Vector2{X: 100}, Velocity: domain.Vector2{X: 50000}},
			wantEvade: false,
		},
		{
			name:      "out of range",
			bullet:    &Bullet{Owner: "peer", Position: domain.Vector2{X: 1000}, Velocity: domain.Vector2{X: -50000}},
			wantEvade: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot := newTestBot(t)
			action := bot.Decide(self, []*Ship{enemy}, []*Bullet{tt.bullet})

			if tt.wantEvade {
				if !approxVec(action.MoveDirection, tt.wantDir) {
					t.Errorf("MoveDirection = %v, want %v", action.MoveDirection, tt.wantDir)
				}
				return
			}
			// 回避しないなら遠距離の敵へ接近
			if !approxVec(action.MoveDirection, domain.Vector2{X: 1}) {
				t.Errorf("MoveDirection = %v, want approach", action.MoveDirection)
			}
		})
	}
}

func TestRuleBot_Rush(t *testing.T) {
	tuning := testTuning(t)
	bot := newTestBot(t)
	bot.random = fixedRandom(0.01)

	self := NewShip(tuning, true)
	enemy := shipAt(tuning, 200, 0)

	// 近距離でも突撃を引いたら接近する。0.01 ではノイズ角が付くので x 成分の符号だけ見る
	action := bot.Decide(self, []*Ship{enemy}, nil)
	if action.MoveDirection.X <= 0 {
		t.Errorf("MoveDirection = %v, want towards enemy", action.MoveDirection)
	}
}
