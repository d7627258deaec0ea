package application

import "voidline/peer/domain"

// BotAction はボットの行動を表します。
type BotAction struct {
	MoveDirection domain.Vector2 // ワールド座標系の移動したい向き (ゼロなら停止)
	AimAt         domain.Vector2 // ワールド座標系の照準
	Fire          bool
}

// BotController はボットの意思決定インターフェースです。
type BotController interface {
	Decide(self *Ship, enemies []*Ship, incoming []*Bullet) BotAction
}
