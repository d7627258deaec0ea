package application

import "voidline/peer/domain"

// Entity は描画対象になるシミュレーション上の物体です。実装は *Ship と *Bullet だけです。
type Entity interface {
	Location() domain.Vector2
	entity()
}

func (s *Ship) Location() domain.Vector2   { return s.Position }
func (b *Bullet) Location() domain.Vector2 { return b.Position }

func (*Ship) entity()   {}
func (*Bullet) entity() {}
