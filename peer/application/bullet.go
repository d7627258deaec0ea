package application

import (
	"slices"

	"voidline/peer/domain"
)

// BulletKey は弾丸を一意に特定するキーです。IDは所有者ごとに単調増加します。
type BulletKey struct {
	Owner domain.PeerAddress
	ID    uint32
}

// Bullet はフィールド上の弾丸を表す構造体です。
type Bullet struct {
	ID       uint32
	Owner    domain.PeerAddress
	Position domain.Vector2
	Velocity domain.Vector2
	Angle    float64 // 度
	TTL      float64 // 残りフレーム

	removed bool
}

func (b *Bullet) Key() BulletKey {
	return BulletKey{Owner: b.Owner, ID: b.ID}
}

// Step は等速直線運動で進めます。
func (b *Bullet) Step(step float64) {
	b.Position = b.Position.Add(b.Velocity.Scale(step / 1000))
	b.TTL -= step
}

func (b *Bullet) Expired() bool {
	return b.TTL <= 0
}

// BulletSet は全所有者の弾丸を (owner,id) で索引するコレクションです。
// 削除は印を付けるだけで、実体は Sweep で取り除きます。
type BulletSet struct {
	bullets []*Bullet
	index   map[BulletKey]*Bullet
}

func NewBulletSet() *BulletSet {
	return &BulletSet{
		index: make(map[BulletKey]*Bullet),
	}
}

// Add は弾丸を追加します。同じキーが生きていれば追加しません。
func (s *BulletSet) Add(b *Bullet) bool {
	key := b.Key()
	if _, ok := s.index[key]; ok {
		return false
	}
	s.index[key] = b
	s.bullets = append(s.bullets, b)
	return true
}

func (s *BulletSet) Get(key BulletKey) (*Bullet, bool) {
	b, ok := s.index[key]
	return b, ok
}

// Remove はキーの弾丸に削除の印を付けます。未知のキーや2回目の呼び出しは false です。
func (s *BulletSet) Remove(key BulletKey) bool {
	b, ok := s.index[key]
	if !ok {
		return false
	}
	b.removed = true
	delete(s.index, key)
	return true
}

// RemoveOwner は所有者の弾丸を全て削除し、件数を返します。
func (s *BulletSet) RemoveOwner(owner domain.PeerAddress) int {
	n := 0
	for _, b := range s.bullets {
		if b.Owner == owner && !b.removed {
			s.Remove(b.Key())
			n++
		}
	}
	return n
}

// Live は削除されていない弾丸を追加順で返します。
func (s *BulletSet) Live() []*Bullet {
	live := make([]*Bullet, 0, len(s.bullets))
	for _, b := range s.bullets {
		if !b.removed {
			live = append(live, b)
		}
	}
	return live
}

// Sweep は削除済みと寿命切れの弾丸を取り除きます。
func (s *BulletSet) Sweep() {
	s.bullets = slices.DeleteFunc(s.bullets, func(b *Bullet) bool {
		if b.removed {
			return true
		}
		if b.Expired() {
			delete(s.index, b.Key())
			return true
		}
		return false
	})
}

func (s *BulletSet) Len() int {
	return len(s.index)
}
