package domain

import "errors"

// サイズ定数
const (
	PlayerStatePayloadSize = 53 // position(16) + angle(8) + health(4) + input(16) + engine(1) + speed(8)
	BulletShotPayloadSize  = 44 // id(4) + position(16) + angle(8) + velocity(16)
)

var (
	ErrInvalidBulletCollidedPayload = errors.New("invalid bullet-collided payload")
	ErrInvalidKillPayload           = errors.New("invalid kill payload")
)

// PlayerStatePayload は自機状態の複製メッセージ (53バイト)
//
//	position {x,y} float64 (16)
//	angle          float64 (8)  - 度
//	health         int32   (4)
//	input    {x,y} float64 (16) - 直近の方向入力 (-1/0/1)
//	engine         bool    (1)  - エンジン使用可能 (on && !broken)
//	speed          float64 (8)
type PlayerStatePayload struct {
	Position Vector2
	Angle    float64
	Health   int32
	Input    Vector2
	Engine   bool
	Speed    float64
}

// ParsePlayerStatePayload はバイト列からPlayerStatePayloadをパースする
func ParsePlayerStatePayload(data []byte) (*PlayerStatePayload, error) {
	if len(data) < PlayerStatePayloadSize {
		return nil, ErrPlayerStatePayloadSize
	}

	return &PlayerStatePayload{
		Position: readVector2(data[0:16]),
		Angle:    readFloat64(data[16:24]),
		Health:   int32(byteOrder.Uint32(data[24:28])),
		Input:    readVector2(data[28:44]),
		Engine:   data[44] != 0,
		Speed:    readFloat64(data[45:53]),
	}, nil
}

// Encode はPlayerStatePayloadをバイト列にエンコードする
func (p *PlayerStatePayload) Encode() []byte {
	data := make([]byte, PlayerStatePayloadSize)
	putVector2(data[0:16], p.Position)
	putFloat64(data[16:24], p.Angle)
	byteOrder.PutUint32(data[24:28], uint32(p.Health))
	putVector2(data[28:44], p.Input)
	if p.Engine {
		data[44] = 1
	}
	putFloat64(data[45:53], p.Speed)
	return data
}

// BulletShotPayload は発射された弾丸の複製メッセージ (44バイト)
// 所有者は送信元アドレスで特定する。
//
//	id             u32     (4)
//	position {x,y} float64 (16)
//	angle          float64 (8)
//	velocity {x,y} float64 (16) - 発射者の速度を含む
type BulletShotPayload struct {
	ID       uint32
	Position Vector2
	Angle    float64
	Velocity Vector2
}

// ParseBulletShotPayload はバイト列からBulletShotPayloadをパースする
func ParseBulletShotPayload(data []byte) (*BulletShotPayload, error) {
	if len(data) < BulletShotPayloadSize {
		return nil, ErrBulletShotPayloadSize
	}

	return &BulletShotPayload{
		ID:       byteOrder.Uint32(data[0:4]),
		Position: readVector2(data[4:20]),
		Angle:    readFloat64(data[20:28]),
		Velocity: readVector2(data[28:44]),
	}, nil
}

// Encode はBulletShotPayloadをバイト列にエンコードする
func (b *BulletShotPayload) Encode() []byte {
	data := make([]byte, BulletShotPayloadSize)
	byteOrder.PutUint32(data[0:4], b.ID)
	putVector2(data[4:20], b.Position)
	putFloat64(data[20:28], b.Angle)
	putVector2(data[28:44], b.Velocity)
	return data
}

// BulletCollidedPayload は弾丸の命中通知 (可変長)
//
//	owner   u16 len + bytes
//	id      u32 (4)
//	target  u16 len + bytes
type BulletCollidedPayload struct {
	Owner  PeerAddress
	ID     uint32
	Target PeerAddress
}

// ParseBulletCollidedPayload はバイト列からBulletCollidedPayloadをパースする
func ParseBulletCollidedPayload(data []byte) (*BulletCollidedPayload, error) {
	owner, n, err := readString(data)
	if err != nil {
		return nil, ErrInvalidBulletCollidedPayload
	}
	data = data[n:]
	if len(data) < 4 {
		return nil, ErrInvalidBulletCollidedPayload
	}
	id := byteOrder.Uint32(data[0:4])
	target, _, err := readString(data[4:])
	if err != nil {
		return nil, ErrInvalidBulletCollidedPayload
	}

	return &BulletCollidedPayload{
		Owner:  PeerAddress(owner),
		ID:     id,
		Target: PeerAddress(target),
	}, nil
}

// Encode はBulletCollidedPayloadをバイト列にエンコードする
func (b *BulletCollidedPayload) Encode() []byte {
	data := make([]byte, 0, 4+4+len(b.Owner)+len(b.Target))
	data = appendString(data, string(b.Owner))
	data = byteOrder.AppendUint32(data, b.ID)
	data = appendString(data, string(b.Target))
	return data
}

// KillPayload は撃墜通知 (可変長)
//
//	killer  u16 len + bytes
//	target  u16 len + bytes
type KillPayload struct {
	Killer PeerAddress
	Target PeerAddress
}

// ParseKillPayload はバイト列からKillPayloadをパースする
func ParseKillPayload(data []byte) (*KillPayload, error) {
	killer, n, err := readString(data)
	if err != nil {
		return nil, ErrInvalidKillPayload
	}
	target, _, err := readString(data[n:])
	if err != nil {
		return nil, ErrInvalidKillPayload
	}

	return &KillPayload{
		Killer: PeerAddress(killer),
		Target: PeerAddress(target),
	}, nil
}

// Encode はKillPayloadをバイト列にエンコードする
func (k *KillPayload) Encode() []byte {
	data := make([]byte, 0, 4+len(k.Killer)+len(k.Target))
	data = appendString(data, string(k.Killer))
	data = appendString(data, string(k.Target))
	return data
}

// EncodeReplicationMessage は複製メッセージをエンコードする
func EncodeReplicationMessage(seq uint16, subType ReplicationSubType, payload []byte) []byte {
	return EncodeMessage(seq, DataTypeReplication, uint8(subType), payload)
}
