package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"voidline/peer/domain"
	"voidline/utils"
)

var (
	ErrNotReplication = errors.New("not a replication message")
	ErrUnknownSubType = errors.New("unknown replication subtype")
	ErrNonFiniteValue = errors.New("non-finite value in payload")
	ErrInvalidSender  = errors.New("invalid sender")
)

// HandleMessage は他ピアから届いた複製メッセージを適用します。
// エラーは全て「無視してよい」ことを示し、状態は変更されていません。
func (g *Game) HandleMessage(ctx context.Context, from domain.PeerAddress, data []byte) error {
	if from.IsEmpty() || from == g.address {
		return fmt.Errorf("%w: sender %q", ErrInvalidSender, from)
	}
	header, payloadHeader, payload, err := domain.DecodeMessage(data)
	if err != nil {
		return err
	}
	if payloadHeader.DataType != domain.DataTypeReplication {
		return ErrNotReplication
	}

	switch subType := domain.ReplicationSubType(payloadHeader.SubType); subType {
	case domain.ReplicationSubTypePlayerState:
		return g.handlePlayerState(from, payload)
	case domain.ReplicationSubTypeBulletShot:
		return g.handleBulletShot(ctx, from, header, payload)
	case domain.ReplicationSubTypeBulletCollided:
		return g.handleBulletCollided(ctx, from, payload)
	case domain.ReplicationSubTypeKill:
		return g.handleKill(ctx, from, payload)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownSubType, payloadHeader.SubType)
	}
}

func (g *Game) handlePlayerState(from domain.PeerAddress, data []byte) error {
	state, err := domain.ParsePlayerStatePayload(data)
	if err != nil {
		return err
	}
	if !utils.FiniteVec(state.Position) || !utils.FiniteVec(state.Input) || !utils.Finite(state.Angle, state.Speed) {
		return ErrNonFiniteValue
	}
	g.sighted(from).ApplyState(state)
	return nil
}

func (g *Game) handleBulletShot(ctx context.Context, from domain.PeerAddress, header *domain.Header, data []byte) error {
	shot, err := domain.ParseBulletShotPayload(data)
	if err != nil {
		return err
	}
	if !utils.FiniteVec(shot.Position) || !utils.FiniteVec(shot.Velocity) || !utils.Finite(shot.Angle) {
		return ErrNonFiniteValue
	}

	g.sighted(from)
	added := g.bullets.Add(&Bullet{
		ID:       shot.ID,
		Owner:    from,
		Position: shot.Position,
		Velocity: shot.Velocity,
		Angle:    shot.Angle,
		TTL:      g.tuning.BulletTTL,
	})
	if !added {
		slog.DebugContext(ctx, "duplicate bullet-shot", "peer", from, "id", shot.ID, "seq", header.Seq)
	}
	return nil
}

func (g *Game) handleBulletCollided(ctx context.Context, from domain.PeerAddress, data []byte) error {
	collided, err := domain.ParseBulletCollidedPayload(data)
	if err != nil {
		return err
	}

	removed := g.bullets.Remove(BulletKey{Owner: collided.Owner, ID: collided.ID})
	slog.DebugContext(ctx, "bullet collided", "reporter", from, "owner", collided.Owner, "id", collided.ID, "removed", removed)

	// 体力は対象自身の player-state で届くため、ここでは発光だけ
	switch {
	case collided.Target == g.address:
		g.self.TakeDamage()
	case !collided.Target.IsEmpty():
		if s, ok := g.mirror(collided.Target); ok {
			s.TakeDamage()
		}
	}
	return nil
}

func (g *Game) handleKill(ctx context.Context, from domain.PeerAddress, data []byte) error {
	kill, err := domain.ParseKillPayload(data)
	if err != nil {
		return err
	}
	g.scores.Record(kill.Killer, kill.Target)
	slog.InfoContext(ctx, "kill", "killer", kill.Killer, "target", kill.Target, "reporter", from)
	return nil
}

// mirror はピアのミラーを返します。初めてのピアならその場で作ります。
// 去ったピアは作り直さず false を返します。
func (g *Game) mirror(peer domain.PeerAddress) (*Ship, bool) {
	if s, ok := g.mirrors[peer]; ok {
		return s, true
	}
	if _, gone := g.departed[peer]; gone {
		return nil, false
	}
	s := NewShip(g.tuning, false)
	g.mirrors[peer] = s
	return s, true
}

// sighted は本人から直接届いたメッセージの送信元のミラーを返します。
// PeerLeft はそのリンクの最後の受信より後に積まれるため、
// 去った後に本人から届くのは張り直されたリンクからだけです。
func (g *Game) sighted(peer domain.PeerAddress) *Ship {
	delete(g.departed, peer)
	s, _ := g.mirror(peer)
	return s
}
