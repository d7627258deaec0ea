package application

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"slices"

	"voidline/peer/domain"
)

var ErrInvalidGame = errors.New("invalid game configuration")

// Game は1ピア分のシミュレーションを進めるオーケストレーターです。
// Tick は単一ゴルーチンから呼び出すこと。受信は inbound キュー経由で Tick の先頭で取り込みます。
type Game struct {
	tuning  *Tuning
	network domain.Network
	inbound <-chan domain.Inbound
	address domain.PeerAddress

	self     *Ship
	mirrors  map[domain.PeerAddress]*Ship
	departed map[domain.PeerAddress]struct{}
	bullets  *BulletSet
	camera   *Camera
	gun      *Gun
	resolver *Resolver
	scores   *Scoreboard

	seq uint16
}

// Option は Game の生成オプションです。
type Option func(*Game)

// WithRandom は故障判定に使う乱数源を差し替えます。
func WithRandom(random func() float64) Option {
	return func(g *Game) {
		g.resolver = NewResolver(g.tuning, random)
	}
}

func NewGame(network domain.Network, inbound <-chan domain.Inbound, tuning Tuning, opts ...Option) (*Game, error) {
	if network == nil {
		return nil, errors.Join(ErrInvalidGame, errors.New("network is required"))
	}
	if err := tuning.Validate(); err != nil {
		return nil, err
	}
	address := network.Address()
	if address.IsEmpty() {
		return nil, errors.Join(ErrInvalidGame, errors.New("network address is empty"))
	}

	t := &tuning
	g := &Game{
		tuning:   t,
		network:  network,
		inbound:  inbound,
		address:  address,
		self:     NewShip(t, true),
		mirrors:  make(map[domain.PeerAddress]*Ship),
		departed: make(map[domain.PeerAddress]struct{}),
		bullets:  NewBulletSet(),
		camera:   NewCamera(t),
		gun:      NewGun(t),
		resolver: NewResolver(t, nil),
		scores:   NewScoreboard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Game) Address() domain.PeerAddress { return g.address }
func (g *Game) Self() *Ship                  { return g.self }
func (g *Game) Camera() *Camera              { return g.camera }
func (g *Game) Scores() *Scoreboard          { return g.scores }
func (g *Game) Tuning() *Tuning              { return g.tuning }

// Mirror はアドレスに対応するミラーを返します。
func (g *Game) Mirror(peer domain.PeerAddress) (*Ship, bool) {
	s, ok := g.mirrors[peer]
	return s, ok
}

// Mirrors はミラーをアドレス順に返します。
func (g *Game) Mirrors() []*Ship {
	peers := make([]domain.PeerAddress, 0, len(g.mirrors))
	for p := range g.mirrors {
		peers = append(peers, p)
	}
	slices.Sort(peers)
	ships := make([]*Ship, 0, len(peers))
	for _, p := range peers {
		ships = append(ships, g.mirrors[p])
	}
	return ships
}

// Bullets は生きている弾丸を返します。
func (g *Game) Bullets() []*Bullet {
	return g.bullets.Live()
}

// Entities は自機、ミラー、弾丸の順に全物体を返します。
func (g *Game) Entities() []Entity {
	bullets := g.bullets.Live()
	entities := make([]Entity, 0, 1+len(g.mirrors)+len(bullets))
	entities = append(entities, g.self)
	for _, s := range g.Mirrors() {
		entities = append(entities, s)
	}
	for _, b := range bullets {
		entities = append(entities, b)
	}
	return entities
}

// Tick は dtMS ミリ秒分シミュレーションを進めます。input が nil なら無入力として扱います。
func (g *Game) Tick(ctx context.Context, dtMS float64, input domain.InputState) {
	step := dtMS / FrameMS
	if step < 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		step = 0
	}

	// 1. 受信キューを読み切る
	g.drainInbound(ctx)

	// 2. 入力
	var mouse domain.Vector2
	var firing bool
	if input != nil {
		if input.Key(domain.KeyCameraMode) == domain.KeyPressed {
			g.camera.FollowAll = !g.camera.FollowAll
		}
		mouse = input.MousePosition()
		firing = input.MouseHeld()
	} else {
		mouse = g.camera.ScreenCenter()
	}

	// 3. 自機の積分
	g.self.Step(step, input)

	// 4. 当たり判定
	g.resolveCollisions(ctx)

	// 5. カメラの目標
	g.camera.Target(g.self, g.Mirrors(), mouse)

	// 6. 射撃
	if g.gun.Trigger(step, firing) {
		g.shoot(ctx, g.camera.ScreenToWorld(mouse))
	}

	// 7. 全物体を進めて掃除
	g.advance(step)

	// 8. 自機状態の複製
	g.publish(ctx, domain.ReplicationSubTypePlayerState, g.self.State().Encode())

	// 9. カメラの平滑化
	g.camera.Update(step)
}

// advance は自機以外の全物体を step 分進め、削除済みと寿命切れの弾丸を掃除します。
func (g *Game) advance(step float64) {
	for _, e := range g.Entities() {
		switch e := e.(type) {
		case *Ship:
			if e != g.self {
				e.Step(step, nil)
			}
		case *Bullet:
			e.Step(step)
		}
	}
	g.bullets.Sweep()
}

func (g *Game) drainInbound(ctx context.Context) {
	for {
		select {
		case ev, ok := <-g.inbound:
			if !ok {
				g.inbound = nil
				return
			}
			g.handleInbound(ctx, ev)
		default:
			return
		}
	}
}

func (g *Game) handleInbound(ctx context.Context, ev domain.Inbound) {
	if ev.From == g.address {
		return
	}
	switch ev.Kind {
	case domain.InboundMessage:
		if err := g.HandleMessage(ctx, ev.From, ev.Data); err != nil {
			slog.DebugContext(ctx, "ignored message", "peer", ev.From, "err", err)
		}
	case domain.InboundPeerLeft:
		g.RemovePeer(ctx, ev.From)
	}
}

// RemovePeer は去ったピアのミラーと弾丸を取り除きます。
// 以降、他ピア経由で名前だけ届いてもミラーは作り直しません。
func (g *Game) RemovePeer(ctx context.Context, peer domain.PeerAddress) {
	g.departed[peer] = struct{}{}
	_, had := g.mirrors[peer]
	delete(g.mirrors, peer)
	n := g.bullets.RemoveOwner(peer)
	if had || n > 0 {
		slog.InfoContext(ctx, "peer removed", "peer", peer, "bullets", n)
	}
}

func (g *Game) resolveCollisions(ctx context.Context) {
	for _, hit := range g.resolver.Resolve(g.address, g.self, g.bullets) {
		collided := &domain.BulletCollidedPayload{Owner: hit.Bullet.Owner, ID: hit.Bullet.ID, Target: g.address}
		g.publish(ctx, domain.ReplicationSubTypeBulletCollided, collided.Encode())

		if hit.Killed {
			slog.InfoContext(ctx, "destroyed", "killer", hit.Bullet.Owner)
			g.scores.Record(hit.Bullet.Owner, g.address)
			kill := &domain.KillPayload{Killer: hit.Bullet.Owner, Target: g.address}
			g.publish(ctx, domain.ReplicationSubTypeKill, kill.Encode())
		}
	}
}

func (g *Game) shoot(ctx context.Context, target domain.Vector2) {
	b, ok := g.gun.Fire(g.address, g.self, target)
	if !ok {
		slog.DebugContext(ctx, "shot skipped: aim is degenerate")
		return
	}
	g.bullets.Add(b)
	shot := &domain.BulletShotPayload{ID: b.ID, Position: b.Position, Angle: b.Angle, Velocity: b.Velocity}
	g.publish(ctx, domain.ReplicationSubTypeBulletShot, shot.Encode())
}

// publish は投げっぱなしで全ピアへ送ります。
func (g *Game) publish(ctx context.Context, subType domain.ReplicationSubType, payload []byte) {
	g.seq++
	if err := g.network.Send(ctx, domain.EncodeReplicationMessage(g.seq, subType, payload)); err != nil {
		slog.DebugContext(ctx, "send failed", "type", subType, "err", err)
	}
}
