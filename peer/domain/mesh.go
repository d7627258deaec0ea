package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

var (
	// ErrInitializationFailed はメッシュの初期化に失敗した場合に返されるエラーです。
	ErrInitializationFailed = errors.New("failed to initialize mesh")
	// ErrMeshClosed はClose後にリンクを張ろうとした場合に返されるエラーです。
	ErrMeshClosed = errors.New("mesh closed")
)

// MeshConfig はメッシュの設定です。
type MeshConfig struct {
	// ListenURL は他ピアが自分へ接続するためのURLです。空なら誰にも紹介されません。
	ListenURL    string
	InboundQueue int
	Link         LinkConfig
}

// Mesh は全ピアと直接リンクを張るフルメッシュで、Network を実装します。
//
// 新規参加者は任意のメンバー1台へJoinし、受け側から返るmembersの全URLへ
// 自分から接続します。既存メンバーは新規参加者へ接続しにいきません。
type Mesh struct {
	address PeerAddress
	dialer  Dialer
	cfg     MeshConfig

	ctx    context.Context
	cancel context.CancelFunc

	inbound chan Inbound

	mu     sync.Mutex
	links  map[PeerAddress]*Link
	known  map[string]struct{} // 接続済み・接続中のlistenURL
	closed bool
	wg     sync.WaitGroup
}

var _ Network = (*Mesh)(nil)

func NewMesh(address PeerAddress, dialer Dialer, cfg MeshConfig) (*Mesh, error) {
	if address.IsEmpty() {
		return nil, fmt.Errorf("%w: empty address", ErrInitializationFailed)
	}
	if dialer == nil {
		return nil, fmt.Errorf("%w: dialer is required", ErrInitializationFailed)
	}
	if cfg.InboundQueue <= 0 {
		cfg.InboundQueue = 4096
	}
	cfg.Link = cfg.Link.withDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	return &Mesh{
		address: address,
		dialer:  dialer,
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
		inbound: make(chan Inbound, cfg.InboundQueue),
		links:   make(map[PeerAddress]*Link),
		known:   make(map[string]struct{}),
	}, nil
}

func (m *Mesh) Address() PeerAddress {
	return m.address
}

// Inbound は受信イベントのキューです。シミュレーションがtickの先頭で読み切ります。
func (m *Mesh) Inbound() <-chan Inbound {
	return m.inbound
}

// Send は全リンクへブロードキャストします。満杯のリンクでは破棄されます。
func (m *Mesh) Send(ctx context.Context, data []byte) error {
	m.mu.Lock()
	links := make([]*Link, 0, len(m.links))
	for _, l := range m.links {
		links = append(links, l)
	}
	m.mu.Unlock()

	var errs []error
	for _, l := range links {
		if err := l.Send(data); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", l.Remote(), err))
		}
	}
	return errors.Join(errs...)
}

// Peers はリンク中のピアのアドレスを昇順で返します。
func (m *Mesh) Peers() []PeerAddress {
	m.mu.Lock()
	defer m.mu.Unlock()
	peers := make([]PeerAddress, 0, len(m.links))
	for addr := range m.links {
		peers = append(peers, addr)
	}
	slices.Sort(peers)
	return peers
}

// Accept は受け付けた接続でリンクを確立し、リンクが終わるまでブロックします。
func (m *Mesh) Accept(ctx context.Context, transport Transport) error {
	link, err := m.establish(ctx, transport, true)
	if err != nil {
		_ = transport.Close(1008, err.Error())
		return err
	}
	return m.runLink(ctx, link)
}

// Join は指定URLのピアへ接続してリンクを確立します。リンクは Close まで維持されます。
func (m *Mesh) Join(ctx context.Context, url string) error {
	if url == "" || url == m.cfg.ListenURL {
		return nil
	}
	if !m.markKnown(url) {
		return nil
	}

	transport, err := m.dialer.Dial(ctx, url)
	if err != nil {
		m.forget(url)
		return fmt.Errorf("dial %s: %w", url, err)
	}
	link, err := m.establish(ctx, transport, false)
	if err != nil {
		m.forget(url)
		_ = transport.Close(1008, err.Error())
		return err
	}

	if err := m.track(func() {
		if err := m.runLink(m.ctx, link); err != nil {
			slog.WarnContext(m.ctx, "link ended", "peer", link.Remote(), "err", err)
		}
	}); err != nil {
		link.close()
		return err
	}
	return nil
}

// Close は全リンクへleaveを送って閉じ、バックグラウンドの接続処理を待ちます。
func (m *Mesh) Close(ctx context.Context) {
	m.mu.Lock()
	m.closed = true
	links := make([]*Link, 0, len(m.links))
	for _, l := range m.links {
		links = append(links, l)
	}
	m.mu.Unlock()

	for _, l := range links {
		l.leave(ctx)
		l.close()
	}
	m.cancel()
	m.wg.Wait()
}

// establish はhelloを交換し、リンクを登録します。
func (m *Mesh) establish(ctx context.Context, transport Transport, accepted bool) (*Link, error) {
	self := HelloPayload{Address: m.address, ListenURL: m.cfg.ListenURL}
	hello, err := handshake(ctx, transport, self, m.cfg.Link.HandshakeTimeout)
	if err != nil {
		return nil, err
	}
	if hello.Address == m.address {
		return nil, ErrSelfLink
	}

	link := newLink(NewSession(hello.Address), transport, hello.ListenURL, m.cfg.Link.WriteQueue)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrMeshClosed
	}
	if _, ok := m.links[hello.Address]; ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrPeerAlreadyLinked, hello.Address)
	}
	members := make([]string, 0, len(m.links))
	for _, l := range m.links {
		if l.remoteURL != "" {
			members = append(members, l.remoteURL)
		}
	}
	m.links[hello.Address] = link
	if hello.ListenURL != "" {
		m.known[hello.ListenURL] = struct{}{}
	}
	m.mu.Unlock()

	if accepted {
		slices.Sort(members)
		if err := link.Send(EncodeMembersMessage(members)); err != nil {
			slog.WarnContext(ctx, "members not sent", "peer", hello.Address, "err", err)
		}
	}
	slog.InfoContext(ctx, "peer linked", "peer", hello.Address, "url", hello.ListenURL, "accepted", accepted)
	return link, nil
}

func (m *Mesh) runLink(ctx context.Context, link *Link) error {
	err := link.run(ctx, m, m.cfg.Link)

	m.mu.Lock()
	if current, ok := m.links[link.Remote()]; ok && current == link {
		delete(m.links, link.Remote())
	}
	if link.remoteURL != "" {
		delete(m.known, link.remoteURL)
	}
	m.mu.Unlock()

	slog.InfoContext(ctx, "peer unlinked", "peer", link.Remote())
	m.push(ctx, Inbound{Kind: InboundPeerLeft, From: link.Remote()})
	return err
}

func (m *Mesh) handleControl(ctx context.Context, l *Link, subType ControlSubType, payload []byte) {
	switch subType {
	case ControlSubTypeMembers:
		members, err := ParseMembersPayload(payload)
		if err != nil {
			slog.WarnContext(ctx, "failed to parse members", "peer", l.Remote(), "err", err)
			return
		}
		for _, url := range members.URLs {
			if err := m.track(func() {
				if err := m.Join(m.ctx, url); err != nil {
					slog.WarnContext(m.ctx, "failed to join member", "url", url, "err", err)
				}
			}); err != nil {
				return
			}
		}
	case ControlSubTypeHello:
		slog.DebugContext(ctx, "unexpected hello after handshake", "peer", l.Remote())
	default:
		slog.WarnContext(ctx, "unknown control subtype", "peer", l.Remote(), "subType", subType)
	}
}

func (m *Mesh) handleReplication(ctx context.Context, l *Link, data []byte) {
	m.push(ctx, Inbound{Kind: InboundMessage, From: l.Remote(), Data: data})
}

func (m *Mesh) push(ctx context.Context, ev Inbound) {
	select {
	case m.inbound <- ev:
	default:
		slog.WarnContext(ctx, "inbound queue full, event dropped", "peer", ev.From, "kind", ev.Kind)
	}
}

// track はバックグラウンド処理を起動します。Close後は起動しません。
func (m *Mesh) track(fn func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrMeshClosed
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		fn()
	}()
	return nil
}

func (m *Mesh) markKnown(url string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.known[url]; ok {
		return false
	}
	m.known[url] = struct{}{}
	return true
}

func (m *Mesh) forget(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.known, url)
}
