package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrHandshakeFailed はhelloの交換に失敗した場合に返されるエラーです。
	ErrHandshakeFailed = errors.New("link handshake failed")
	// ErrPeerAlreadyLinked は同じアドレスのピアと既にリンクがある場合に返されるエラーです。
	ErrPeerAlreadyLinked = errors.New("peer already linked")
	// ErrSelfLink は自分自身へのリンクを検出した場合に返されるエラーです。
	ErrSelfLink = errors.New("link to self")
	// ErrBackpressure は書き込みチャネルが満杯の場合に返されるエラーです。
	ErrBackpressure = errors.New("write channel is full, apply backpressure")
	// ErrLinkIdle は無通信タイムアウトでリンクを閉じた場合に返されるエラーです。
	ErrLinkIdle = errors.New("link idle")

	errLinkLeft = errors.New("peer left")
)

// LinkConfig はリンクごとの死活監視とキューの設定です。
type LinkConfig struct {
	PingInterval     time.Duration
	IdleTimeout      time.Duration
	HandshakeTimeout time.Duration
	WriteQueue       int
}

func (c LinkConfig) withDefaults() LinkConfig {
	if c.PingInterval <= 0 {
		c.PingInterval = 5 * time.Second
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 30 * time.Second
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 5 * time.Second
	}
	if c.WriteQueue <= 0 {
		c.WriteQueue = 1024
	}
	return c
}

// linkHandler はリンクが自身で処理しないメッセージの受け手です。
type linkHandler interface {
	handleControl(ctx context.Context, l *Link, subType ControlSubType, payload []byte)
	handleReplication(ctx context.Context, l *Link, data []byte)
}

// Link は他ピア1台との双方向リンクです。
type Link struct {
	session   *Session
	transport Transport
	remoteURL string

	writeCh chan []byte
}

func newLink(session *Session, transport Transport, remoteURL string, writeQueue int) *Link {
	return &Link{
		session:   session,
		transport: transport,
		remoteURL: remoteURL,
		writeCh:   make(chan []byte, writeQueue),
	}
}

func (l *Link) Remote() PeerAddress {
	return l.session.Remote()
}

// Send は書き込みキューへ積みます。満杯なら破棄して ErrBackpressure を返します。
func (l *Link) Send(data []byte) error {
	select {
	case l.writeCh <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

// handshake は自分のhelloを送り、相手のhelloを受け取ります。
func handshake(ctx context.Context, transport Transport, self HelloPayload, timeout time.Duration) (*HelloPayload, error) {
	if err := transport.Write(ctx, EncodeHelloMessage(self.Address, self.ListenURL)); err != nil {
		return nil, fmt.Errorf("%w: write hello: %w", ErrHandshakeFailed, err)
	}

	hctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	data, err := transport.Read(hctx)
	if err != nil {
		return nil, fmt.Errorf("%w: read hello: %w", ErrHandshakeFailed, err)
	}

	_, payloadHeader, payload, err := DecodeMessage(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHandshakeFailed, err)
	}
	if payloadHeader.DataType != DataTypeControl || ControlSubType(payloadHeader.SubType) != ControlSubTypeHello {
		return nil, fmt.Errorf("%w: first message is not hello", ErrHandshakeFailed)
	}
	hello, err := ParseHelloPayload(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHandshakeFailed, err)
	}
	return hello, nil
}

// run はリンクの読み書きと死活監視を行い、いずれかが終了するまでブロックします。
func (l *Link) run(ctx context.Context, h linkHandler, cfg LinkConfig) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return l.readLoop(ctx, h)
	})
	eg.Go(func() error {
		return l.writeLoop(ctx)
	})
	eg.Go(func() error {
		return l.ownerLoop(ctx, cfg.IdleTimeout)
	})
	eg.Go(func() error {
		NewHeartbeatService(cfg.PingInterval, l.Remote(), l.writeCh).Run(ctx)
		return nil
	})

	err := eg.Wait()
	l.close()
	if errors.Is(err, errLinkLeft) {
		return nil
	}
	return err
}

func (l *Link) readLoop(ctx context.Context, h linkHandler) error {
	for {
		data, err := l.transport.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		l.session.TouchRead()

		_, payloadHeader, payload, err := DecodeMessage(data)
		if err != nil {
			slog.DebugContext(ctx, "dropping malformed message", "peer", l.Remote(), "err", err)
			continue
		}

		switch payloadHeader.DataType {
		case DataTypeControl:
			switch subType := ControlSubType(payloadHeader.SubType); subType {
			case ControlSubTypePing:
				if err := l.Send(EncodeControlMessage(ControlSubTypePong)); err != nil {
					slog.DebugContext(ctx, "pong dropped", "peer", l.Remote(), "err", err)
				}
			case ControlSubTypePong:
				l.session.TouchPong()
			case ControlSubTypeLeave:
				return errLinkLeft
			default:
				h.handleControl(ctx, l, subType, payload)
			}
		case DataTypeReplication:
			h.handleReplication(ctx, l, data)
		default:
			slog.WarnContext(ctx, "unknown data type", "peer", l.Remote(), "dataType", payloadHeader.DataType)
		}
	}
}

func (l *Link) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case data := <-l.writeCh:
			if err := l.transport.Write(ctx, data); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("write: %w", err)
			}
		}
	}
}

// ownerLoop はリンクの無通信を監視します。
func (l *Link) ownerLoop(ctx context.Context, idleTimeout time.Duration) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if idle, reason := l.session.IsIdle(idleTimeout); idle {
				return fmt.Errorf("%w: %s", ErrLinkIdle, reason)
			}
		}
	}
}

// leave は相手にleaveを直接書き込みます。
func (l *Link) leave(ctx context.Context) {
	if l.session.IsClosed() {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := l.transport.Write(wctx, EncodeControlMessage(ControlSubTypeLeave)); err != nil {
		slog.DebugContext(ctx, "leave not delivered", "peer", l.Remote(), "err", err)
	}
}

func (l *Link) close() {
	if !l.session.Close() {
		return
	}
	_ = l.transport.Close(1000, "")
}
