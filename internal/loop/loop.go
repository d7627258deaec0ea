package loop

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

var (
	ErrTickerRequired = errors.New("loop: ticker is required")
	ErrAlreadyStarted = errors.New("loop: start called multiple times")
	ErrNotStarted     = errors.New("loop: not started")
	ErrAlreadyStopped = errors.New("loop: stop called multiple times")
)

// Ticker は1フレーム分の処理です。dtMS は前フレームからの実経過ミリ秒です。
type Ticker interface {
	Tick(ctx context.Context, dtMS float64)
}

// TickerFunc は関数を Ticker として使うためのアダプタです。
type TickerFunc func(ctx context.Context, dtMS float64)

func (f TickerFunc) Tick(ctx context.Context, dtMS float64) { f(ctx, dtMS) }

// Config controls the behaviour of the frame loop.
type Config struct {
	Ticker Ticker
	// Interval はフレーム間隔です。0なら60FPS。
	Interval time.Duration
	// MaxFrameMS は1フレームに渡す経過時間の上限です。停止明けに巨大なdtで積分しないため。0なら250ms。
	MaxFrameMS float64
}

// Loop calls the ticker on a single goroutine at a fixed interval.
type Loop struct {
	ticker     Ticker
	interval   time.Duration
	maxFrameMS float64

	started atomic.Bool
	stopped atomic.Bool
	frames  atomic.Uint64

	stop chan struct{}
	done chan struct{}
}

// New creates a Loop with the supplied configuration.
func New(cfg Config) (*Loop, error) {
	if cfg.Ticker == nil {
		return nil, ErrTickerRequired
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Second / 60
	}
	maxFrameMS := cfg.MaxFrameMS
	if maxFrameMS <= 0 {
		maxFrameMS = 250
	}
	return &Loop{
		ticker:     cfg.Ticker,
		interval:   interval,
		maxFrameMS: maxFrameMS,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}, nil
}

// Start launches the frame loop. It must be called once.
func (l *Loop) Start(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	go l.run(ctx)
	return nil
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "loop: context cancelled, shutting down", "err", ctx.Err(), "frames", l.frames.Load())
			return
		case <-l.stop:
			slog.InfoContext(ctx, "loop: stopped", "frames", l.frames.Load())
			return
		case now := <-ticker.C:
			dt := float64(now.Sub(last)) / float64(time.Millisecond)
			last = now
			if dt > l.maxFrameMS {
				slog.DebugContext(ctx, "loop: frame clamped", "dtMS", dt)
				dt = l.maxFrameMS
			}
			l.ticker.Tick(ctx, dt)
			l.frames.Add(1)
		}
	}
}

// Frames は実行済みのフレーム数です。
func (l *Loop) Frames() uint64 {
	return l.frames.Load()
}

// Done はループ終了時に閉じられます。
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Stop ends the loop and waits for the running frame to finish.
func (l *Loop) Stop(ctx context.Context) error {
	if !l.started.Load() {
		return ErrNotStarted
	}
	if !l.stopped.CompareAndSwap(false, true) {
		return ErrAlreadyStopped
	}
	close(l.stop)
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
