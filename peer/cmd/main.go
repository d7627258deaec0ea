package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"voidline/config"
	"voidline/internal/loop"
	"voidline/peer"
	adapterwebsocket "voidline/peer/adapter/websocket"
	"voidline/peer/application"
	"voidline/peer/domain"
	"voidline/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := utils.GetEnvDefault("ADDR", "localhost")
	port := utils.GetEnvDefault("PORT", "9090")
	publicURL := utils.GetEnvDefault("PUBLIC_URL", fmt.Sprintf("ws://%s:%s/ws", addr, port))
	joinURL := utils.GetEnvDefault("JOIN", "")
	tickHz := utils.GetEnvInt("TICK_HZ", 60)

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(utils.GetEnvDefault("LOG_LEVEL", "info")),
	})))

	if err := run(ctx, addr+":"+port, publicURL, joinURL, tickHz); err != nil {
		slog.ErrorContext(ctx, "peer exited", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, listenAddr, publicURL, joinURL string, tickHz int) error {
	tuning, err := config.LoadTuning(utils.GetEnvDefault("TUNING_FILE", ""))
	if err != nil {
		return fmt.Errorf("load tuning: %w", err)
	}
	if tickHz <= 0 {
		return fmt.Errorf("TICK_HZ must be positive, got %d", tickHz)
	}

	address := domain.NewPeerAddress()
	mesh, err := domain.NewMesh(address, &adapterwebsocket.Dialer{}, domain.MeshConfig{ListenURL: publicURL})
	if err != nil {
		return err
	}

	game, err := application.NewGame(mesh, mesh.Inbound(), tuning)
	if err != nil {
		return err
	}
	pilot := application.NewAutopilot(application.NewRuleBotController(nil))

	statusEvery := uint64(tickHz) * 5
	var frames uint64
	frameLoop, err := loop.New(loop.Config{
		Interval: time.Second / time.Duration(tickHz),
		Ticker: loop.TickerFunc(func(ctx context.Context, dtMS float64) {
			game.Tick(ctx, dtMS, pilot.Drive(game))
			frames++
			if frames%statusEvery == 0 {
				logStatus(ctx, mesh, game)
			}
		}),
	})
	if err != nil {
		return err
	}

	s := peer.NewServer(listenAddr, peer.Route(mesh))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := s.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})
	slog.InfoContext(ctx, "peer listening", "addr", listenAddr, "url", publicURL, "address", address)

	if err := frameLoop.Start(egCtx); err != nil {
		return err
	}

	if joinURL != "" {
		eg.Go(func() error {
			if err := mesh.Join(egCtx, joinURL); err != nil {
				slog.WarnContext(egCtx, "failed to join mesh", "url", joinURL, "err", err)
			}
			return nil
		})
	}

	eg.Go(func() error {
		<-egCtx.Done()
		slog.InfoContext(ctx, "shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := frameLoop.Stop(shutdownCtx); err != nil && !errors.Is(err, loop.ErrAlreadyStopped) {
			slog.ErrorContext(ctx, "frame loop stop failed", "err", err)
		}
		mesh.Close(shutdownCtx)
		if err := s.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(ctx, "graceful shutdown failed", "err", err)
			if err := s.Close(); err != nil {
				slog.ErrorContext(ctx, "forced close failed", "err", err)
			}
		}
		return nil
	})

	err = eg.Wait()
	slog.InfoContext(ctx, "peer shutdown complete")
	return err
}

// logStatus はフレームループ上から呼ぶこと。Game は単一ゴルーチン前提です。
func logStatus(ctx context.Context, mesh *domain.Mesh, game *application.Game) {
	self := game.Self()
	standings := game.Scores().Standings()
	top := make([]string, 0, 3)
	for i, s := range standings {
		if i == 3 {
			break
		}
		top = append(top, fmt.Sprintf("%s:%d/%d", s.Peer, s.Kills, s.Deaths))
	}
	slog.InfoContext(ctx, "status",
		"peers", len(mesh.Peers()),
		"entities", len(game.Entities()),
		"health", self.Health,
		"position", self.Position,
		"top", top,
	)
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
